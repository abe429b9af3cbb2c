package gofat32

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"
	"unicode/utf16"

	"github.com/aligator/gofat32/checkpoint"
)

// ErrInvalidDirEntry may occur if a directory cluster contains garbage.
var ErrInvalidDirEntry = errors.New("could not decode a directory entry")

const dirEntrySize = 32

// Marker values of the first name byte of a directory entry.
const (
	dirEntryEnd  = 0x00
	dirEntryFree = 0xE5
)

// lfnSequenceLast marks the logically last (physically first) part of a
// long filename.
const lfnSequenceLast = 0x40

// shortNameChecksum computes the checksum over an 8.3 name which every long
// filename entry stores to tie it to its short entry.
func shortNameChecksum(name [11]byte) byte {
	var sum byte
	for _, c := range name {
		sum = (sum >> 1) + (sum << 7) + c
	}
	return sum
}

// longNameParts extracts the 13 UTF-16 units of one long filename entry.
func longNameParts(entry LongFilenameEntry) []uint16 {
	parts := make([]uint16, 0, 13)
	parts = append(parts, entry.First[:]...)
	parts = append(parts, entry.Second[:]...)
	parts = append(parts, entry.Third[:]...)
	return parts
}

// assembleLongName reconstructs the long filename out of the collected long
// filename entries belonging to the given short entry. It returns "" if the
// entries do not form a consistent name, in which case the 8.3 name is all
// there is.
func assembleLongName(entries []LongFilenameEntry, shortName [11]byte) string {
	if len(entries) == 0 {
		return ""
	}

	sum := shortNameChecksum(shortName)
	for _, entry := range entries {
		if entry.Checksum != sum {
			return ""
		}
	}

	// The entries are stored in reverse order on disk. Sort by the sequence
	// index and verify that all parts are there.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Sequence&0x1F < entries[j].Sequence&0x1F
	})
	for i, entry := range entries {
		if int(entry.Sequence&0x1F) != i+1 {
			return ""
		}
	}
	if entries[len(entries)-1].Sequence&lfnSequenceLast == 0 {
		return ""
	}

	var units []uint16
	for _, entry := range entries {
		units = append(units, longNameParts(entry)...)
	}

	// The name is terminated by 0x0000, the rest is 0xFFFF padding.
	for i, unit := range units {
		if unit == 0x0000 {
			units = units[:i]
			break
		}
	}

	return string(utf16.Decode(units))
}

// parseDirEntries decodes the raw data of a directory cluster chain into
// entries, reconstructing long filenames and skipping deleted entries, the
// volume label and the "." and ".." references.
func parseDirEntries(data []byte) ([]ExtendedEntryHeader, error) {
	var entries []ExtendedEntryHeader
	var longEntries []LongFilenameEntry

	for offset := 0; offset+dirEntrySize <= len(data); offset += dirEntrySize {
		record := data[offset : offset+dirEntrySize]

		// All entries after the end marker are unused.
		if record[0] == dirEntryEnd {
			break
		}
		if record[0] == dirEntryFree {
			longEntries = nil
			continue
		}

		if record[11]&AttrLongName == AttrLongName {
			lfn := LongFilenameEntry{}
			if err := binary.Read(bytes.NewReader(record), binary.LittleEndian, &lfn); err != nil {
				return nil, checkpoint.Wrap(err, ErrInvalidDirEntry)
			}
			longEntries = append(longEntries, lfn)
			continue
		}

		header := EntryHeader{}
		if err := binary.Read(bytes.NewReader(record), binary.LittleEndian, &header); err != nil {
			return nil, checkpoint.Wrap(err, ErrInvalidDirEntry)
		}

		extended := ExtendedEntryHeader{
			EntryHeader:  header,
			ExtendedName: assembleLongName(longEntries, header.Name),
		}
		longEntries = nil

		if header.Attribute&AttrVolumeId != 0 {
			continue
		}

		// The self and parent references are part of every directory on
		// disk but are never listed.
		name := extended.FileInfo().Name()
		if name == "." || name == ".." {
			continue
		}

		entries = append(entries, extended)
	}

	return entries, nil
}
