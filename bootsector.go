package gofat32

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aligator/gofat32/checkpoint"
)

// These errors describe why a boot sector was rejected. All of them wrap
// ErrInvalidFAT32Structure.
var (
	ErrInvalidSignature         = errors.New("boot sector signature is not 0xAA55")
	ErrUnsupportedSectorSize    = errors.New("unsupported sector size")
	ErrInvalidSectorsPerCluster = errors.New("invalid sectors per cluster")
	ErrInvalidReservedSectors   = errors.New("invalid reserved sector count")
	ErrNotFAT32                 = errors.New("volume is not FAT32")
)

// DecodeBootSector parses the raw bytes of sector 0 into a BootSector and
// validates all structural invariants this driver relies on.
//
// raw must be exactly SectorSize bytes long. A shorter or longer buffer is a
// caller bug, not a property of the volume, so it panics instead of
// returning an error. This package only ever calls it with a full sector.
func DecodeBootSector(raw []byte) (*BootSector, error) {
	if len(raw) != SectorSize {
		panic(fmt.Sprintf("gofat32: DecodeBootSector needs exactly %d bytes, got %d", SectorSize, len(raw)))
	}

	bs := BootSector{}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &bs); err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidFAT32Structure)
	}

	// The signature is a fixed trailing marker; without it the sector is no
	// boot sector at all, no matter what the rest contains.
	if bs.Signature != bootSectorSignature {
		return nil, checkpoint.Wrap(ErrInvalidSignature, ErrInvalidFAT32Structure)
	}

	// FAT supports 512, 1024, 2048 and 4096, but anything other than 512 is
	// rare and not supported by this driver.
	if bs.BPB.BytesPerSector != SectorSize {
		return nil, checkpoint.Wrap(ErrUnsupportedSectorSize, ErrInvalidFAT32Structure)
	}

	// Sectors per cluster has to be a power of two and greater than 0.
	spc := bs.BPB.SectorsPerCluster
	if spc == 0 || spc&(spc-1) != 0 {
		return nil, checkpoint.Wrap(ErrInvalidSectorsPerCluster, ErrInvalidFAT32Structure)
	}

	// The reserved area contains at least this boot sector.
	if bs.BPB.ReservedSectorCount == 0 {
		return nil, checkpoint.Wrap(ErrInvalidReservedSectors, ErrInvalidFAT32Structure)
	}

	// On FAT32 the 16 bit sector and FAT size fields and the fixed root
	// directory are unused and have to be zero, while the 32 bit fields
	// have to be set. Anything else is FAT12/16 which this driver does not
	// support.
	if bs.BPB.RootEntryCount != 0 ||
		bs.BPB.TotalSectors16 != 0 ||
		bs.BPB.FATSize16 != 0 ||
		bs.BPB.TotalSectors32 == 0 ||
		bs.FAT32.FATSize == 0 {
		return nil, checkpoint.Wrap(ErrNotFAT32, ErrInvalidFAT32Structure)
	}

	return &bs, nil
}
