// File model contains the structs which match the on-disk structures of a
// FAT32 volume. All of them are decoded with encoding/binary using explicit
// little-endian byte order, field by field in declaration order. No struct
// is ever aliased onto a raw buffer.

package gofat32

// BPB is the common part of the Bios Parameter Block at the start of the
// boot sector. It is identical for all FAT variants and occupies the first
// 36 bytes of sector 0.
type BPB struct {
	BSJumpBoot          [3]byte
	BSOEMName           [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
}

// FAT32SpecificData directly follows the BPB on FAT32 volumes and fills the
// BPB up to its canonical 90 bytes.
type FAT32SpecificData struct {
	FATSize          uint32
	ExtFlags         uint16
	FSVersion        uint16
	RootCluster      uint32
	FSInfo           uint16
	BkBootSector     uint16
	Reserved         [12]byte
	BSDriveNumber    byte
	BSReserved1      byte
	BSBootSignature  byte
	BSVolumeID       uint32
	BSVolumeLabel    [11]byte
	BSFileSystemType [8]byte
}

// BootSector is the full 512 byte sector 0 of a FAT32 volume.
type BootSector struct {
	BPB       BPB
	FAT32     FAT32SpecificData
	BootCode  [420]byte
	Signature uint16
}

// bootSectorSignature is the fixed value of the last two bytes of every
// valid boot sector, read as a little-endian uint16.
const bootSectorSignature = 0xAA55

// Directory entry attribute flags.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeId  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrLongName  = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeId
)

// EntryHeader is a single 32 byte short directory entry.
type EntryHeader struct {
	Name            [11]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// FirstCluster combines the split high and low cluster fields of the entry.
func (h *EntryHeader) FirstCluster() uint32 {
	return uint32(h.FirstClusterHI)<<16 | uint32(h.FirstClusterLO)
}

// LongFilenameEntry is a single 32 byte VFAT long filename entry. A long
// name is spread over several of these, stored directly before the short
// entry they belong to, in reverse order.
type LongFilenameEntry struct {
	Sequence  byte
	First     [5]uint16
	Attribute byte
	EntryType byte
	Checksum  byte
	Second    [6]uint16
	Zero      [2]byte
	Third     [2]uint16
}

// ExtendedEntryHeader is a short directory entry together with its
// reconstructed long filename. ExtendedName is empty if the entry has no
// long filename entries.
type ExtendedEntryHeader struct {
	EntryHeader
	ExtendedName string
}
