package gofat32

import (
	"errors"

	"github.com/aligator/gofat32/checkpoint"
	"github.com/spf13/afero"
)

// SectorSize is the only sector size this driver supports. Volumes declaring
// anything else in their BPB are rejected during mount.
const SectorSize = 512

// BlockDevice is the capability contract the volume core consumes. It is
// implemented by a real medium outside of this package, for example by a
// disk, a partition or an image file.
//
// All sectors are exactly SectorSize bytes long. A mounted Volume borrows
// the device exclusively for its whole lifetime.
//
// The read-only core never calls WriteSector, but the capability is part of
// the contract so that a future write path does not need a new interface.
// Generated mock using mockgen:
//  mockgen -source=device.go -destination=device_mock.go -package gofat32
type BlockDevice interface {
	// ReadSector reads the sector at the given LBA into buf.
	// buf is always exactly SectorSize bytes long.
	ReadSector(lba uint32, buf []byte) error

	// WriteSector writes buf to the sector at the given LBA.
	// buf is always exactly SectorSize bytes long.
	WriteSector(lba uint32, buf []byte) error

	// SectorCount returns the number of addressable sectors.
	SectorCount() uint32
}

// These errors may occur while accessing a FileDisk.
var (
	ErrShortSector     = errors.New("could not transfer a full sector")
	ErrSectorOutOfArea = errors.New("sector is outside of the device area")
)

// FileDisk is a BlockDevice backed by a single file. It works with any
// afero.File, which includes *os.File as well as in-memory files used by
// the tests.
type FileDisk struct {
	file    afero.File
	sectors uint32
}

// NewFileDisk creates a FileDisk on top of the given file. The usable area
// is the file size rounded down to whole sectors.
func NewFileDisk(file afero.File) (*FileDisk, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrIO)
	}

	return &FileDisk{
		file:    file,
		sectors: uint32(stat.Size() / SectorSize),
	}, nil
}

func (d *FileDisk) ReadSector(lba uint32, buf []byte) error {
	if lba >= d.sectors {
		return checkpoint.Wrap(ErrSectorOutOfArea, ErrIO)
	}

	n, err := d.file.ReadAt(buf[:SectorSize], int64(lba)*SectorSize)
	if err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}
	if n != SectorSize {
		return checkpoint.Wrap(ErrShortSector, ErrIO)
	}

	return nil
}

func (d *FileDisk) WriteSector(lba uint32, buf []byte) error {
	if lba >= d.sectors {
		return checkpoint.Wrap(ErrSectorOutOfArea, ErrIO)
	}

	n, err := d.file.WriteAt(buf[:SectorSize], int64(lba)*SectorSize)
	if err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}
	if n != SectorSize {
		return checkpoint.Wrap(ErrShortSector, ErrIO)
	}

	return nil
}

func (d *FileDisk) SectorCount() uint32 {
	return d.sectors
}
