package gofat32

import (
	"errors"
	"syscall"
)

// The error taxonomy of the whole driver. The volume core only ever produces
// ErrIO and ErrInvalidFAT32Structure. ErrFileNotFound and ErrInvalidPath
// belong to the directory and file layer but share this family so that
// callers can match on a single set of sentinels with errors.Is.
var (
	// ErrIO wraps any read or write failure of the underlying BlockDevice.
	// It is always surfaced to the caller and never retried here.
	ErrIO = errors.New("device I/O failed")

	// ErrInvalidFAT32Structure means an on-disk structural invariant does
	// not hold: bad boot signature, unsupported sector size, impossible
	// sector arithmetic, out-of-range cluster references or a corrupt
	// cluster chain.
	ErrInvalidFAT32Structure = errors.New("invalid FAT32 structure")

	// ErrFileNotFound is returned when a path does not exist on the volume.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPath is returned when a path cannot be resolved at all,
	// for example because it traverses through a regular file.
	ErrInvalidPath = errors.New("invalid path")

	// ErrReadOnlyFilesystem is returned by all mutating operations.
	ErrReadOnlyFilesystem = syscall.EROFS
)
