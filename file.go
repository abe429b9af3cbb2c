package gofat32

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/aligator/gofat32/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while processing a file.
var (
	ErrReadFile = errors.New("could not read file completely")
	ErrSeekFile = errors.New("could not seek inside of the file")
	ErrReadDir  = errors.New("could not read the directory")
)

// fatFileFs provides all methods needed from the filesystem for File.
// It mainly exists to be able to mock the Fs in tests.
// Generated mock using mockgen:
//  mockgen -source=file.go -destination=file_mock.go -package gofat32
type fatFileFs interface {
	readFileAt(cluster uint32, fileSize int64, offset int64, readSize int64) ([]byte, error)
	readRoot() ([]ExtendedEntryHeader, error)
	readDir(cluster uint32) ([]ExtendedEntryHeader, error)
}

// File is a read-only file or directory on a FAT32 volume implementing
// afero.File.
type File struct {
	fs   fatFileFs
	path string

	isDirectory bool
	isReadOnly  bool
	isHidden    bool
	isSystem    bool

	firstCluster uint32
	stat         os.FileInfo
	offset       int64
}

func (f *File) Close() error {
	f.fs = nil
	f.path = ""
	f.isDirectory = false
	f.isReadOnly = false
	f.isHidden = false
	f.isSystem = false
	f.firstCluster = 0
	f.stat = nil
	f.offset = 0

	return nil
}

func (f *File) Read(p []byte) (n int, err error) {
	if p == nil {
		return 0, nil
	}

	// Reading a file if the size has been already reached, makes no sense.
	if f.stat.Size() <= f.offset {
		return 0, io.EOF
	}

	offset := f.offset
	data, err := f.fs.readFileAt(f.firstCluster, f.stat.Size(), offset, int64(len(p)))

	if data != nil {
		copy(p, data)
	}

	// Seek even if an error occurred, errors from reading are used even if seek also errors.
	_, seekErr := f.Seek(int64(len(data)), io.SeekCurrent)

	if err != nil {
		return len(data), checkpoint.Wrap(err, ErrReadFile)
	}

	if seekErr != nil {
		return len(data), checkpoint.Wrap(seekErr, ErrReadFile)
	}

	return len(data), nil
}

func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if p == nil {
		return 0, nil
	}

	// Reading over the end makes no sense.
	if f.stat.Size() <= off {
		return 0, io.EOF
	}

	size := len(p)
	data, err := f.fs.readFileAt(f.firstCluster, f.stat.Size(), off, int64(size))

	if data != nil {
		copy(p, data)
	}

	if err != nil {
		return len(data), checkpoint.Wrap(err, ErrReadFile)
	}

	// A short read happens when off + size reaches over the end of the file.
	if len(data) < size {
		return len(data), io.EOF
	}
	return len(data), nil
}

// Seek jumps to a specific offset in the file. This affects all Read operation except ReadAt.
// May return a syscall.EINVAL error if the whence value is invalid.
// May return an afero.ErrOutOfRange error if the offset is out of range.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = f.offset + offset
	case io.SeekEnd:
		offset = f.stat.Size() + offset
	default:
		return 0, checkpoint.Wrap(ErrSeekFile, fmt.Errorf("%w, offset: %v, whence: %v", syscall.EINVAL, offset, whence))
	}

	if offset < 0 || offset > f.stat.Size() {
		return 0, checkpoint.Wrap(afero.ErrOutOfRange, fmt.Errorf("%w, offset: %v, whence: %v", ErrSeekFile, offset, whence))
	}

	f.offset = offset
	return offset, nil
}

func (f *File) Write(p []byte) (n int, err error) {
	return 0, checkpoint.From(ErrReadOnlyFilesystem)
}

func (f *File) WriteAt(p []byte, off int64) (n int, err error) {
	return 0, checkpoint.From(ErrReadOnlyFilesystem)
}

func (f *File) Name() string {
	return f.stat.Name()
}

// Readdir reads the contents of a directory.
// May return syscall.ENOTDIR if the current File is no directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if !f.isDirectory {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}

	var content []ExtendedEntryHeader
	var err error
	if f.path == "" {
		content, err = f.fs.readRoot()
	} else {
		content, err = f.fs.readDir(f.firstCluster)
	}

	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	end := len(content)

	if int64(len(content)) < f.offset+int64(count) {
		count = len(content) - int(f.offset)
		err = io.EOF
	}

	if count >= 0 {
		end = int(f.offset) + count
	}

	content = content[f.offset:end]

	if count > 0 {
		f.offset += int64(count)
	} else if count < 0 {
		f.offset = int64(end)
	}

	result := make([]os.FileInfo, len(content))
	for i := range content {
		result[i] = content[i].FileInfo()
	}

	return result, err
}

func (f *File) Readdirnames(count int) ([]string, error) {
	content, err := f.Readdir(count)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	names := make([]string, len(content))
	for i, entry := range content {
		names[i] = entry.Name()
	}

	return names, nil
}

func (f *File) Stat() (os.FileInfo, error) {
	return f.stat, nil
}

// Sync is a no-op as nothing is ever written.
func (f *File) Sync() error {
	return nil
}

func (f *File) Truncate(size int64) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (f *File) WriteString(s string) (ret int, err error) {
	return f.Write([]byte(s))
}
