package gofat32

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aligator/gofat32/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while resolving paths or reading directories.
var (
	ErrOpenFilesystem = errors.New("could not open the filesystem")
	ErrReadCluster    = errors.New("could not read a data cluster")
)

// sector is the single cached sector of the filesystem layer. The volume
// core itself never caches, so repeated directory and file reads would hit
// the device for every entry without it.
type sector struct {
	current uint32
	valid   bool
	buffer  []byte
}

// Fs provides read-only access to the files on a mounted FAT32 volume as an
// afero.Fs. In contrast to the bare Volume it serializes all access with an
// internal lock and keeps a single-sector cache.
type Fs struct {
	lock        sync.Mutex
	volume      *Volume
	sectorCache sector
}

// New mounts the given device and opens the contained FAT32 filesystem.
func New(device BlockDevice) (*Fs, error) {
	volume, err := Mount(device)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrOpenFilesystem)
	}

	return NewFromVolume(volume), nil
}

// NewFromVolume opens the filesystem on an already mounted volume. The Fs
// takes over the exclusive use of the volume.
func NewFromVolume(volume *Volume) *Fs {
	return &Fs{
		volume: volume,
		sectorCache: sector{
			buffer: make([]byte, SectorSize),
		},
	}
}

// Volume returns the underlying mounted volume, for example to query its
// geometry.
func (fs *Fs) Volume() *Volume {
	return fs.volume
}

// Label returns the volume label.
func (fs *Fs) Label() string {
	return fs.volume.Label()
}

// fetch loads a specific single sector of the volume into the cache and
// returns the cache buffer. The caller has to hold the lock and must not
// retain the buffer across another fetch.
func (fs *Fs) fetch(lba uint32) ([]byte, error) {
	// Only load it once.
	if fs.sectorCache.valid && fs.sectorCache.current == lba {
		return fs.sectorCache.buffer, nil
	}

	if err := fs.volume.device.ReadSector(lba, fs.sectorCache.buffer); err != nil {
		fs.sectorCache.valid = false
		return nil, checkpoint.From(err)
	}

	fs.sectorCache.current = lba
	fs.sectorCache.valid = true

	return fs.sectorCache.buffer, nil
}

// readCluster reads the full data of one cluster. The caller has to hold
// the lock.
func (fs *Fs) readCluster(cluster uint32) ([]byte, error) {
	lba := fs.volume.ClusterToLBA(cluster)

	data := make([]byte, 0, int(fs.volume.SectorsPerCluster())*SectorSize)
	for s := uint32(0); s < uint32(fs.volume.SectorsPerCluster()); s++ {
		buf, err := fs.fetch(lba + s)
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadCluster)
		}
		data = append(data, buf...)
	}

	return data, nil
}

// readChain reads the data of a whole cluster chain. The caller has to hold
// the lock.
func (fs *Fs) readChain(start uint32) ([]byte, error) {
	var data []byte

	walker := fs.volume.WalkChain(start)
	for walker.Next() {
		clusterData, err := fs.readCluster(walker.Cluster())
		if err != nil {
			return nil, checkpoint.From(err)
		}
		data = append(data, clusterData...)
	}
	if err := walker.Err(); err != nil {
		return nil, checkpoint.From(err)
	}

	return data, nil
}

// readRoot reads all entries of the root directory.
func (fs *Fs) readRoot() ([]ExtendedEntryHeader, error) {
	return fs.readDir(fs.volume.RootCluster())
}

// readDir reads all entries of the directory starting at the given cluster.
func (fs *Fs) readDir(cluster uint32) ([]ExtendedEntryHeader, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := fs.readChain(cluster)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	return parseDirEntries(data)
}

// readFileAt reads up to readSize bytes at offset from the file stored in
// the chain starting at cluster. Reads beyond fileSize are cut off as the
// last cluster usually contains data beyond the end of the file.
func (fs *Fs) readFileAt(cluster uint32, fileSize int64, offset int64, readSize int64) ([]byte, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if offset >= fileSize {
		return nil, io.EOF
	}
	if offset+readSize > fileSize {
		readSize = fileSize - offset
	}

	clusterSize := int64(fs.volume.SectorsPerCluster()) * int64(fs.volume.BytesPerSector())
	result := make([]byte, 0, readSize)

	// pos is the byte offset of the current cluster inside of the file.
	var pos int64
	walker := fs.volume.WalkChain(cluster)
	for walker.Next() {
		if pos >= offset+readSize {
			break
		}

		if pos+clusterSize > offset {
			data, err := fs.readCluster(walker.Cluster())
			if err != nil {
				return result, checkpoint.From(err)
			}

			from := int64(0)
			if offset > pos {
				from = offset - pos
			}
			to := clusterSize
			if pos+to > offset+readSize {
				to = offset + readSize - pos
			}

			result = append(result, data[from:to]...)
		}

		pos += clusterSize
	}
	if err := walker.Err(); err != nil {
		return result, checkpoint.From(err)
	}

	return result, nil
}

// splitPath splits a slash separated path into its components. The empty
// path, "/" and "." address the root directory and yield no components.
func splitPath(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" || path == "." {
		return nil, nil
	}

	parts := strings.Split(path, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return nil, checkpoint.From(ErrInvalidPath)
		}
	}

	return parts, nil
}

// rootDirInfo is the synthetic FileInfo of the root directory, which has no
// directory entry of its own on disk.
type rootDirInfo struct{}

func (r rootDirInfo) Name() string       { return "/" }
func (r rootDirInfo) Size() int64        { return 0 }
func (r rootDirInfo) Mode() os.FileMode  { return os.ModeDir }
func (r rootDirInfo) ModTime() time.Time { return time.Time{} }
func (r rootDirInfo) IsDir() bool        { return true }
func (r rootDirInfo) Sys() interface{}   { return nil }

func (fs *Fs) rootFile() *File {
	return &File{
		fs:           fs,
		path:         "",
		isDirectory:  true,
		firstCluster: fs.volume.RootCluster(),
		stat:         rootDirInfo{},
	}
}

func (fs *Fs) fileFromEntry(path string, entry ExtendedEntryHeader) *File {
	return &File{
		fs:           fs,
		path:         path,
		isDirectory:  entry.Attribute&AttrDirectory != 0,
		isReadOnly:   entry.Attribute&AttrReadOnly != 0,
		isHidden:     entry.Attribute&AttrHidden != 0,
		isSystem:     entry.Attribute&AttrSystem != 0,
		firstCluster: entry.FirstCluster(),
		stat:         entry.FileInfo(),
	}
}

// open resolves a path to a File, component by component starting at the
// root directory.
func (fs *Fs) open(path string) (*File, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	file := fs.rootFile()
	for i, part := range parts {
		if !file.isDirectory {
			return nil, checkpoint.From(ErrInvalidPath)
		}

		var entries []ExtendedEntryHeader
		if file.path == "" {
			entries, err = fs.readRoot()
		} else {
			entries, err = fs.readDir(file.firstCluster)
		}
		if err != nil {
			return nil, checkpoint.From(err)
		}

		found := false
		for _, entry := range entries {
			info := entry.FileInfo()
			// FAT path lookup is case-insensitive.
			if strings.EqualFold(info.Name(), part) {
				file = fs.fileFromEntry(strings.Join(parts[:i+1], "/"), entry)
				found = true
				break
			}
		}
		if !found {
			return nil, checkpoint.From(ErrFileNotFound)
		}
	}

	return file, nil
}

// Open opens the file or directory at the given path for reading.
// May return ErrFileNotFound or ErrInvalidPath.
func (fs *Fs) Open(name string) (afero.File, error) {
	file, err := fs.open(name)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	return file, nil
}

// OpenFile opens a file respecting the given flags. As the filesystem is
// read-only every flag requesting a mutation fails with
// ErrReadOnlyFilesystem.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, checkpoint.From(ErrReadOnlyFilesystem)
	}

	return fs.Open(name)
}

// Stat returns the FileInfo of the file or directory at the given path.
func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	file, err := fs.open(name)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	return file.Stat()
}

// Name returns the name of this filesystem implementation.
func (fs *Fs) Name() string {
	return "gofat32"
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) Remove(name string) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) RemoveAll(path string) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) Rename(oldname, newname string) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return checkpoint.From(ErrReadOnlyFilesystem)
}
