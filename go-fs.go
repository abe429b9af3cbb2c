package gofat32

import (
	"errors"
	"io/fs"
)

// GoDirEntry adapts an os.FileInfo to fs.DirEntry.
type GoDirEntry struct {
	fs.FileInfo
}

func (g GoDirEntry) Type() fs.FileMode {
	return g.FileInfo.Mode().Type()
}

func (g GoDirEntry) Info() (fs.FileInfo, error) {
	return g.FileInfo, nil
}

// GoFile adapts a File to fs.File and fs.ReadDirFile.
type GoFile struct {
	*File
}

func (g GoFile) Stat() (fs.FileInfo, error) {
	return g.File.Stat()
}

func (g GoFile) Read(bytes []byte) (int, error) {
	return g.File.Read(bytes)
}

func (g GoFile) Close() error {
	return g.File.Close()
}

func (g GoFile) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := g.File.Readdir(n)

	goEntries := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		goEntries[i] = GoDirEntry{e}
	}

	return goEntries, err
}

// GoFs wraps the afero FAT32 implementation to be compatible with fs.FS.
// It embeds the Fs by pointer as Fs contains the access lock.
type GoFs struct {
	*Fs
}

// NewGoFS mounts the given device and opens the contained FAT32 filesystem
// as fs.FS compatible filesystem.
func NewGoFS(device BlockDevice) (*GoFs, error) {
	fat, err := New(device)
	if err != nil {
		return nil, err
	}

	return &GoFs{fat}, nil
}

func (g *GoFs) Open(name string) (fs.File, error) {
	// io/fs is stricter about path names than the afero layer.
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	file, err := g.Fs.Open(name)
	if err != nil {
		return nil, err
	}

	f, ok := file.(*File)
	if !ok {
		return nil, errors.New("invalid File implementation")
	}

	return GoFile{f}, nil
}
