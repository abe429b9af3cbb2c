package gofat32

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
)

// TestGoFS tests the own compatibility layer to io/fs.
func TestGoFS(t *testing.T) {
	gofs, err := NewGoFS(testFilesystemImage(t).build(t))
	if err != nil {
		t.Fatalf("NewGoFS() error = %v", err)
	}

	if err := fstest.TestFS(gofs, testHelloName, testLongName, "SUB/NESTED.TXT"); err != nil {
		t.Fatal(err)
	}
}

// TestIOFS tests the use with the afero.IOFS compatibility layer to io/fs.
func TestIOFS(t *testing.T) {
	iofs := afero.IOFS{Fs: testingNew(t)}
	if err := fstest.TestFS(iofs, testHelloName, testLongName, "SUB/NESTED.TXT"); err != nil {
		t.Fatal(err)
	}
}

func TestNewGoFS(t *testing.T) {
	tests := []struct {
		name       string
		device     BlockDevice
		wantNotNil bool
		wantErr    bool
	}{
		{
			name:       "FAT32 test image",
			device:     testFilesystemImage(t).build(t),
			wantNotNil: true,
			wantErr:    false,
		},
		{
			name: "invalid boot sector",
			device: func() BlockDevice {
				image := newTestImage()
				image.bootSector.Signature = 0
				return image.build(t)
			}(),
			wantNotNil: false,
			wantErr:    true,
		},
		{
			name:       "no device",
			device:     nil,
			wantNotNil: false,
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewGoFS(tt.device)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGoFS() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if (got != nil) != tt.wantNotNil {
				t.Errorf("NewGoFS() = %v, wantNotNil %v", got, tt.wantNotNil)
			}
		})
	}
}

func TestGoFs_OpenInvalidPath(t *testing.T) {
	gofs, err := NewGoFS(testFilesystemImage(t).build(t))
	if err != nil {
		t.Fatalf("NewGoFS() error = %v", err)
	}

	for _, name := range []string{"/HELLO.TXT", "HELLO.TXT/", "./HELLO.TXT", "SUB//NESTED.TXT", ""} {
		if _, err := gofs.Open(name); err == nil {
			t.Errorf("GoFs.Open(%q) expected an error", name)
		} else {
			var pathErr *fs.PathError
			if !errors.As(err, &pathErr) {
				t.Errorf("GoFs.Open(%q) error = %v, want a *fs.PathError", name, err)
			}
		}
	}
}

func TestGoFs_ReadDir(t *testing.T) {
	gofs, err := NewGoFS(testFilesystemImage(t).build(t))
	if err != nil {
		t.Fatalf("NewGoFS() error = %v", err)
	}

	entries, err := fs.ReadDir(gofs, ".")
	if err != nil {
		t.Fatalf("fs.ReadDir() error = %v", err)
	}

	want := []string{testHelloName, testLongName, "SUB"}
	if len(entries) != len(want) {
		t.Fatalf("fs.ReadDir() returned %v entries, want %v", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.Name() != want[i] {
			t.Errorf("fs.ReadDir() entry %v = %v, want %v", i, entry.Name(), want[i])
		}
		if wantDir := entry.Name() == "SUB"; entry.IsDir() != wantDir {
			t.Errorf("fs.ReadDir() entry %v IsDir() = %v, want %v", entry.Name(), entry.IsDir(), wantDir)
		}
	}
}
