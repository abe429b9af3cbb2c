package gofat32

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/spf13/afero"
)

// Geometry of the synthetic test volume: 64 sectors, 2 reserved, one FAT of
// one sector, one sector per cluster. Data region starts at sector 3,
// cluster count is (64-3)/1 = 61.
const (
	testReservedSectors = 2
	testFATSize         = 1
	testTotalSectors    = 64
	testFirstDataSector = testReservedSectors + testFATSize
	testClusterCount    = (testTotalSectors - testFirstDataSector)
)

// testBootSector returns a valid FAT32 boot sector for the synthetic test
// volume. Tests mutate the result to produce invalid variants.
func testBootSector() BootSector {
	bs := BootSector{
		BPB: BPB{
			BSJumpBoot:          [3]byte{0xEB, 0x58, 0x90},
			BytesPerSector:      SectorSize,
			SectorsPerCluster:   1,
			ReservedSectorCount: testReservedSectors,
			NumFATs:             1,
			Media:               0xF8,
			TotalSectors32:      testTotalSectors,
		},
		FAT32: FAT32SpecificData{
			FATSize:     testFATSize,
			RootCluster: 2,
			BSVolumeID:  0x1234ABCD,
		},
		Signature: bootSectorSignature,
	}
	copy(bs.BPB.BSOEMName[:], "gofat32 ")
	copy(bs.FAT32.BSVolumeLabel[:], "TESTVOL    ")
	copy(bs.FAT32.BSFileSystemType[:], "FAT32   ")
	return bs
}

// encodeBootSector serializes a BootSector the same way the volume decodes
// it.
func encodeBootSector(t *testing.T, bs BootSector) []byte {
	t.Helper()

	buf := bytes.Buffer{}
	if err := binary.Write(&buf, binary.LittleEndian, &bs); err != nil {
		t.Fatalf("could not encode the boot sector: %v", err)
	}
	if buf.Len() != SectorSize {
		t.Fatalf("encoded boot sector has %d bytes, want %d", buf.Len(), SectorSize)
	}

	return buf.Bytes()
}

// testImage describes a synthetic volume by its FAT entries and cluster
// contents.
type testImage struct {
	bootSector BootSector
	fatEntries map[uint32]uint32
	clusters   map[uint32][]byte
}

func newTestImage() *testImage {
	return &testImage{
		bootSector: testBootSector(),
		fatEntries: map[uint32]uint32{},
		clusters:   map[uint32][]byte{},
	}
}

// chain links the given clusters in the FAT and terminates the last one
// with an end-of-chain marker.
func (ti *testImage) chain(clusters ...uint32) *testImage {
	for i := 0; i < len(clusters)-1; i++ {
		ti.fatEntries[clusters[i]] = clusters[i+1]
	}
	ti.fatEntries[clusters[len(clusters)-1]] = entryEOFEnd
	return ti
}

// cluster sets the data of one cluster. data may be shorter than a cluster
// and is padded with zeros.
func (ti *testImage) cluster(cluster uint32, data []byte) *testImage {
	ti.clusters[cluster] = data
	return ti
}

// build assembles the image in memory and returns a FileDisk on top of it.
func (ti *testImage) build(t *testing.T) *FileDisk {
	t.Helper()

	image := make([]byte, testTotalSectors*SectorSize)
	copy(image, encodeBootSector(t, ti.bootSector))

	// Entries 0 and 1 of the FAT are reserved.
	fat := image[testReservedSectors*SectorSize:]
	binary.LittleEndian.PutUint32(fat[0:], 0x0FFFFFF8)
	binary.LittleEndian.PutUint32(fat[4:], 0xFFFFFFFF)
	for cluster, value := range ti.fatEntries {
		binary.LittleEndian.PutUint32(fat[cluster*4:], value)
	}

	for cluster, data := range ti.clusters {
		offset := (testFirstDataSector + int(cluster) - 2) * SectorSize
		copy(image[offset:], data)
	}

	memFs := afero.NewMemMapFs()
	file, err := memFs.Create("test.img")
	if err != nil {
		t.Fatalf("could not create the image file: %v", err)
	}
	if _, err := file.Write(image); err != nil {
		t.Fatalf("could not write the image file: %v", err)
	}

	disk, err := NewFileDisk(file)
	if err != nil {
		t.Fatalf("could not open the image as disk: %v", err)
	}

	return disk
}

// mount builds the image and mounts it, failing the test on any error.
func (ti *testImage) mount(t *testing.T) *Volume {
	t.Helper()

	volume, err := Mount(ti.build(t))
	if err != nil {
		t.Fatalf("could not mount the test image: %v", err)
	}

	return volume
}

// shortNameOf builds the padded 11 byte 8.3 name out of name and extension.
func shortNameOf(name, ext string) [11]byte {
	var short [11]byte
	for i := range short {
		short[i] = ' '
	}
	copy(short[:8], name)
	copy(short[8:], ext)
	return short
}

// encodeShortEntry serializes a single short directory entry.
func encodeShortEntry(t *testing.T, header EntryHeader) []byte {
	t.Helper()

	buf := bytes.Buffer{}
	if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
		t.Fatalf("could not encode a directory entry: %v", err)
	}

	return buf.Bytes()
}

// encodeLongEntries serializes the long filename entries for the given name
// in their on-disk (reverse) order.
func encodeLongEntries(t *testing.T, longName string, shortName [11]byte) []byte {
	t.Helper()

	units := utf16.Encode([]rune(longName))
	units = append(units, 0x0000)
	for len(units)%13 != 0 {
		units = append(units, 0xFFFF)
	}

	sum := shortNameChecksum(shortName)
	count := len(units) / 13

	buf := bytes.Buffer{}
	for i := count - 1; i >= 0; i-- {
		entry := LongFilenameEntry{
			Sequence:  byte(i + 1),
			Attribute: AttrLongName,
			Checksum:  sum,
		}
		if i == count-1 {
			entry.Sequence |= lfnSequenceLast
		}

		part := units[i*13 : (i+1)*13]
		copy(entry.First[:], part[0:5])
		copy(entry.Second[:], part[5:11])
		copy(entry.Third[:], part[11:13])

		if err := binary.Write(&buf, binary.LittleEndian, &entry); err != nil {
			t.Fatalf("could not encode a long filename entry: %v", err)
		}
	}

	return buf.Bytes()
}
