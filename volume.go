package gofat32

import (
	"encoding/binary"
	"errors"
	"strings"

	"github.com/aligator/gofat32/checkpoint"
)

// These errors may occur while mounting or querying a volume.
var (
	ErrEmptyDevice      = errors.New("device reports no sectors")
	ErrImpossibleLayout = errors.New("total sector count is smaller than the data region start")
	ErrClusterOutOfArea = errors.New("cluster is outside of the volume area")
)

// Info contains the derived geometry of a mounted volume. It is computed
// once from the boot sector and never changes afterwards, so every other
// component can do its sector math without re-parsing raw bytes.
type Info struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	FATSize           uint32
	RootCluster       uint32
	FirstFATSector    uint32
	FirstDataSector   uint32
	ClusterCount      uint32
	TotalSectors      uint32
	VolumeID          uint32
	Label             string
}

// Volume is a mounted FAT32 volume. It exclusively owns its BlockDevice and
// holds the immutable geometry.
//
// Volume keeps no internal state besides the geometry: every read goes
// straight to the device and there is no locking. A caller using one Volume
// from several goroutines has to serialize access itself.
type Volume struct {
	device BlockDevice
	info   Info
}

// Mount reads and validates the boot sector of the given device and derives
// the volume geometry from it. A malformed boot sector is a permanent
// failure, there are no retries at this layer.
func Mount(device BlockDevice) (*Volume, error) {
	if device == nil || device.SectorCount() == 0 {
		return nil, checkpoint.Wrap(ErrEmptyDevice, ErrIO)
	}

	raw := make([]byte, SectorSize)
	if err := device.ReadSector(0, raw); err != nil {
		return nil, checkpoint.Wrap(err, ErrIO)
	}

	bs, err := DecodeBootSector(raw)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	info := Info{
		BytesPerSector:    bs.BPB.BytesPerSector,
		SectorsPerCluster: bs.BPB.SectorsPerCluster,
		ReservedSectors:   bs.BPB.ReservedSectorCount,
		NumFATs:           bs.BPB.NumFATs,
		FATSize:           bs.FAT32.FATSize,
		RootCluster:       bs.FAT32.RootCluster,
		TotalSectors:      bs.BPB.TotalSectors32,
		VolumeID:          bs.FAT32.BSVolumeID,
		Label:             strings.TrimRight(string(bs.FAT32.BSVolumeLabel[:]), " "),
	}

	info.FirstFATSector = uint32(info.ReservedSectors)
	info.FirstDataSector = uint32(info.ReservedSectors) + uint32(info.NumFATs)*info.FATSize

	// Without this check the cluster count below would wrap around.
	if info.TotalSectors < info.FirstDataSector {
		return nil, checkpoint.Wrap(ErrImpossibleLayout, ErrInvalidFAT32Structure)
	}
	info.ClusterCount = (info.TotalSectors - info.FirstDataSector) / uint32(info.SectorsPerCluster)

	return &Volume{
		device: device,
		info:   info,
	}, nil
}

// Info returns a copy of the volume geometry.
func (v *Volume) Info() Info {
	return v.info
}

// BytesPerSector returns the sector size of the volume in bytes.
func (v *Volume) BytesPerSector() uint16 {
	return v.info.BytesPerSector
}

// SectorsPerCluster returns the cluster size of the volume in sectors.
func (v *Volume) SectorsPerCluster() uint8 {
	return v.info.SectorsPerCluster
}

// RootCluster returns the first cluster of the root directory.
func (v *Volume) RootCluster() uint32 {
	return v.info.RootCluster
}

// ClusterCount returns the number of data clusters on the volume.
func (v *Volume) ClusterCount() uint32 {
	return v.info.ClusterCount
}

// Label returns the volume label with trailing padding removed.
func (v *Volume) Label() string {
	return v.info.Label
}

// ClusterToLBA returns the first sector of the given cluster.
//
// This is pure arithmetic without any bounds checking. The caller has to
// make sure that cluster >= 2 (clusters 0 and 1 never address data), for
// example by looking the cluster up with FATEntry first.
func (v *Volume) ClusterToLBA(cluster uint32) uint32 {
	return v.info.FirstDataSector + (cluster-2)*uint32(v.info.SectorsPerCluster)
}

// FATEntry reads and decodes the FAT entry of the given cluster.
//
// Cluster numbers below 2 or beyond the cluster count are rejected with
// ErrInvalidFAT32Structure. Device failures are surfaced as ErrIO without
// retry. Nothing is cached, repeated lookups in the same FAT sector read it
// again.
func (v *Volume) FATEntry(cluster uint32) (FATEntry, error) {
	if cluster < 2 || cluster >= v.info.ClusterCount+2 {
		return 0, checkpoint.Wrap(ErrClusterOutOfArea, ErrInvalidFAT32Structure)
	}

	// Each entry is 4 bytes wide inside the logical FAT region.
	offset := cluster * 4
	sector := v.info.FirstFATSector + offset/uint32(v.info.BytesPerSector)
	rel := offset % uint32(v.info.BytesPerSector)

	raw := make([]byte, SectorSize)
	if err := v.device.ReadSector(sector, raw); err != nil {
		return 0, checkpoint.Wrap(err, ErrIO)
	}

	return FATEntry(binary.LittleEndian.Uint32(raw[rel:rel+4]) & entryMask), nil
}
