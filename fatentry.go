package gofat32

// entryMask removes the top 4 bits of a raw 32 bit FAT entry. They are
// reserved on FAT32 and must never be interpreted.
const entryMask = 0x0FFFFFFF

// End-of-chain and bad-cluster sentinels of the masked 28 bit entry value.
const (
	entryBad      = 0x0FFFFFF7
	entryEOFStart = 0x0FFFFFF8
	entryEOFEnd   = 0x0FFFFFFF
)

// FATEntry is one masked 28 bit entry of the File Allocation Table. Its
// value is either the number of the next cluster in a chain or one of
// several sentinel values which the predicate methods distinguish.
type FATEntry uint32

// Value returns the masked entry as plain uint32.
func (e FATEntry) Value() uint32 {
	return uint32(e)
}

// IsFree reports whether the cluster is not allocated at all. A free
// cluster inside of a chain is corruption.
func (e FATEntry) IsFree() bool {
	return e == 0x00000000
}

// IsReservedTemp reports whether the entry holds the reserved value 1 which
// is never a valid chain link.
func (e FATEntry) IsReservedTemp() bool {
	return e == 0x00000001
}

// IsNextCluster reports whether the entry points to another cluster.
// Whether that cluster actually exists on the volume depends on the cluster
// count and is checked by Volume.FATEntry.
func (e FATEntry) IsNextCluster() bool {
	return e >= 0x00000002 && e <= 0x0FFFFFEF
}

// IsReservedSometimes reports whether the entry is in the range
// 0x0FFFFFF0 - 0x0FFFFFF5 which is reserved on FAT32 and may not occur in a
// chain.
func (e FATEntry) IsReservedSometimes() bool {
	return e >= 0x0FFFFFF0 && e <= 0x0FFFFFF5
}

// IsReserved reports whether the entry holds the reserved value 0x0FFFFFF6.
func (e FATEntry) IsReserved() bool {
	return e == 0x0FFFFFF6
}

// IsBad reports whether the cluster is marked as bad.
func (e FATEntry) IsBad() bool {
	return e == entryBad
}

// IsEOF reports whether the entry is an end-of-chain marker.
func (e FATEntry) IsEOF() bool {
	return e >= entryEOFStart && e <= entryEOFEnd
}
