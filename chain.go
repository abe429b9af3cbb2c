package gofat32

import (
	"errors"

	"github.com/aligator/gofat32/checkpoint"
)

// These errors may occur while following a cluster chain. Both wrap
// ErrInvalidFAT32Structure.
var (
	ErrChainCycle = errors.New("cluster chain does not terminate")
	ErrChainLink  = errors.New("cluster chain links to an unusable cluster")
)

// ChainWalker lazily follows a cluster chain through the FAT, one cluster
// per call to Next:
//
//  walker := volume.WalkChain(file.FirstCluster())
//  for walker.Next() {
//  	read(walker.Cluster())
//  }
//  if err := walker.Err(); err != nil {
//  	return err
//  }
//
// The FAT is untrusted input, so the walk is bounded: after ClusterCount
// clusters without an end-of-chain marker the chain has to contain a cycle
// and the walker fails instead of looping forever. A walker is not
// restartable, but a fresh one for the same start cluster is fully
// independent and re-reads everything from the device.
type ChainWalker struct {
	volume *Volume

	current uint32
	cluster uint32
	steps   uint32
	done    bool
	err     error
}

// WalkChain starts a new walk at the given cluster.
func (v *Volume) WalkChain(start uint32) *ChainWalker {
	return &ChainWalker{
		volume:  v,
		current: start,
	}
}

// Next advances the walk by one cluster. It returns false when the chain
// ended, either successfully at an end-of-chain marker or because of an
// error which Err then reports.
func (w *ChainWalker) Next() bool {
	if w.done || w.err != nil {
		return false
	}

	if w.steps >= w.volume.info.ClusterCount {
		w.err = checkpoint.Wrap(ErrChainCycle, ErrInvalidFAT32Structure)
		return false
	}

	entry, err := w.volume.FATEntry(w.current)
	if err != nil {
		w.err = err
		return false
	}

	w.cluster = w.current
	w.steps++

	switch {
	case entry.IsEOF():
		w.done = true
	case entry.IsNextCluster():
		w.current = entry.Value()
	default:
		// Bad, free and reserved entries never belong into a chain. The
		// current cluster itself is still valid and yielded, the error
		// surfaces on the following call.
		w.err = checkpoint.Wrap(ErrChainLink, ErrInvalidFAT32Structure)
	}

	return true
}

// Cluster returns the cluster the last call to Next advanced to.
func (w *ChainWalker) Cluster() uint32 {
	return w.cluster
}

// Err returns the error which stopped the walk, or nil if the chain ended
// at an end-of-chain marker.
func (w *ChainWalker) Err() error {
	return w.err
}

// Chain follows the whole chain starting at the given cluster and collects
// all cluster numbers eagerly. On error the clusters read so far are
// returned together with the error.
func (v *Volume) Chain(start uint32) ([]uint32, error) {
	var clusters []uint32

	walker := v.WalkChain(start)
	for walker.Next() {
		clusters = append(clusters, walker.Cluster())
	}

	if err := walker.Err(); err != nil {
		return clusters, checkpoint.From(err)
	}

	return clusters, nil
}
