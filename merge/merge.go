/*
Package merge implements the concurrent merge pipeline (C5-C8): the per-contig
generator that reconciles left and right context mappings from fmindex into
concrete merges, the bounded multi-producer/single-consumer queue those
merges travel through, and the applier that drains the queue into an external
pinch structure.

FMDIndex and its range table are read-only shared state (fmindex.FMDIndex is
never mutated after it is built); the only mutable shared state in this
package is Queue, and every mutation happens under its internal lock, exactly
as spec.md §5 requires.
*/
package merge

import "github.com/bebop/merge-mapper/fmindex"

// Merge is a single proposed equivalence between a query contig's base and a
// reference base, discovered by reconciling a left-context mapping and a
// right-context mapping of the same query position (generator.go). Ref may
// name either face of its contig; NonReversible is set when only one side of
// the reconciliation (left or right) confirmed the merge, per spec §4.7/§9.
type Merge struct {
	Query         fmindex.TextPosition
	Ref           fmindex.TextPosition
	NonReversible bool
}

// ReversibleMode selects which merges an Applier commits to the pinch
// structure. It replaces the source's unfinished MergeScheme-hierarchy
// variant behaviour (spec §9 "Polymorphism") with a plain configuration
// value.
type ReversibleMode int

const (
	// ReversibleOnly discards every Merge with NonReversible set before
	// pinching. This is the default: only merges confirmed by both left and
	// right context mapping, agreeing on the same reference base with
	// opposite faces, are applied.
	ReversibleOnly ReversibleMode = iota
	// All applies every merge the generators emit, including tagged
	// non-reversible ones.
	All
)
