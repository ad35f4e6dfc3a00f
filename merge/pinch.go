package merge

import (
	"context"
	"errors"

	"github.com/bebop/merge-mapper/fmindex"
)

// Thread is an opaque handle to one contig's sequence within the external
// pinch structure, as returned by Pincher.GetThread.
type Thread interface{}

// Pincher is the external collaborator spec.md §6 calls the "pinch
// structure": a thread-per-contig equivalence structure that the Applier
// mutates on the consumer's single dedicated goroutine. No other goroutine
// in this package touches it.
type Pincher interface {
	// GetThread returns the thread handle for a contig number.
	GetThread(contig int) Thread
	// Pinch declares that offset1 on first and offset2 on second name the
	// same base (length bases, starting there) and should be unioned into
	// one equivalence class. sameStrand is the orientation bit: true when
	// both TextPositions were on the same strand of their respective
	// contigs.
	Pinch(first, second Thread, offset1, offset2, length int, sameStrand bool) error
}

// ErrNonReversibleUnsupported is returned either when Drain detects a second,
// distinct query base trying to pinch into a reference base some earlier
// merge already claimed, or when UndoNonReversible is called directly. Both
// are the same underlying case: the source this spec is drawn from detects
// this exact collision (a cross-direction multimap invisible to the
// per-position reconciliation in generator.go) and responds by unpinching
// the earlier merge, but leaves that unpinch half-implemented, relying on a
// "pop last segment from a pinch block" primitive no Pincher in this
// module's scope is guaranteed to provide; per spec §9 this module refuses
// the operation outright rather than attempting a partial reconstruction
// that could leave the pinch structure in an undetectably inconsistent
// state.
var ErrNonReversibleUnsupported = errors.New("merge: undoing non-reversible merges is not supported")

// Applier is the merge queue's single consumer (C7): it drains a Queue and
// translates every surviving Merge into one Pincher.Pinch call.
type Applier struct {
	pincher Pincher
	mode    ReversibleMode
}

// NewApplier pairs a Pincher with the ReversibleMode governing which merges
// reach it.
func NewApplier(pincher Pincher, mode ReversibleMode) *Applier {
	return &Applier{pincher: pincher, mode: mode}
}

// Drain runs the applier's consumer loop to completion: wait for an item or
// EOF, dequeue, pinch, repeat, until the queue reports IsEmpty. It returns
// the number of merges actually applied (NonReversible merges discarded
// under ReversibleOnly do not count) and the first error from Pincher.Pinch,
// if any -- a pinch error stops draining immediately so the driver can
// cancel the remaining generators via ctx.
func (a *Applier) Drain(ctx context.Context, q *Queue) (applied int, err error) {
	claimedBy := make(map[fmindex.TextPosition]fmindex.TextPosition)
	for {
		q.WaitForNonemptyOrEnd(ctx)
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if q.IsEmpty() {
			return applied, nil
		}
		m, ok := q.Dequeue(ctx)
		if !ok {
			continue
		}
		if a.mode == ReversibleOnly && m.NonReversible {
			continue
		}
		first := m.Query
		second := m.Ref
		if by, claimed := claimedBy[second]; claimed && by != first {
			// A different query base already pinched into this exact
			// reference base. Undoing the earlier pinch is the source's
			// unfinished segment-rebuild path; this module refuses rather
			// than attempt it (see ErrNonReversibleUnsupported).
			return applied, ErrNonReversibleUnsupported
		}
		claimedBy[second] = first
		t1 := a.pincher.GetThread(first.Contig())
		t2 := a.pincher.GetThread(second.Contig())
		sameStrand := first.Strand() == second.Strand()
		if pinchErr := a.pincher.Pinch(t1, t2, int(first.Offset), int(second.Offset), 1, sameStrand); pinchErr != nil {
			return applied, pinchErr
		}
		applied++
	}
}

// UndoNonReversible always fails: see ErrNonReversibleUnsupported.
func (a *Applier) UndoNonReversible(context.Context, Merge) error {
	return ErrNonReversibleUnsupported
}
