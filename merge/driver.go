package merge

import (
	"context"
	"sync/atomic"

	"github.com/bebop/merge-mapper/fmindex"
	"golang.org/x/sync/errgroup"
)

// Config holds the per-run parameters a Scheme needs: which genome's contigs
// to map, the context-mapping thresholds, and the reversible-merge policy.
type Config struct {
	// TargetGenome is the genome id whose contigs are mapped against the
	// rest of the collection.
	TargetGenome int
	// MinContext is the minimum context length (§4.4-4.6) a mapping must
	// reach before it counts as resolved.
	MinContext int
	// Mismatches is the mismatch budget passed to MisMatchMap. 0 uses Cmap
	// (no mismatch tolerance) instead.
	Mismatches int
	// Mode selects which merges the Applier commits.
	Mode ReversibleMode
	// QueueCapacity bounds the merge queue (0 means unbounded).
	QueueCapacity int
}

/*
Scheme is the merge scheme driver (C8): it computes the target genome's
contig range, creates the merge queue with one writer per contig, spawns one
Generator goroutine per contig plus the single Applier goroutine, and joins
all of them on Run.

Scheme is built on golang.org/x/sync/errgroup the same way bio.ManyToChannel
is (see bio/bio.go): every goroutine -- every contig's Generator and the
Applier itself -- is one errgroup.Go call sharing one derived context, so a
fatal error from any one of them (a generator's OutOfRangeContigPosition, or
the Applier's Pincher.Pinch failing) cancels the derived context and every
other goroutine observes it at its next blocking point, per spec §5's
cancellation model.
*/
type Scheme struct {
	idx     *fmindex.FMDIndex
	rv      *fmindex.RangeVector
	mask    *fmindex.BitVector
	pincher Pincher
	cfg     Config

	ran     atomic.Bool
	applied int
}

// NewScheme builds a Scheme over a shared, read-only FMDIndex/RangeVector/
// included-positions mask, an external Pincher, and the run configuration.
func NewScheme(idx *fmindex.FMDIndex, rv *fmindex.RangeVector, mask *fmindex.BitVector, pincher Pincher, cfg Config) *Scheme {
	return &Scheme{idx: idx, rv: rv, mask: mask, pincher: pincher, cfg: cfg}
}

// Run spawns one Generator per contig of the target genome and the single
// Applier, then blocks until all of them finish. It returns ErrRunCalledTwice
// if called more than once on the same Scheme -- a Scheme is single-shot, so
// the guard uses a compare-and-swap rather than sync.Once, which would
// silently replay the first run's result instead of reporting the error.
func (s *Scheme) Run(ctx context.Context) error {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrRunCalledTwice
	}

	start, end, err := s.idx.GenomeContigRange(s.cfg.TargetGenome)
	if err != nil {
		return err
	}
	numContigs := end - start
	if numContigs <= 0 {
		return nil
	}

	queue := NewQueue(s.cfg.QueueCapacity, numContigs)
	applier := NewApplier(s.pincher, s.cfg.Mode)

	group, gctx := errgroup.WithContext(ctx)
	for c := start; c < end; c++ {
		contig := c
		gen := NewGenerator(s.idx, s.rv, s.mask, s.cfg.MinContext, s.cfg.Mismatches)
		group.Go(func() error {
			return gen.Run(gctx, contig, queue)
		})
	}
	group.Go(func() error {
		applied, err := applier.Drain(gctx, queue)
		s.applied = applied
		return err
	})

	return group.Wait()
}

// Applied returns the number of merges the Applier committed during the
// most recent Run. It is only meaningful after Run has returned.
func (s *Scheme) Applied() int { return s.applied }
