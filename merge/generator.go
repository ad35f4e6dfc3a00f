package merge

import (
	"context"

	"github.com/bebop/merge-mapper/fmindex"
)

/*
Generator is the merge generator (C5): one instance runs per query contig,
turning two context-mapping passes over that contig (forward and
reverse-complement) into concrete Merges, which it enqueues on a Queue.

Per spec.md §4.7, Generator:

 1. builds the query contig's sequence via FMDIndex.DisplayContig;
 2. computes rightMappings = Cmap(query) and leftMappings =
    reverse(Cmap(reverseComplement(query))), so both vectors are indexed by
    the same 0-based query offset;
 3. reconciles the two mapping vectors position by position per the table in
    §4.7, emitting a reversible Merge when both sides agree on the same
    reference base with opposite faces, a non-reversible Merge when only one
    side resolved, and nothing when both disagree or neither resolved.

Generator never shares mutable state across contigs: every field it reads
(FMDIndex, RangeVector, the included-positions mask) is immutable for the
run's lifetime, so many Generators can run concurrently against the same
FMDIndex, exactly as spec §5 requires.
*/
type Generator struct {
	idx        *fmindex.FMDIndex
	rv         *fmindex.RangeVector
	mask       *fmindex.BitVector
	minContext int
	mismatches int
}

// NewGenerator builds a Generator bound to a shared, read-only FMDIndex,
// range table, and included-positions mask. minContext is the minimum
// context length a mapping must reach to count as resolved; mismatches is
// the mismatch budget Cmap/MisMatchMap is allowed to spend (0 disables
// mismatch tolerance, using Cmap instead of MisMatchMap).
func NewGenerator(idx *fmindex.FMDIndex, rv *fmindex.RangeVector, mask *fmindex.BitVector, minContext, mismatches int) *Generator {
	return &Generator{idx: idx, rv: rv, mask: mask, minContext: minContext, mismatches: mismatches}
}

// mapBoth runs the two-sided context mapping pass (Cmap, or MisMatchMap when
// the Generator has a nonzero mismatch budget) over query[0:len(query)).
func (g *Generator) mapBoth(query string) []fmindex.Mapping {
	if g.mismatches > 0 {
		mappings, _ := g.idx.MisMatchMap(g.rv, query, g.mask, g.minContext, g.mismatches, 0, len(query))
		return mappings
	}
	mappings, _ := g.idx.Cmap(g.rv, query, g.mask, g.minContext, 0, len(query))
	return mappings
}

// byOffset indexes a sparse mapping slice by QueryPos for O(1) lookup during
// reconciliation.
func byOffset(mappings []fmindex.Mapping) map[int]fmindex.Mapping {
	out := make(map[int]fmindex.Mapping, len(mappings))
	for _, m := range mappings {
		out[m.QueryPos] = m
	}
	return out
}

// refTextPosition converts a RangeVector entry, plus the face the merge
// should attach it by, into the TextPosition of that base on that face's
// strand. RangeBase.Base1 is always the 1-based position on the *forward*
// strand (per rangevector.go); this inverts TextPosition.BaseOffset1 for the
// chosen face.
func refTextPosition(idx *fmindex.FMDIndex, base fmindex.RangeBase, face int) (fmindex.TextPosition, error) {
	length := idx.ContigLength(base.Contig)
	if base.Base1 < 1 || base.Base1 > length {
		return fmindex.TextPosition{}, &ErrOutOfRangeContigPosition{Contig: base.Contig, Base1: base.Base1, Length: length}
	}
	textID := uint64(2*base.Contig + face)
	var offset uint64
	if face == 0 {
		offset = uint64(base.Base1 - 1)
	} else {
		offset = uint64(length - base.Base1)
	}
	return fmindex.TextPosition{TextID: textID, Offset: offset}, nil
}

// reconcilePosition implements the table in spec §4.7 for a single query
// offset: given the (possibly absent) left- and right-context mappings for
// that offset, it returns the Merge to enqueue, if any. Pulled out of Run as
// a pure function of its inputs so the reconciliation policy -- the part of
// this package spec §9's open question actually resolves -- can be tested
// without needing a real FMDIndex.
func reconcilePosition(idx *fmindex.FMDIndex, queryPos fmindex.TextPosition, leftM, rightM fmindex.Mapping, leftOK, rightOK bool) (Merge, bool, error) {
	switch {
	case leftOK && rightOK:
		leftBase, rightBase := leftM.Range, rightM.Range
		samePosition := leftBase.Contig == rightBase.Contig && leftBase.Base1 == rightBase.Base1
		oppositeFaces := leftBase.Face != rightBase.Face
		if !samePosition || !oppositeFaces {
			// Ambiguous: both sides resolved but disagree. Per spec §9's
			// resolution of the source's unfinished multi-mapping TODOs,
			// this is simply not emitted.
			return Merge{}, false, nil
		}
		ref, err := refTextPosition(idx, leftBase, 1-leftBase.Face)
		if err != nil {
			return Merge{}, false, err
		}
		return Merge{Query: queryPos, Ref: ref, NonReversible: false}, true, nil
	case leftOK:
		ref, err := refTextPosition(idx, leftM.Range, 1-leftM.Range.Face)
		if err != nil {
			return Merge{}, false, err
		}
		return Merge{Query: queryPos, Ref: ref, NonReversible: true}, true, nil
	case rightOK:
		ref, err := refTextPosition(idx, rightM.Range, 1-rightM.Range.Face)
		if err != nil {
			return Merge{}, false, err
		}
		return Merge{Query: queryPos, Ref: ref, NonReversible: true}, true, nil
	default:
		return Merge{}, false, nil
	}
}

// Run builds contig's sequence, maps it both ways, reconciles the two
// mapping vectors, and enqueues the resulting Merges on q. It closes q
// exactly once, on every exit path, per spec §5's clean-shutdown
// requirement.
func (g *Generator) Run(ctx context.Context, contig int, q *Queue) (err error) {
	defer q.Close()

	query, err := g.idx.DisplayContig(contig)
	if err != nil {
		return err
	}
	rcQuery := fmindex.ReverseComplement(query)
	if len(rcQuery) != len(query) {
		return ErrForwardReverseSizeMismatch
	}

	rightMappings := g.mapBoth(query)
	leftRaw := g.mapBoth(rcQuery)

	rightByOffset := byOffset(rightMappings)
	leftByOffset := make(map[int]fmindex.Mapping, len(leftRaw))
	for _, m := range leftRaw {
		originalOffset := len(query) - 1 - m.QueryPos
		m.QueryPos = originalOffset
		leftByOffset[originalOffset] = m
	}

	for i := 0; i < len(query); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rightM, rightOK := rightByOffset[i]
		leftM, leftOK := leftByOffset[i]
		rightOK = rightOK && rightM.HasRange
		leftOK = leftOK && leftM.HasRange

		queryPos := fmindex.TextPosition{TextID: uint64(2 * contig), Offset: uint64(i)}

		merge, ok, err := reconcilePosition(g.idx, queryPos, leftM, rightM, leftOK, rightOK)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := q.Enqueue(ctx, merge); err != nil {
			return err
		}
	}
	return nil
}
