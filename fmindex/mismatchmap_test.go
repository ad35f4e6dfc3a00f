package fmindex

import "testing"

// fullResolutionRangeVector builds a RangeVector with one range per BWT row,
// so that any bi-interval MisMatchMap resolves to exactly one row also
// resolves via Range -- the fixture this package's other MisMatchMap tests
// skip by using an always-empty RangeVector, which can never confirm a
// mapping actually gets emitted.
func fullResolutionRangeVector(t *testing.T, idx *FMDIndex) *RangeVector {
	t.Helper()
	bwLen := idx.bwt.BWLen()
	builder := NewBitVectorBuilder(bwLen)
	bases := make([]RangeBase, 0, bwLen)
	for i := 0; i < bwLen; i++ {
		builder.AddBit(i)
		tp := idx.bwt.Locate(i)
		length := idx.contigs.Contig(tp.Contig()).Length
		bases = append(bases, RangeBase{
			Contig: tp.Contig(),
			Base1:  tp.BaseOffset1(length),
			Face:   tp.Strand(),
		})
	}
	rv, err := NewRangeVector(builder.Flush(), bases)
	if err != nil {
		t.Fatal(err)
	}
	return rv
}

// TestFMDIndex_MisMatchMapResolvesToleratedMismatch reproduces spec E4's
// shape (a query that differs from the reference by one base the caller
// can't read, tolerated at zMax=1): "GATTACA" is the only length-7 string
// anywhere in the index (its reverse complement, "TGTAATC", is a completely
// different string), so a 7-character query matching it everywhere except
// one position has exactly one candidate within Hamming distance 1 -- the
// true contig, substitution included -- and must resolve.
func TestFMDIndex_MisMatchMapResolvesToleratedMismatch(t *testing.T) {
	idx, _ := newTestIndex([]string{"GATTACA"})
	rv := fullResolutionRangeVector(t, idx)

	mappings, maxCharacters := idx.MisMatchMap(rv, "GATNACA", nil, 7, 1, 0, 7)
	if len(maxCharacters) != 7 {
		t.Fatalf("expected 7 maxCharacters entries, got %d", len(maxCharacters))
	}
	if maxCharacters[6] != 7 {
		t.Fatalf("expected full context at offset 6, got %d", maxCharacters[6])
	}

	var found *Mapping
	for i := range mappings {
		if mappings[i].QueryPos == 6 {
			found = &mappings[i]
		}
	}
	if found == nil {
		t.Fatalf("expected a mapping at query position 6, got %+v", mappings)
	}
	if found.Context != 7 {
		t.Fatalf("expected context 7, got %d", found.Context)
	}
	if found.Mismatches != 1 {
		t.Fatalf("expected exactly one mismatch, got %d", found.Mismatches)
	}
	if !found.HasRange {
		t.Fatal("expected the resolved mapping to carry a range")
	}
	if found.Range.Contig != 0 || found.Range.Face != 0 || found.Range.Base1 != 1 {
		t.Fatalf("unexpected resolved range: %+v", found.Range)
	}
}

// TestFMDIndex_MisMatchMapAbandonsAmbiguousProbe exercises the safety rule
// spec section 4.6 requires: a position is only resolved when extending by
// the query's own base is the UNIQUE way forward, not merely A way forward.
// "ATCATG" contains both "ATC" and "ATG" as literal 3-mers, one mismatch
// apart; a query of "ATC" run with zMax=1 therefore reaches full context
// with two live candidates ("ATC" itself and the one-mismatch alternative
// "ATG"), and MisMatchMap must abandon the position rather than pick one.
func TestFMDIndex_MisMatchMapAbandonsAmbiguousProbe(t *testing.T) {
	idx, _ := newTestIndex([]string{"ATCATG"})
	rv := fullResolutionRangeVector(t, idx)

	mappings, maxCharacters := idx.MisMatchMap(rv, "ATC", nil, 3, 1, 0, 3)
	if len(maxCharacters) != 3 {
		t.Fatalf("expected 3 maxCharacters entries, got %d", len(maxCharacters))
	}
	if maxCharacters[2] != 3 {
		t.Fatalf("expected full context at offset 2 despite the ambiguity, got %d", maxCharacters[2])
	}
	for _, m := range mappings {
		if m.QueryPos == 2 {
			t.Fatalf("expected offset 2 to be abandoned as ambiguous, got mapping %+v", m)
		}
	}
}
