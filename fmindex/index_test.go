package fmindex

import "testing"

func newTestIndex(contigSeqs []string) (*FMDIndex, *memoryBWT) {
	src := buildMemoryBWT(contigSeqs)
	bwt := NewBWT(src)
	contigs := make([]Contig, len(contigSeqs))
	for i, seq := range contigSeqs {
		contigs[i] = Contig{Name: "contig", ScaffoldStart: 0, Length: len(seq), GenomeID: 0}
	}
	table, err := NewContigTable(contigs)
	if err != nil {
		panic(err)
	}
	return NewFMDIndex(bwt, table), src
}

func TestFMDIndex_CountAndLocate(t *testing.T) {
	idx, _ := newTestIndex([]string{"ACGTACG", "TTAGGCA"})

	count, err := idx.Count("ACG")
	if err != nil {
		t.Fatal(err)
	}
	positions, err := idx.Locate("ACG")
	if err != nil {
		t.Fatal(err)
	}
	if count != len(positions) {
		t.Fatalf("Count = %d, len(Locate) = %d", count, len(positions))
	}
	if count == 0 {
		t.Fatal("expected at least one occurrence of ACG")
	}
}

func TestFMDIndex_CountRejectsNonBase(t *testing.T) {
	idx, _ := newTestIndex([]string{"ACG"})
	if _, err := idx.Count("ACX"); err == nil {
		t.Fatal("expected an error for a pattern containing a non-base character")
	}
}

func TestFMDIndex_DisplayContigRoundTrips(t *testing.T) {
	seqs := []string{"ACGTACG", "TTAGGCA", "GGGCAT"}
	idx, _ := newTestIndex(seqs)

	for i, want := range seqs {
		got, err := idx.DisplayContig(i)
		if err != nil {
			t.Fatalf("DisplayContig(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("DisplayContig(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestFMDIndex_MapToPositionFindsUniqueWindow(t *testing.T) {
	// "ACGTACG" contains no internal repeats long enough to stay ambiguous
	// once minContext reaches the full contig length, so a window spanning
	// the whole contig should resolve to a single position.
	idx, _ := newTestIndex([]string{"ACGTACG"})
	mappings := idx.MapToPosition("ACGTACG", 0, 7, 7, nil)
	if len(mappings) == 0 {
		t.Fatal("expected at least one resolved position for a full-length unique window")
	}
	for _, m := range mappings {
		if !m.HasPosition {
			t.Fatalf("mapping %+v missing HasPosition", m)
		}
		if m.Context < 7 {
			t.Fatalf("mapping %+v used less context than minContext", m)
		}
	}
}

func TestFMDIndex_MapToPositionEmptyWhenAmbiguous(t *testing.T) {
	// A single 'A' is certain to recur across forward/reverse strands of a
	// short contig, so with minContext=1 and a 1-base window it should never
	// resolve to a unique position.
	idx, _ := newTestIndex([]string{"AAAA"})
	mappings := idx.MapToPosition("AAAA", 0, 1, 1, nil)
	if len(mappings) != 0 {
		t.Fatalf("expected no unique mapping for a repeated single base, got %+v", mappings)
	}
}

func TestFMDIndex_CmapRespectsWindow(t *testing.T) {
	idx, _ := newTestIndex([]string{"ACGTACGTTGCA"})
	rv, err := NewRangeVector(buildTestBitVector(idx.bwt.BWLen()), nil)
	if err != nil {
		// A nil-base RangeVector only works when no range-start bits are set;
		// fall back to an empty vector for this structural test.
		rv, err = NewRangeVector(buildTestBitVector(idx.bwt.BWLen()), []RangeBase{})
		if err != nil {
			t.Fatal(err)
		}
	}

	mappings, maxCharacters := idx.Cmap(rv, "ACGTACGTTGCA", nil, 3, 2, 4)
	if len(maxCharacters) != 4 {
		t.Fatalf("expected 4 maxCharacters entries, got %d", len(maxCharacters))
	}
	// With an empty range vector, nothing can resolve, but the call must not
	// panic and must report how much context each position explored.
	if mappings != nil && len(mappings) != 0 {
		t.Fatalf("expected no mappings against an empty range vector, got %+v", mappings)
	}
}

func TestFMDIndex_MisMatchMapRespectsWindow(t *testing.T) {
	idx, _ := newTestIndex([]string{"ACGTACGTTGCA"})
	rv, err := NewRangeVector(buildTestBitVector(idx.bwt.BWLen()), []RangeBase{})
	if err != nil {
		t.Fatal(err)
	}

	mappings, maxCharacters := idx.MisMatchMap(rv, "ACGTACGTTGCA", nil, 3, 1, 2, 4)
	if len(maxCharacters) != 4 {
		t.Fatalf("expected 4 maxCharacters entries, got %d", len(maxCharacters))
	}
	if mappings != nil && len(mappings) != 0 {
		t.Fatalf("expected no mappings against an empty range vector, got %+v", mappings)
	}
}
