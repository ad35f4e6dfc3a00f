package fmindex

/*
BWT wraps an already-built Burrows-Wheeler transform and its sampled suffix
array. Building the BWT from raw sequence and the on-disk sampled-suffix-array
format are both out of scope for this package (see spec §1/§6) -- BWT only
owns the derived operations (GetF, LF) that follow mechanically from PC/Occ,
and forwards everything else to a BWTSource loaded elsewhere (internal/contigio
for the on-disk format, or a test fixture for unit tests).

This mirrors the teacher's split between the BWT struct (search/bwt.BWT,
which in that package *does* build from raw sequence since building a BWT is
in scope there) and the run-length skip list / rank structures it is built
from -- here the boundary instead falls between "loaded BWT" and "derived
LF-mapping", since construction itself isn't ours to do.
*/

// BWTSource is the external collaborator spec.md §6 describes: an on-disk
// BWT plus sampled suffix array, loaded by basename. It provides the
// primitive queries LF-mapping is built from.
type BWTSource interface {
	// PC returns the number of characters strictly less than c in the
	// original text (the cumulative count, a.k.a. the start of c's block in
	// the F column).
	PC(c byte) int
	// Occ returns the rank of c in BWT[0:i] -- the number of occurrences of
	// c in the last column strictly before offset i.
	Occ(c byte, i int) int
	// GetChar returns the L-column (BWT) character at offset i.
	GetChar(i int) byte
	// BWLen returns the length of the BWT (the number of rows).
	BWLen() int
	// Locate resolves a BWT row to the TextPosition it corresponds to, via a
	// full suffix array or a sampled suffix array plus an LF walk.
	Locate(i int) TextPosition
}

// BWT is the primitive FM-index layer (C2): PC, Occ, F/L column access, and
// LF-mapping, plus the derived locate/walk operations built from a
// BWTSource.
type BWT struct {
	src BWTSource
}

// NewBWT wraps a loaded BWTSource.
func NewBWT(src BWTSource) *BWT {
	return &BWT{src: src}
}

// PC returns the number of characters strictly less than c.
func (b *BWT) PC(c byte) int { return b.src.PC(c) }

// Occ returns the rank of c in BWT[0:i].
func (b *BWT) Occ(c byte, i int) int { return b.src.Occ(c, i) }

// FullOcc returns Occ(c, i) for every base in the alphabet (skipping the
// terminator), keyed by base. It makes one Occ call on the source per base.
func (b *BWT) FullOcc(i int) map[byte]int {
	out := make(map[byte]int, len(alphabetOrder)-1)
	for _, c := range alphabetOrder {
		if c == terminator {
			continue
		}
		out[c] = b.src.Occ(c, i)
	}
	return out
}

// GetChar returns the L-column character at offset i.
func (b *BWT) GetChar(i int) byte { return b.src.GetChar(i) }

// GetF returns the F-column character at offset i: the base whose PC block
// contains i.
func (b *BWT) GetF(i int) byte {
	for idx := len(alphabetOrder) - 1; idx >= 0; idx-- {
		c := alphabetOrder[idx]
		if b.src.PC(c) <= i {
			return c
		}
	}
	return alphabetOrder[0]
}

// BWLen returns the number of rows in the BWT.
func (b *BWT) BWLen() int { return b.src.BWLen() }

// LF applies the LF-mapping: LF(i) = PC(L[i]) + Occ(L[i], i), walking one
// character left in the original text. Occ counts strictly before i, so this
// is PC(L[i]) plus the inclusive rank of L[i] at i, minus one.
func (b *BWT) LF(i int) int {
	c := b.src.GetChar(i)
	return b.src.PC(c) + b.src.Occ(c, i)
}

// Locate resolves a BWT row to a TextPosition.
func (b *BWT) Locate(i int) TextPosition { return b.src.Locate(i) }
