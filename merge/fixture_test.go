package merge

import (
	"sort"

	"github.com/bebop/merge-mapper/fmindex"
)

/*
literalBWT builds a real, in-memory BWT over a small set of contigs for this
package's integration-style tests, the same way fmindex's own
bwt_fixture_test.go does for fmindex's unit tests -- Generator.Run needs a
genuinely self-consistent FMDIndex (DisplayContig reads it row by row through
Locate and GetChar, Cmap searches it), not a stub, so the merge pipeline tests need their own small literal
index builder built only from fmindex's exported BWTSource contract.
*/
type literalBWT struct {
	bwt      []byte
	sa       []int
	textOf   []int
	offsetOf []int
	pc       map[byte]int
}

func buildLiteralBWT(contigSeqs []string) *literalBWT {
	const terminator = '$'
	var texts []string
	for _, seq := range contigSeqs {
		texts = append(texts, seq, fmindex.ReverseComplement(seq))
	}

	var collection []byte
	var textOf, offsetOf []int
	for textID, t := range texts {
		for i := 0; i < len(t); i++ {
			collection = append(collection, t[i])
			textOf = append(textOf, textID)
			offsetOf = append(offsetOf, i)
		}
		collection = append(collection, terminator)
		textOf = append(textOf, textID)
		offsetOf = append(offsetOf, len(t))
	}

	n := len(collection)
	sa := make([]int, n)
	for i := range sa {
		sa[i] = i
	}
	sort.Slice(sa, func(a, b int) bool {
		return lessLiteralRotation(collection, sa[a], sa[b])
	})

	bwt := make([]byte, n)
	for i, s := range sa {
		if s == 0 {
			bwt[i] = collection[n-1]
		} else {
			bwt[i] = collection[s-1]
		}
	}

	pc := lessThanCounts(collection)

	return &literalBWT{bwt: bwt, sa: sa, textOf: textOf, offsetOf: offsetOf, pc: pc}
}

// lessThanCounts returns, for each distinct byte in collection, the number
// of bytes in collection strictly less than it -- PC(c), computed directly
// from byte ordering rather than a fixed alphabet table, so this fixture has
// no dependency on fmindex's internal alphabet order.
func lessThanCounts(collection []byte) map[byte]int {
	seen := map[byte]bool{}
	for _, c := range collection {
		seen[c] = true
	}
	out := map[byte]int{}
	for c := range seen {
		n := 0
		for _, b := range collection {
			if b < c {
				n++
			}
		}
		out[c] = n
	}
	return out
}

func lessLiteralRotation(collection []byte, i, j int) bool {
	n := len(collection)
	for k := 0; k < n; k++ {
		a := collection[(i+k)%n]
		b := collection[(j+k)%n]
		if a != b {
			return a < b
		}
	}
	return false
}

func (m *literalBWT) PC(c byte) int { return m.pc[c] }

func (m *literalBWT) Occ(c byte, i int) int {
	if i <= 0 {
		return 0
	}
	if i > len(m.bwt) {
		i = len(m.bwt)
	}
	count := 0
	for k := 0; k < i; k++ {
		if m.bwt[k] == c {
			count++
		}
	}
	return count
}

func (m *literalBWT) GetChar(i int) byte { return m.bwt[i] }

func (m *literalBWT) BWLen() int { return len(m.bwt) }

func (m *literalBWT) Locate(i int) fmindex.TextPosition {
	s := m.sa[i]
	return fmindex.TextPosition{TextID: uint64(m.textOf[s]), Offset: uint64(m.offsetOf[s])}
}

// buildTestFMDIndex wraps buildLiteralBWT with a ContigTable: every contig
// is registered in genome 0, the single genome these tests target.
func buildTestFMDIndex(contigSeqs []string) *fmindex.FMDIndex {
	src := buildLiteralBWT(contigSeqs)
	bwt := fmindex.NewBWT(src)
	contigs := make([]fmindex.Contig, len(contigSeqs))
	for i, seq := range contigSeqs {
		contigs[i] = fmindex.Contig{Name: "contig", Length: len(seq), GenomeID: 0}
	}
	table, err := fmindex.NewContigTable(contigs)
	if err != nil {
		panic(err)
	}
	return fmindex.NewFMDIndex(bwt, table)
}

// emptyBitVector returns a BitVector over the given universe with no bits
// set -- used as the "no included positions" mask in TestScheme_* (spec.md
// E2: an empty mask means every mapping is unmapped).
func emptyBitVector(universe int) *fmindex.BitVector {
	return fmindex.NewBitVectorBuilder(universe).Flush()
}
