package fmindex

import "sort"

/*
memoryBWT builds a literal, in-memory BWT over a small set of contigs for
unit tests. Building a BWT from raw sequence is out of scope for the package
itself (loading one is internal/contigio's job), but exercising FMDPosition,
BWT, and FMDIndex needs *some* concrete index to search against -- so tests
construct one directly via classic suffix sorting, the way the teacher's own
search/bwt tests build small literal BWTSourceTest fixtures rather than
reading real alignment files from disk.

Every contig contributes two texts to one shared collection: its forward
strand (even text id) and its reverse complement (odd text id), each
terminated by the single shared terminator byte. Suffixes are compared with
plain byte ordering, which already places the terminator before every base
(see alphabetOrder), so no special-casing is needed in the sort.
*/
type memoryBWT struct {
	bwt      []byte
	sa       []int
	textOf   []int // text id for each position in the concatenated collection
	offsetOf []int // offset within that text
	pc       map[byte]int
	textLen  []int // length (excluding terminator) of each text, indexed by text id
}

// buildMemoryBWT concatenates forward and reverse-complement strands for
// every contig sequence given, each with its own terminator, and returns the
// resulting in-memory BWTSource.
func buildMemoryBWT(contigSeqs []string) *memoryBWT {
	var texts []string
	for _, seq := range contigSeqs {
		texts = append(texts, seq, ReverseComplement(seq))
	}

	textLen := make([]int, len(texts))
	for i, t := range texts {
		textLen[i] = len(t)
	}

	var collection []byte
	textOf := []int{}
	offsetOf := []int{}
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
		return lessRotation(collection, sa[a], sa[b])
	})

	bwt := make([]byte, n)
	for i, s := range sa {
		if s == 0 {
			bwt[i] = collection[n-1]
		} else {
			bwt[i] = collection[s-1]
		}
	}

	pc := map[byte]int{}
	counts := map[byte]int{}
	for _, c := range collection {
		counts[c]++
	}
	running := 0
	for _, c := range alphabetOrder {
		pc[c] = running
		running += counts[c]
	}

	return &memoryBWT{bwt: bwt, sa: sa, textOf: textOf, offsetOf: offsetOf, pc: pc, textLen: textLen}
}

// lessRotation compares the cyclic rotations of collection starting at i and
// j. Since every text ends in a terminator that never recurs within the text,
// comparing rotations this way is equivalent to comparing each text's true
// suffixes within its own boundary.
func lessRotation(collection []byte, i, j int) bool {
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

func (m *memoryBWT) PC(c byte) int { return m.pc[c] }

func (m *memoryBWT) Occ(c byte, i int) int {
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

func (m *memoryBWT) GetChar(i int) byte { return m.bwt[i] }

func (m *memoryBWT) BWLen() int { return len(m.bwt) }

func (m *memoryBWT) Locate(i int) TextPosition {
	s := m.sa[i]
	return TextPosition{TextID: uint64(m.textOf[s]), Offset: uint64(m.offsetOf[s])}
}
