package fmindex

import "fmt"

/*
FMDIndex is the top-level search engine (C4): a loaded BWT plus the contig
table needed to translate BWT rows into contig-relative coordinates, and the
context-mapping algorithms the merge pipeline is built on. Count and Locate
are ordinary exact-match queries; DisplayContig reconstructs a stored contig
for debugging and for building range vectors; MapToRange, MapToPosition,
Cmap, and MisMatchMap are the one-sided, one-sided-to-a-position,
two-sided/credit, and mismatch-tolerant context-mapping algorithms the merge
generator drives per contig.
*/
type FMDIndex struct {
	bwt     *BWT
	contigs *ContigTable
}

// NewFMDIndex pairs a loaded BWT with the contig table describing the
// collection it was built over.
func NewFMDIndex(bwt *BWT, contigs *ContigTable) *FMDIndex {
	return &FMDIndex{bwt: bwt, contigs: contigs}
}

func (idx *FMDIndex) fullRange() FMDPosition {
	return FMDPosition{ForwardStart: 0, ReverseStart: 0, EndOffset: int64(idx.bwt.BWLen()) - 1}
}

// ContigCount returns the number of contigs in the collection.
func (idx *FMDIndex) ContigCount() int { return idx.contigs.Len() }

// ContigLength returns the length, in bases, of the given contig.
func (idx *FMDIndex) ContigLength(contig int) int { return idx.contigs.Contig(contig).Length }

// GenomeContigRange returns the half-open contig-number range [start, end)
// that belongs to the given genome, as recorded in the contig table.
func (idx *FMDIndex) GenomeContigRange(genomeID int) (start, end int, err error) {
	return idx.contigs.GenomeRange(genomeID)
}

// ErrPatternContainsNonBase is returned by Count and Locate when the pattern
// has a character outside the fixed alphabet.
type ErrPatternContainsNonBase struct {
	Char byte
}

func (e *ErrPatternContainsNonBase) Error() string {
	return fmt.Sprintf("fmindex: pattern contains non-base character %q", e.Char)
}

// Count returns the number of occurrences of pattern across every text in
// the collection (both strands of every contig).
func (idx *FMDIndex) Count(pattern string) (int, error) {
	p, err := idx.searchBackward(pattern)
	if err != nil {
		return 0, err
	}
	return p.Length(nil), nil
}

// Locate returns the TextPosition of every occurrence of pattern.
func (idx *FMDIndex) Locate(pattern string) ([]TextPosition, error) {
	p, err := idx.searchBackward(pattern)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty(nil) {
		return nil, nil
	}
	out := make([]TextPosition, 0, p.Length(nil))
	for i := p.ForwardStart; i <= p.ForwardStart+p.EndOffset; i++ {
		out = append(out, idx.bwt.Locate(int(i)))
	}
	return out, nil
}

// searchBackward extends the full range backward through pattern, right to
// left, as ordinary exact-match backward search does.
func (idx *FMDIndex) searchBackward(pattern string) (FMDPosition, error) {
	p := idx.fullRange()
	for i := len(pattern) - 1; i >= 0; i-- {
		c := pattern[i]
		if !IsBase(c) {
			return FMDPosition{}, &ErrPatternContainsNonBase{Char: c}
		}
		var err error
		p, err = p.Extend(idx.bwt, c, true)
		if err != nil {
			return FMDPosition{}, err
		}
		if p.IsEmpty(nil) {
			return p, nil
		}
	}
	return p, nil
}

// DisplayContig reconstructs the forward-strand sequence of a contig by
// inverting the BWT: every row whose Locate resolves to that contig's
// forward text tells us, via GetChar, the base immediately preceding that
// row's suffix -- so the base at offset o is GetChar of the row whose suffix
// starts at offset o+1.
func (idx *FMDIndex) DisplayContig(contig int) (string, error) {
	c := idx.contigs.Contig(contig)
	textID := uint64(contig) * 2

	rowForOffset := make(map[uint64]int, c.Length+1)
	n := idx.bwt.BWLen()
	for i := 0; i < n; i++ {
		tp := idx.bwt.Locate(i)
		if tp.TextID == textID && tp.Offset <= uint64(c.Length) {
			rowForOffset[tp.Offset] = i
		}
	}

	out := make([]byte, c.Length)
	for o := 0; o < c.Length; o++ {
		row, ok := rowForOffset[uint64(o+1)]
		if !ok {
			return "", fmt.Errorf("fmindex: contig %d missing row for offset %d", contig, o+1)
		}
		out[o] = idx.bwt.GetChar(row)
	}
	return string(out), nil
}

// Mapping is one result of a context-mapping query: the query position it
// resolves, the amount of context it took to resolve it, and the target it
// resolved to. Exactly one of HasRange (set by MapToRange, Cmap,
// MisMatchMap) or HasPosition (set by MapToPosition) is true for a returned
// Mapping.
type Mapping struct {
	QueryPos   int
	Context    int
	Mismatches int
	Range      RangeBase
	HasRange   bool
	Position   TextPosition
	HasPosition bool
}

// MapToRange performs one-sided context mapping: for every position in
// query[start:start+length), it grows a backward-extending context ending at
// that position until the bi-interval resolves into exactly one range of rv,
// stopping early (a failed mapping for that position) if the interval empties
// before minContext bases have been consumed, or if the window is exhausted
// without resolving to one range.
func (idx *FMDIndex) MapToRange(query string, start, length, minContext int, mask *BitVector, rv *RangeVector) []Mapping {
	var out []Mapping
	for pos := start; pos < start+length; pos++ {
		p := idx.fullRange()
		context := 0
		for i := pos; i >= start; i-- {
			c := query[i]
			if !IsBase(c) {
				break
			}
			next, err := p.Extend(idx.bwt, c, true)
			if err != nil || next.IsEmpty(mask) {
				break
			}
			p = next
			context++
			if context < minContext {
				continue
			}
			if r := p.Range(rv, mask); r >= 0 {
				base, err := rv.Base(r)
				if err != nil {
					break
				}
				out = append(out, Mapping{QueryPos: pos, Context: context, Range: base, HasRange: true})
				break
			}
		}
	}
	return out
}

// MapToPosition is MapToRange's one-sided cousin that resolves to a single
// BWT row (an exact, unique TextPosition) rather than a pre-grouped range:
// success requires the bi-interval to shrink to exactly one masked row.
func (idx *FMDIndex) MapToPosition(query string, start, length, minContext int, mask *BitVector) []Mapping {
	var out []Mapping
	for pos := start; pos < start+length; pos++ {
		p := idx.fullRange()
		context := 0
		for i := pos; i >= start; i-- {
			c := query[i]
			if !IsBase(c) {
				break
			}
			next, err := p.Extend(idx.bwt, c, true)
			if err != nil || next.IsEmpty(mask) {
				break
			}
			p = next
			context++
			if context < minContext {
				continue
			}
			if p.Length(mask) == 1 {
				row, ok := uniqueMaskedRow(p, mask)
				if !ok {
					break
				}
				out = append(out, Mapping{
					QueryPos:    pos,
					Context:     context,
					Position:    idx.bwt.Locate(row),
					HasPosition: true,
				})
				break
			}
		}
	}
	return out
}

// uniqueMaskedRow returns the single masked row within p's forward range,
// assuming p.Length(mask) == 1.
func uniqueMaskedRow(p FMDPosition, mask *BitVector) (int, bool) {
	start := int(p.ForwardStart)
	end := start + int(p.EndOffset) + 1
	if mask == nil {
		if end-start != 1 {
			return 0, false
		}
		return start, true
	}
	pos, _, ok := mask.ValueAfter(start)
	if !ok || pos >= end {
		return 0, false
	}
	return pos, true
}

// Cmap performs two-sided ("credit") context mapping: the bi-interval is
// extended alternately backward and forward from each query position,
// starting with the position's own base and spending characters
// on whichever side still has context available, until it resolves into one
// range of rv or the full [start, start+length) window is consumed. Using
// both sides of the query lets Cmap resolve positions one-sided mapping
// cannot, at the cost of needing both sides' characters to be in range.
func (idx *FMDIndex) Cmap(rv *RangeVector, query string, mask *BitVector, minContext, start, length int) (mappings []Mapping, maxCharacters []int) {
	maxCharacters = make([]int, length)
	for offset := 0; offset < length; offset++ {
		pos := start + offset
		p := idx.fullRange()
		left, right := pos, pos+1
		context := 0
		resolved := false

		// Consume the anchor base itself on the first step, then alternate
		// sides, preferring left (matching MapToRange's backward-first bias)
		// when both remain available.
		preferLeft := true
		for left >= start || right < start+length {
			backward := left >= start && (preferLeft || right >= start+length)
			var c byte
			if backward {
				c = query[left]
			} else {
				c = query[right]
			}

			if !IsBase(c) {
				break
			}
			next, err := p.Extend(idx.bwt, c, backward)
			if err != nil || next.IsEmpty(mask) {
				break
			}
			p = next
			context++
			if backward {
				left--
			} else {
				right++
			}
			preferLeft = !backward

			if context < minContext {
				continue
			}
			if r := p.Range(rv, mask); r >= 0 {
				base, err := rv.Base(r)
				if err == nil {
					mappings = append(mappings, Mapping{QueryPos: pos, Context: context, Range: base, HasRange: true})
					resolved = true
				}
				break
			}
		}
		maxCharacters[offset] = context
		_ = resolved
	}
	return mappings, maxCharacters
}

// mismatchBranch is one live candidate in MisMatchMap's bounded search: a
// bi-interval together with how far back it has read and how many
// mismatches it has spent getting there. Unlike Cmap, MisMatchMap only ever
// extends backward, the same one-sided walk MapToRange and MapToPosition use.
type mismatchBranch struct {
	pos        FMDPosition
	i          int
	context    int
	mismatches int
}

// MisMatchMap is MapToRange's mismatch-tolerant generalization: at each
// extension step, every live branch is extended by every base in the
// alphabet, not just the query's own, spending one mismatch for each
// substitution (capped at zMax). Crucially, the full fan-out for a round --
// the query's own base AND every affordable substitution -- is built before
// any of it is judged resolved. Extending by a base other than the query's
// own is exactly the "mismatches-only" probe the source algorithm runs
// before trusting a clean continuation: if a substitution also survives
// alongside the matching base, the round yields more than one live state,
// and MisMatchMap keeps branching instead of committing. A round only
// resolves a position once its fan-out has collapsed to exactly one
// surviving state with enough context -- the position is abandoned (no
// mapping emitted, search moves to the next offset) the moment a round's
// fan-out is empty, matching the source's abandon-and-restart rule without
// this package's per-position searches needing a rolling cross-position
// scan to do it.
func (idx *FMDIndex) MisMatchMap(rv *RangeVector, query string, mask *BitVector, minContext, zMax, start, length int) ([]Mapping, []int) {
	var mappings []Mapping
	maxCharacters := make([]int, length)

	for offset := 0; offset < length; offset++ {
		pos := start + offset
		branches := []mismatchBranch{{pos: idx.fullRange(), i: pos}}
		best := 0

		for len(branches) > 0 {
			i := branches[0].i
			if i < start || !IsBase(query[i]) {
				break
			}
			queryChar := query[i]

			var next []mismatchBranch
			for _, br := range branches {
				for _, c := range forwardBases {
					mismatches := br.mismatches
					if c != queryChar {
						mismatches++
						if mismatches > zMax {
							continue
						}
					}
					candidate, err := br.pos.Extend(idx.bwt, c, true)
					if err != nil || candidate.IsEmpty(mask) {
						continue
					}
					next = append(next, mismatchBranch{
						pos:        candidate,
						i:          i - 1,
						context:    br.context + 1,
						mismatches: mismatches,
					})
				}
			}
			if len(next) == 0 {
				break
			}
			if next[0].context > best {
				best = next[0].context
			}
			if len(next) > 1 {
				branches = next
				continue
			}

			only := next[0]
			if only.context < minContext {
				branches = next
				continue
			}
			if r := only.pos.Range(rv, mask); r >= 0 {
				base, err := rv.Base(r)
				if err == nil {
					mappings = append(mappings, Mapping{
						QueryPos:   pos,
						Context:    only.context,
						Mismatches: only.mismatches,
						Range:      base,
						HasRange:   true,
					})
				}
			}
			break
		}
		maxCharacters[offset] = best
	}
	return mappings, maxCharacters
}
