package fmindex

/*
FMDPosition is a bi-interval: a pair of linked BWT intervals that together
represent both a pattern and its reverse complement in one bidirectional
search state (Lam et al.; Li 2012). ForwardStart and ReverseStart are the two
intervals' starting rows; both share the same length, EndOffset+1. The type
is a plain value, never boxed behind a pointer and shared across goroutines,
per the pinch-graph merge scheme's concurrency model: every worker computes
its own bi-intervals independently against the read-only shared FMDIndex.
*/
type FMDPosition struct {
	ForwardStart int64
	ReverseStart int64
	EndOffset    int64
}

// reverseComplementOrder lists the five bases in the order their complements
// sort alphabetically (complement(T)=A, complement(G)=C, complement(C)=G,
// complement(N)=N, complement(A)=T). Backward extension allocates each
// base's reverse-strand sub-range in this order, since the reverse-strand
// interval represents the reverse-complement text and sorts by that text's
// own first character.
var reverseComplementOrder = [...]byte{'T', 'G', 'C', 'N', 'A'}

// forwardBases lists the five bases in plain alphabetical order, matching
// the PC/Occ block order used for forward-strand sub-ranges.
var forwardBases = [...]byte{'A', 'C', 'G', 'N', 'T'}

// Length returns the number of BWT rows the interval spans. With no mask,
// this is EndOffset+1. With a mask, it is the count of masked rows within
// the forward range.
func (p FMDPosition) Length(mask *BitVector) int {
	if p.EndOffset < 0 {
		return 0
	}
	if mask == nil {
		return int(p.EndOffset) + 1
	}
	return mask.Rank(int(p.ForwardStart+p.EndOffset)+1) - mask.Rank(int(p.ForwardStart))
}

// IsEmpty reports whether the interval contains no rows. With a genome mask
// it reports whether no masked row lies in the forward range.
func (p FMDPosition) IsEmpty(mask *BitVector) bool {
	if p.EndOffset < 0 {
		return true
	}
	if mask == nil {
		return false
	}
	return p.Length(mask) == 0
}

// Flip exchanges ForwardStart and ReverseStart, corresponding to
// reverse-complementing the pattern the bi-interval represents.
func (p FMDPosition) Flip() FMDPosition {
	return FMDPosition{ForwardStart: p.ReverseStart, ReverseStart: p.ForwardStart, EndOffset: p.EndOffset}
}

// Range locates the single range-vector entry the interval's forward BWT
// rows fall entirely within, or -1 if the interval is empty or straddles
// more than one range. rv.bits has a set bit at the first row of every
// range, so the interval falls in one range iff at most one such bit lies
// within [ForwardStart, ForwardStart+EndOffset], and that bit (if any) is
// the interval's own first row.
func (p FMDPosition) Range(rv *RangeVector, mask *BitVector) int {
	if p.IsEmpty(mask) {
		return -1
	}
	start := int(p.ForwardStart)
	end := start + int(p.EndOffset) + 1 // exclusive
	startIsSet := rv.bits.IsSet(start)
	want := rv.bits.Rank(start)
	if startIsSet {
		want++
	}
	if rv.bits.Rank(end) != want {
		return -1
	}
	if startIsSet {
		return rv.bits.Rank(start)
	}
	return rv.bits.Rank(start) - 1
}

// extendAllBackward computes, for every base in the alphabet, the
// sub-interval that backward-extension by that base would produce. This is
// the primitive Extend is built from; the context-mapping algorithms in
// index.go (including MisMatchMap's per-base fan-out) reach it through
// Extend, one call per candidate base.
func (p FMDPosition) extendAllBackward(idx *BWT) map[byte]FMDPosition {
	out := make(map[byte]FMDPosition, len(forwardBases))
	if p.EndOffset < 0 {
		return out
	}
	length := p.EndOffset + 1

	var before, within int
	occBefore := make(map[byte]int64, len(forwardBases))
	lengthOf := make(map[byte]int64, len(forwardBases))
	forwardSub := make(map[byte]FMDPosition, len(forwardBases))
	var sumLengths int64

	for _, b := range forwardBases {
		before = idx.Occ(b, int(p.ForwardStart))
		within = idx.Occ(b, int(p.ForwardStart+p.EndOffset)+1)
		l := int64(within - before)
		occBefore[b] = int64(before)
		lengthOf[b] = l
		sumLengths += l
		forwardSub[b] = FMDPosition{
			ForwardStart: int64(idx.PC(b)) + int64(before),
			EndOffset:    l - 1,
		}
	}

	endOfTextLength := length - sumLengths
	reverseCursor := p.ReverseStart + endOfTextLength
	for _, b := range reverseComplementOrder {
		sub := forwardSub[b]
		sub.ReverseStart = reverseCursor
		out[b] = sub
		reverseCursor += lengthOf[b]
	}
	return out
}

// extendAllForward computes, for every base, the sub-interval that
// forward-extension by that base would produce. It is built from
// extendAllBackward by flipping, extending backward by the complement of
// each base, and flipping each result back -- extending forward by c is
// equivalent to extending the flipped interval backward by complement(c).
func (p FMDPosition) extendAllForward(idx *BWT) map[byte]FMDPosition {
	backward := p.Flip().extendAllBackward(idx)
	out := make(map[byte]FMDPosition, len(backward))
	for b, sub := range backward {
		out[Complement(b)] = sub.Flip()
	}
	return out
}

// Extend returns the bi-interval produced by extending p with base c, either
// backward (prepending c to the pattern) or forward (appending c).
func (p FMDPosition) Extend(idx *BWT, c byte, backward bool) (FMDPosition, error) {
	if !IsBase(c) {
		return FMDPosition{}, &ErrInvalidExtensionChar{Char: c}
	}
	if backward {
		return p.extendAllBackward(idx)[c], nil
	}
	return p.extendAllForward(idx)[c], nil
}

// ExtendFast extends p in place by base c, mutating the receiver rather than
// returning a new value or allocating a full five-base successor map. The
// per-base Occ lookups still have to cover all five bases (the endOfTextLength
// term that anchors every reverse-strand sub-range depends on their combined
// length), but the reverse-offset walk over reverseComplementOrder stops as
// soon as c's own sub-range is resolved, skipping the bases ordered after it.
func (p *FMDPosition) ExtendFast(idx *BWT, c byte, backward bool) error {
	if !IsBase(c) {
		return &ErrInvalidExtensionChar{Char: c}
	}
	if !backward {
		flipped := p.Flip()
		if err := flipped.ExtendFast(idx, Complement(c), true); err != nil {
			return err
		}
		*p = flipped.Flip()
		return nil
	}

	if p.EndOffset < 0 {
		*p = FMDPosition{EndOffset: -1}
		return nil
	}
	length := p.EndOffset + 1

	before := make(map[byte]int64, len(forwardBases))
	lengthOf := make(map[byte]int64, len(forwardBases))
	pc := make(map[byte]int64, len(forwardBases))
	var sumLengths int64
	for _, b := range forwardBases {
		bef := idx.Occ(b, int(p.ForwardStart))
		within := idx.Occ(b, int(p.ForwardStart+p.EndOffset)+1)
		before[b] = int64(bef)
		pc[b] = int64(idx.PC(b))
		lengthOf[b] = int64(within - bef)
		sumLengths += lengthOf[b]
	}
	endOfTextLength := length - sumLengths

	reverseCursor := p.ReverseStart + endOfTextLength
	for _, b := range reverseComplementOrder {
		if b == c {
			*p = FMDPosition{
				ForwardStart: pc[b] + before[b],
				ReverseStart: reverseCursor,
				EndOffset:    lengthOf[b] - 1,
			}
			return nil
		}
		reverseCursor += lengthOf[b]
	}
	return nil
}
