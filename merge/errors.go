package merge

import (
	"errors"
	"fmt"
)

// ErrRunCalledTwice is returned by Scheme.Run when a Scheme's Run method is
// invoked a second time. A Scheme is single-shot, per spec §5/§7.
var ErrRunCalledTwice = errors.New("merge: Run called twice on the same Scheme")

// ErrForwardReverseSizeMismatch is returned by Generator.Run if a contig's
// reverse complement, the query of its left-context mapping pass, does not
// have the contig's own length -- a check that should never fail in practice
// (reverse-complementing a string preserves its length), kept as an explicit
// defensive check per spec §7.
var ErrForwardReverseSizeMismatch = errors.New("merge: left and right mapping vectors have different lengths")

// ErrOutOfRangeContigPosition is returned when a range-table entry names a
// base position off the end of its contig, or the 0th base in 1-based
// coordinates -- a malformed RangeVector, not a data condition a correctly
// built index should ever produce. Fatal at the generator call site: the
// worker that hits it aborts, but still closes the queue (see Generator.Run).
type ErrOutOfRangeContigPosition struct {
	Contig int
	Base1  int
	Length int
}

func (e *ErrOutOfRangeContigPosition) Error() string {
	return fmt.Sprintf("merge: contig %d base %d is out of range for a contig of length %d", e.Contig, e.Base1, e.Length)
}
