package fmindex

import "fmt"

/*
The merge mapper works over a fixed, five-symbol DNA alphabet plus the BWT's
text terminator. The alphabet's byte order must match the order the on-disk
BWT was built with -- the backward/forward extension loop in fmdposition.go
walks the alphabet in this exact order to allocate each base's sub-interval,
so changing this slice changes what on-disk BWTs this package can read.

ASCII happens to already put the terminator before all five bases and the
bases in alphabetical order ('$' = 36 < 'A' = 65 < 'C' = 67 < 'G' = 71 <
'N' = 78 < 'T' = 84), so alphabetOrder doubles as a sort order.
*/
var alphabetOrder = [...]byte{terminator, 'A', 'C', 'G', 'N', 'T'}

// terminator is the BWT's text-terminator sentinel. It sorts before every
// base and marks the end of a text.
const terminator = '$'

var complementTable = map[byte]byte{
	'A': 'T',
	'C': 'G',
	'G': 'C',
	'N': 'N',
	'T': 'A',
}

// IsBase reports whether c is one of the five alphabet symbols (not the
// terminator).
func IsBase(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'N', 'T':
		return true
	default:
		return false
	}
}

// ErrInvalidExtensionChar is returned when an extension or mapping routine is
// asked to walk a character that is not one of the alphabet's five bases.
type ErrInvalidExtensionChar struct {
	Char byte
}

func (e *ErrInvalidExtensionChar) Error() string {
	if e.Char == 0 {
		return "fmindex: extension with the null character"
	}
	return fmt.Sprintf("fmindex: extension with invalid character %q", e.Char)
}

// Complement returns the Watson-Crick complement of a base. It panics if c is
// not one of A, C, G, N, T -- callers that accept arbitrary bytes must
// validate with IsBase first, exactly as extend() does before calling
// Complement.
func Complement(c byte) byte {
	comp, ok := complementTable[c]
	if !ok {
		panic(fmt.Sprintf("fmindex: Complement called with non-base byte %q", c))
	}
	return comp
}

// ReverseComplement returns the reverse complement of a DNA sequence drawn
// from the alphabet {A, C, G, N, T}.
func ReverseComplement(sequence string) string {
	out := make([]byte, len(sequence))
	for i := 0; i < len(sequence); i++ {
		out[len(sequence)-1-i] = Complement(sequence[i])
	}
	return string(out)
}
