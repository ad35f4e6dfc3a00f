/*
Package bio provides utilities for reading and writing sequence data.

The merge mapper only needs one on-disk sequence format -- FASTA, for contig
sequences read by internal/contigio -- but keeps the generic, concurrency-
ready Parser built around it. internal/contigio reads its contig file with
the synchronous Parse; ParseToChannel and ManyToChannel have no caller
inside this module.
*/
package bio

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"

	"github.com/bebop/merge-mapper/bio/fasta"
	"golang.org/x/sync/errgroup"
)

// Format is an enum of different parser formats.
type Format int

const (
	Fasta Format = iota
)

// DefaultMaxLineLength variables are defined for performance reasons. While
// parsing, reading byte-by-byte takes far, far longer than reading many bytes
// into a buffer. In golang, this buffer in bufio is usually 64kb.
const defaultMaxLineLength int = bufio.MaxScanTokenSize

var DefaultMaxLengths = map[Format]int{
	Fasta: defaultMaxLineLength,
}

/******************************************************************************

Lower level interfaces

******************************************************************************/

// parserInterface is a generic interface that all parsers must support. It is
// very simple, only requiring two functions, Header() and Next(). Next()
// returns a record from the file format and terminates on an io.EOF error.
type parserInterface[Data io.WriterTo, Header io.WriterTo] interface {
	Header() (Header, error)
	Next() (Data, error)
}

/******************************************************************************

Higher level parse

******************************************************************************/

// Parser is generic bioinformatics file parser. It contains a LowerLevelParser
// and implements useful functions on top of it: such as Parse(), ParseToChannel(), and
// ParseWithHeader().
type Parser[Data io.WriterTo, Header io.WriterTo] struct {
	parserInterface parserInterface[Data, Header]
}

// NewFastaParser initiates a new FASTA parser from an io.Reader.
func NewFastaParser(r io.Reader) (*Parser[*fasta.Record, *fasta.Header], error) {
	return NewFastaParserWithMaxLineLength(r, DefaultMaxLengths[Fasta])
}

// NewFastaParserWithMaxLineLength initiates a new FASTA parser from an
// io.Reader and a user-given maxLineLength.
func NewFastaParserWithMaxLineLength(r io.Reader, maxLineLength int) (*Parser[*fasta.Record, *fasta.Header], error) {
	return &Parser[*fasta.Record, *fasta.Header]{parserInterface: fasta.NewParser(r, maxLineLength)}, nil
}

/******************************************************************************

Parser higher-level functions

******************************************************************************/

// Next is a parsing primitive that should be used when low-level control is
// needed. It returns the next record from the parser. On EOF, it returns an
// io.EOF error, though the returned record may or may not be nil, depending
// on where the io.EOF is. This should be checked by downstream software.
func (p *Parser[Data, Header]) Next() (Data, error) {
	return p.parserInterface.Next()
}

// Header returns the header of the parser. FASTA has no useful header, but
// Header() is still safe to call.
func (p *Parser[Data, Header]) Header() (Header, error) {
	return p.parserInterface.Header()
}

// ParseN returns a countN number of records from the parser.
func (p *Parser[Data, Header]) ParseN(countN int) ([]Data, error) {
	var records []Data
	for counter := 0; counter < countN; counter++ {
		record, err := p.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil // EOF not treated as parsing error.
			}
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Parse returns all records from the parser, but does not include the
// header. It can only be called once on a given parser because it will read
// all the input from the underlying io.Reader before exiting.
func (p *Parser[Data, Header]) Parse() ([]Data, error) {
	return p.ParseN(math.MaxInt)
}

// ParseWithHeader returns all records, plus the header, from the parser. It
// can only be called once on a given parser.
func (p *Parser[Data, Header]) ParseWithHeader() ([]Data, Header, error) {
	header, headerErr := p.Header()
	data, err := p.Parse()
	if headerErr != nil {
		return data, header, err
	}
	if err != nil {
		return data, header, err
	}
	return data, header, nil
}

/******************************************************************************

Concurrent higher-level functions

******************************************************************************/

// ParseToChannel pipes all records from a parser into a channel, then
// optionally closes that channel. If parsing a single file, "keepChannelOpen"
// should be set to false, which will close the channel once parsing is
// complete. If many files are being parsed to a single channel,
// keepChannelOpen should be set to true, so that an external function will
// close the channel once all are done parsing.
//
// Context can be used to close the parser in the middle of parsing -- for
// example, if an error is found in another parser elsewhere and all files
// need to close. ManyToChannel relies on this to stop its remaining parsers
// once one of them fails.
func (p *Parser[Data, Header]) ParseToChannel(ctx context.Context, channel chan<- Data, keepChannelOpen bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			record, err := p.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil // EOF not treated as parsing error.
				}
				if !keepChannelOpen {
					close(channel)
				}
				return err
			}
			channel <- record
		}
	}
}

// ManyToChannel concurrently parses many parsers to a single channel, then
// closes that channel. If any of the files fail to parse, the entire
// pipeline exits and returns the first error.
func ManyToChannel[Data io.WriterTo, Header io.WriterTo](ctx context.Context, channel chan<- Data, parsers ...*Parser[Data, Header]) error {
	errorGroup, ctx := errgroup.WithContext(ctx)
	for _, p := range parsers {
		parser := p
		errorGroup.Go(func() error {
			return parser.ParseToChannel(ctx, channel, true)
		})
	}
	err := errorGroup.Wait()
	close(channel)
	return err
}
