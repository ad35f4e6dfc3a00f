package contigio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bebop/merge-mapper/fmindex"
)

// LoadRangeVector reads "{basename}.ranges" and builds a fmindex.RangeVector
// over a BWT of bwLen rows. Each line is "start contig base1 face": start is
// the BWT row that is the *first* row of that range (the only bit the
// RangeVector's bits BitVector records for the range, per fmindex.RangeVector's
// doc comment), and "contig base1 face" is the RangeBase that range resolves
// to. Lines must appear in non-decreasing start order, the same requirement
// BitVectorBuilder.AddBit places on its caller.
func LoadRangeVector(basename string, bwLen int) (*fmindex.RangeVector, error) {
	f, err := os.Open(basename + ".ranges")
	if err != nil {
		return nil, fmt.Errorf("contigio: opening range vector: %w", err)
	}
	defer f.Close()

	builder := fmindex.NewBitVectorBuilder(bwLen)
	var bases []fmindex.RangeBase

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), bufio.MaxScanTokenSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("contigio: ranges line %d: expected \"start contig base1 face\", got %q", lineNo, line)
		}
		start, err1 := strconv.Atoi(fields[0])
		contig, err2 := strconv.Atoi(fields[1])
		base1, err3 := strconv.Atoi(fields[2])
		face, err4 := strconv.Atoi(fields[3])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("contigio: ranges line %d: non-integer field in %q", lineNo, line)
		}
		builder.AddBit(start)
		bases = append(bases, fmindex.RangeBase{Contig: contig, Base1: base1, Face: face})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("contigio: reading range vector: %w", err)
	}

	rv, err := fmindex.NewRangeVector(builder.Flush(), bases)
	if err != nil {
		return nil, fmt.Errorf("contigio: %w", err)
	}
	return rv, nil
}

// LoadIncludedPositions reads "{basename}.included" -- "start length" run
// lines -- into the included-positions mask spec.md §3 describes: the subset
// of BWT rows the mapper is allowed to resolve a query to, typically the
// bottom-level positions of the target reference.
func LoadIncludedPositions(basename string, bwLen int) (*fmindex.BitVector, error) {
	f, err := os.Open(basename + ".included")
	if err != nil {
		return nil, fmt.Errorf("contigio: opening included-positions mask: %w", err)
	}
	defer f.Close()

	builder := fmindex.NewBitVectorBuilder(bwLen)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), bufio.MaxScanTokenSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("contigio: included-positions line %d: expected \"start length\", got %q", lineNo, line)
		}
		start, err1 := strconv.Atoi(fields[0])
		length, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("contigio: included-positions line %d: non-integer field in %q", lineNo, line)
		}
		builder.AddRun(start, length)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("contigio: reading included-positions mask: %w", err)
	}
	return builder.Flush(), nil
}
