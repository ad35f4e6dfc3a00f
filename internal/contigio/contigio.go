/*
Package contigio loads the on-disk artifacts an FMDIndex is built from: the
contig table, one genome mask per genome, and the BWT itself. Building these
artifacts (running the BWT construction, computing genome masks from an
alignment) is someone else's job upstream of this package; contigio only
reads what that upstream step already wrote, the way the teacher's bio/fasta
only reads FASTA records someone else produced.

Five file formats live under one basename:

  - "{basename}.contigs.fasta" -- one FASTA record per contig, whose
    sequence length becomes the contig's length, identifier of the form
    "name genomeID".
  - "{basename}.masks" -- one "genomeID start length" line per run of BWT
    rows belonging to that genome, lines grouped by genomeID in
    non-decreasing start order.
  - "{basename}.bwt" -- a literal, uncompressed BWT: a length header, the BWT
    string itself, then one "textID offset" line per row, recording where
    that row's suffix starts. This is deliberately not the compressed
    wavelet-tree-plus-sampled-suffix-array format a production pangenome
    index would use; building and reading that format is out of scope here,
    the same way building a BWT from raw sequence is out of scope for
    fmindex.BWT.
  - "{basename}.ranges" -- one "start contig base1 face" line per range,
    read by LoadRangeVector.
  - "{basename}.included" -- one "start length" run line per run of included
    BWT rows, read by LoadIncludedPositions.
*/
package contigio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bebop/merge-mapper/bio"
	"github.com/bebop/merge-mapper/fmindex"
)

// LoadContigTable reads "{basename}.contigs.fasta" and builds a ContigTable.
// Each record's identifier must be "name genomeID"; contigs are assigned
// ScaffoldStart values by accumulating lengths within each genome in file
// order, so a genome's contigs must already be adjacent in the file.
func LoadContigTable(basename string) (*fmindex.ContigTable, error) {
	f, err := os.Open(basename + ".contigs.fasta")
	if err != nil {
		return nil, fmt.Errorf("contigio: opening contig table: %w", err)
	}
	defer f.Close()

	parser, err := bio.NewFastaParser(f)
	if err != nil {
		return nil, fmt.Errorf("contigio: building fasta parser: %w", err)
	}
	records, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("contigio: parsing contig table: %w", err)
	}

	scaffoldCursor := map[int]int{}
	contigs := make([]fmindex.Contig, 0, len(records))
	for _, record := range records {
		name, genomeID, err := splitContigIdentifier(record.Identifier)
		if err != nil {
			return nil, fmt.Errorf("contigio: %s: %w", record.Identifier, err)
		}
		start := scaffoldCursor[genomeID]
		contigs = append(contigs, fmindex.Contig{
			Name:          name,
			ScaffoldStart: start,
			Length:        len(record.Sequence),
			GenomeID:      genomeID,
		})
		scaffoldCursor[genomeID] = start + len(record.Sequence)
	}

	table, err := fmindex.NewContigTable(contigs)
	if err != nil {
		return nil, fmt.Errorf("contigio: %w", err)
	}
	return table, nil
}

func splitContigIdentifier(identifier string) (name string, genomeID int, err error) {
	fields := strings.Fields(identifier)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("expected \"name genomeID\", got %q", identifier)
	}
	genomeID, err = strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("genome id %q is not an integer: %w", fields[1], err)
	}
	return fields[0], genomeID, nil
}

// LoadGenomeMasks reads "{basename}.masks" and returns one BitVector per
// genome, indexed by genome id, each over [0, bwLen). A genome with no
// entries in the file gets an empty mask rather than a missing slot, so
// callers can always index by genome id without a bounds check.
func LoadGenomeMasks(basename string, bwLen int) ([]*fmindex.BitVector, error) {
	f, err := os.Open(basename + ".masks")
	if err != nil {
		return nil, fmt.Errorf("contigio: opening genome masks: %w", err)
	}
	defer f.Close()

	builders := map[int]*fmindex.BitVectorBuilder{}
	maxGenomeID := -1

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
		if len(fields) != 3 {
			return nil, fmt.Errorf("contigio: masks line %d: expected \"genomeID start length\", got %q", lineNo, line)
		}
		genomeID, err1 := strconv.Atoi(fields[0])
		start, err2 := strconv.Atoi(fields[1])
		length, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("contigio: masks line %d: non-integer field in %q", lineNo, line)
		}
		b, ok := builders[genomeID]
		if !ok {
			b = fmindex.NewBitVectorBuilder(bwLen)
			builders[genomeID] = b
		}
		b.AddRun(start, length)
		if genomeID > maxGenomeID {
			maxGenomeID = genomeID
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("contigio: reading genome masks: %w", err)
	}

	masks := make([]*fmindex.BitVector, maxGenomeID+1)
	for id := 0; id <= maxGenomeID; id++ {
		b, ok := builders[id]
		if !ok {
			b = fmindex.NewBitVectorBuilder(bwLen)
		}
		masks[id] = b.Flush()
	}
	return masks, nil
}

// literalBWTSource implements fmindex.BWTSource by holding an entire loaded
// BWT and locate table in memory, with per-base cumulative occurrence counts
// precomputed once at load time so Occ is an O(1) array lookup rather than a
// rescan of the BWT on every query.
type literalBWTSource struct {
	bwt        []byte
	textID     []uint64
	offset     []uint64
	pc         map[byte]int
	cumulative map[byte][]int // cumulative[c][i] = Occ(c, i)
}

func (s *literalBWTSource) PC(c byte) int { return s.pc[c] }

func (s *literalBWTSource) Occ(c byte, i int) int {
	counts, ok := s.cumulative[c]
	if !ok {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i > len(s.bwt) {
		i = len(s.bwt)
	}
	return counts[i]
}

func (s *literalBWTSource) GetChar(i int) byte { return s.bwt[i] }

func (s *literalBWTSource) BWLen() int { return len(s.bwt) }

func (s *literalBWTSource) Locate(i int) fmindex.TextPosition {
	return fmindex.TextPosition{TextID: s.textID[i], Offset: s.offset[i]}
}

// LoadBWT reads "{basename}.bwt" and wraps it in a fmindex.BWT.
func LoadBWT(basename string) (*fmindex.BWT, error) {
	f, err := os.Open(basename + ".bwt")
	if err != nil {
		return nil, fmt.Errorf("contigio: opening bwt: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), bufio.MaxScanTokenSize)

	if !scanner.Scan() {
		return nil, fmt.Errorf("contigio: bwt file is empty")
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 || header[0] != "N" {
		return nil, fmt.Errorf("contigio: bwt file missing \"N <count>\" header")
	}
	n, err := strconv.Atoi(header[1])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("contigio: bwt file has invalid row count %q", header[1])
	}

	if !scanner.Scan() {
		return nil, fmt.Errorf("contigio: bwt file missing bwt string line")
	}
	bwtString := scanner.Text()
	if len(bwtString) != n {
		return nil, fmt.Errorf("contigio: bwt string has length %d, header declared %d", len(bwtString), n)
	}

	textID := make([]uint64, n)
	offset := make([]uint64, n)
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("contigio: bwt file truncated at locate row %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			return nil, fmt.Errorf("contigio: locate row %d: expected \"textID offset\", got %q", i, scanner.Text())
		}
		tid, err1 := strconv.ParseUint(fields[0], 10, 64)
		off, err2 := strconv.ParseUint(fields[1], 10, 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("contigio: locate row %d: non-integer field", i)
		}
		textID[i] = tid
		offset[i] = off
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("contigio: reading bwt: %w", err)
	}

	alphabet := []byte{'$', 'A', 'C', 'G', 'N', 'T'}
	cumulative := make(map[byte][]int, len(alphabet))
	for _, c := range alphabet {
		cumulative[c] = make([]int, n+1)
	}
	for i := 0; i < n; i++ {
		c := bwtString[i]
		for _, base := range alphabet {
			cumulative[base][i+1] = cumulative[base][i]
		}
		cumulative[c][i+1]++
	}

	pc := map[byte]int{}
	running := 0
	for _, c := range alphabet {
		pc[c] = running
		running += cumulative[c][n]
	}

	src := &literalBWTSource{
		bwt:        []byte(bwtString),
		textID:     textID,
		offset:     offset,
		pc:         pc,
		cumulative: cumulative,
	}
	return fmindex.NewBWT(src), nil
}
