package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bebop/merge-mapper/fmindex"
	"github.com/bebop/merge-mapper/internal/contigio"
	"github.com/bebop/merge-mapper/merge"
)

/*
main is the entry point for the merge-mapper command line utility. It is
separated from the actual *cli.App construction to help with testing, the
same split the teacher's poly/main.go uses.
*/
func main() {
	run(os.Args)
}

func run(args []string) {
	if err := application().Run(args); err != nil {
		log.Fatal(err)
	}
}

// application defines the merge-mapper cli.App: its one job is to parse
// flags, load the on-disk FMDIndex artifacts via internal/contigio, and hand
// them to merge.Scheme. No business logic lives here -- it is a wiring shim,
// as the teacher's commands.go is for poly's own subcommands.
func application() *cli.App {
	return &cli.App{
		Name:  "merge-mapper",
		Usage: "Map a genome's contigs against a pangenome FM-index and propose pinch merges.",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "basename",
				Usage:    "Basename of the on-disk index artifacts (reads {basename}.contigs.fasta, .bwt, .ranges, .included).",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "target-genome",
				Usage:    "Genome id whose contigs should be mapped against the rest of the collection.",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "min-context",
				Usage: "Minimum context length a mapping must reach before it counts as resolved.",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "mismatches",
				Usage: "Mismatch budget for context mapping. 0 disables mismatch tolerance.",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "reversible-only",
				Usage: "Only commit merges both sides agree on. When false, one-sided (non-reversible) merges are committed too.",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "included-positions",
				Usage: "Optional basename override for the included-positions mask file ({name}.included). Defaults to --basename.",
			},
		},

		Action: func(c *cli.Context) error {
			return mergeCommand(c)
		},
	}
}

func mergeCommand(c *cli.Context) error {
	basename := c.String("basename")

	contigs, err := contigio.LoadContigTable(basename)
	if err != nil {
		return fmt.Errorf("merge-mapper: %w", err)
	}
	bwt, err := contigio.LoadBWT(basename)
	if err != nil {
		return fmt.Errorf("merge-mapper: %w", err)
	}
	idx := fmindex.NewFMDIndex(bwt, contigs)

	bwLen := bwt.BWLen()

	rv, err := contigio.LoadRangeVector(basename, bwLen)
	if err != nil {
		return fmt.Errorf("merge-mapper: %w", err)
	}

	maskBasename := c.String("included-positions")
	if maskBasename == "" {
		maskBasename = basename
	}
	mask, err := contigio.LoadIncludedPositions(maskBasename, bwLen)
	if err != nil {
		return fmt.Errorf("merge-mapper: %w", err)
	}

	mode := merge.ReversibleOnly
	if !c.Bool("reversible-only") {
		mode = merge.All
	}

	cfg := merge.Config{
		TargetGenome: c.Int("target-genome"),
		MinContext:   c.Int("min-context"),
		Mismatches:   c.Int("mismatches"),
		Mode:         mode,
	}

	scheme := merge.NewScheme(idx, rv, mask, &loggingPincher{}, cfg)
	if err := scheme.Run(context.Background()); err != nil {
		return fmt.Errorf("merge-mapper: %w", err)
	}

	log.Printf("merge-mapper: applied %d merges", scheme.Applied())
	return nil
}

// loggingPincher is a placeholder merge.Pincher: the real pinch-graph
// structure is an external collaborator out of scope for this repo (spec's
// Non-goals exclude "implementing the pinch graph itself"), so this stands
// in for wiring/smoke-testing the CLI end to end, logging every Pinch call
// instead of mutating a real equivalence structure.
type loggingPincher struct{}

func (p *loggingPincher) GetThread(contig int) merge.Thread { return contig }

func (p *loggingPincher) Pinch(first, second merge.Thread, offset1, offset2, length int, sameStrand bool) error {
	log.Printf("pinch: contig %v@%d <-> contig %v@%d (len %d, sameStrand=%v)", first, offset1, second, offset2, length, sameStrand)
	return nil
}
