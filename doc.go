/*
Package mergemapper is a Go module for finding merges between genomic base
positions in a pangenome, using a bi-directional (FMD) FM-index.

Given an FM-index built over a collection of genome sequences, the merge
mapper identifies pairs of bases that should be considered equivalent because
each side is uniquely re-identified by the other's context. The merges it
produces are meant to be consumed by a downstream pinch-graph construction
that equates the named positions.

The module is organized into two halves:

  - fmindex provides the bi-directional FM-index search engine: a compressed
    bitvector, BWT primitives, the bi-interval ("FMDPosition") that represents
    a pattern and its reverse complement simultaneously, and the context
    mapping algorithms (one-sided, two-sided/credit, and mismatch-tolerant)
    built on top of it.

  - merge provides the concurrent merge pipeline: a per-contig generator that
    reconciles left and right context mappings into merges, a bounded
    multi-producer/single-consumer queue, and the applier that drains the
    queue into an external pinch structure.

cmd/merge-mapper wires the two halves together behind a small CLI.
*/
package mergemapper
