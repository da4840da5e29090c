// Package report accumulates classified items and persists the crawl's
// output artifacts.
//
// Two JSON files are written at the end of a run, each a full overwrite:
// a debug dump of every classifier verdict, and the canonical output
// containing only items judged relevant. An optional markdown digest
// renders the relevant items for human readers.
//
// The Sink is owned by the crawl scheduler and mutated only from its
// coordinating loop; a partial run therefore produces a partial but
// internally consistent pair of files.
package report
