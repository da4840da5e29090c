// Package database provides SQLite-based crawl history storage.
//
// Every processed task is recorded with its terminal state, so a run can be
// audited after its JSON output files have been replaced by a later run.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
