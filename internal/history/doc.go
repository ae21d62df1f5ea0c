// Package history provides SQLite-based storage for chartbook render history.
//
// This package implements the Store, which records one row per completed
// render:
//   - The source document path and report title
//   - Page, visual, and warning counts
//   - Render duration and output format
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a
// flat history file because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Pruning and filtered listing are single SQL statements
// 4. WAL mode provides good concurrent read performance
package history
