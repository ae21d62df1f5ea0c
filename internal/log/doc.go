// Package log provides render diagnostics collection built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - In-memory capture of WARN and ERROR records (the per-render
//     diagnostics: corrupt datasets, unresolved columns, empty visuals)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// A render never aborts on a bad visual or dataset; it degrades in place
// and logs what happened. The CollectorHandler is how those degradations
// surface to the user: the CLI prints the collected diagnostics as a
// summary after the report is written, and the history database records
// their count.
//
// # Usage
//
//	// Create a logger with an attached collector
//	logger, collector := log.NewLogger(os.Stderr, false)
//
//	// Use as a standard slog.Logger
//	logger.Warn("dataset warning",
//	    "dataset", "sales",
//	    "reason", "row 3 dropped",
//	)
//
//	// After the render, inspect what was captured
//	for _, d := range collector.Diagnostics() {
//	    fmt.Println(d.String())
//	}
package log
