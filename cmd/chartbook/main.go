// Package main provides the entry point for the chartbook CLI.
//
// Chartbook renders self-contained, data-driven HTML reports: a JSON
// document describes pages, layouts and visual widgets, each bound to
// datasets embedded in the document.
//
// Usage:
//
//	chartbook render <document>
//	chartbook serve <document>
//
// See --help for all available options.
package main

// main is the entry point for chartbook.
func main() {
	Execute()
}
