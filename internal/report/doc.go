// Package report serializes derived render models into their output
// formats: self-contained HTML with inline SVG charts, Markdown, and
// the raw JSON render model.
package report
