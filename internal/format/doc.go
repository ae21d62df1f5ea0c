// Package format renders numeric, date, and cell values as display
// strings. All output goes through one locale-aware printer so that
// grouping separators and rounding behave identically everywhere a
// number appears: template substitutions, KPI values, table cells, and
// axis labels.
//
// Non-finite numbers and absent cells render as the NoData placeholder,
// never as "NaN".
package format
