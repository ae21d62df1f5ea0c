// Package visual derives per-family render models from normalized datasets.
//
// Each visual family (card, kpi, gauge, pie, bars, scatter, table,
// checklist, line/area, histogram, box plot) has one builder that turns a
// canonical table plus the visual's configuration into a plain data model:
// resolved strings and pre-computed statistics, no layout or pixel values.
// Builders are pure functions of their inputs; they never mutate the table,
// so rebuilding with identical inputs yields identical models.
//
// Failures stay contained to the visual. A dangling dataset reference, an
// unresolved required column, or a computation lacking its minimum sample
// size produces a model carrying an EmptyState instead of an error; the
// rest of the document renders unaffected.
package visual
