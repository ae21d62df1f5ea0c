// Package dataset normalizes the heterogeneous dataset shapes accepted by
// chartbook documents into a single canonical table representation.
//
// A dataset arrives either as inline JSON in one of four formats (table,
// records, list, record) or as a compressed payload (gzip-deflated JSON,
// base64-encoded). Normalization decompresses when needed, reshapes the
// rows into a column-major-described, row-major-stored table, and coerces
// every cell to its column's declared (or inferred) dtype. Cells that are
// missing or fail coercion become absent cells; they are never invented
// as zeros.
//
// The Store type runs normalization for all datasets of a document
// concurrently and caches the results so each dataset is normalized at
// most once per render.
package dataset
