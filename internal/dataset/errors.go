package dataset

import "errors"

// Dataset normalization and resolution errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each failure site. Callers (the render
// pipeline, visual builders, the template evaluator) match with
// errors.Is() to decide how to contain a failure, while the dynamic
// context (dataset ID, column name) is attached at the call site with
// fmt.Errorf and %w.
var (
	// ErrCorruptDataset is returned when a compressed dataset payload
	// cannot be decoded: invalid base64, a broken gzip stream, a checksum
	// mismatch, or payload JSON that does not match the declared format.
	ErrCorruptDataset = errors.New("corrupt dataset payload")

	// ErrUnresolvedDataset is returned when a visual or expression refers
	// to a dataset ID that does not exist in the document.
	ErrUnresolvedDataset = errors.New("dataset not found")

	// ErrUnresolvedColumn is returned when a column reference does not
	// match any column: an unknown name or an out-of-range index.
	ErrUnresolvedColumn = errors.New("column not found")
)
