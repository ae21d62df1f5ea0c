package template

import "errors"

// Template evaluation errors.
//
// Design decision: one sentinel covers every way a placeholder can
// fail: lex error, grammar violation, unknown function, bad argument,
// runtime failure. Callers only ever contain the span and record the
// message, so a finer taxonomy would buy nothing; the dataset-level
// sentinels (dataset.ErrUnresolvedDataset and friends) stay wrapped
// inside for errors.Is inspection where it matters.
var (
	// ErrEvaluation is returned when a placeholder expression cannot be
	// parsed or evaluated. The failing span renders as an empty string;
	// the rest of the text is unaffected.
	ErrEvaluation = errors.New("template evaluation failed")

	// ErrUnsafeDisabled is returned when a value requests unsafeJs
	// evaluation but the host has not allowed it for this document.
	ErrUnsafeDisabled = errors.New("unsafeJs evaluation is disabled for this document")
)
