package visual

import "errors"

// Sentinel errors for visual model derivation.
//
// Design decision: builders report recoverable conditions through the
// model's EmptyState, not through error returns, so these sentinels exist
// for the statistics helpers that other packages call directly. Callers
// classify with errors.Is; the message text is for diagnostics only.
var (
	// ErrInsufficientData indicates a computation lacked its minimum sample
	// size, such as a regression with fewer than two valid points. The
	// feature is reported as unavailable rather than producing a degenerate
	// result.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnknownVisual indicates a visual type tag outside the supported
	// families.
	ErrUnknownVisual = errors.New("unknown visual type")
)
