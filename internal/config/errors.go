package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoDocument is returned when no document path is specified.
	// This error occurs when the positional argument is missing.
	ErrNoDocument = errors.New("no document specified: provide a document path")

	// ErrInvalidFormat is returned when the output format is not one of
	// html, markdown or json.
	ErrInvalidFormat = errors.New("invalid format: must be html, markdown, or json")

	// ErrInvalidConcurrency is returned when the concurrency is negative.
	// Zero means one worker per CPU; negative values are meaningless.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative")

	// ErrInvalidUnsafeTimeout is returned when the unsafeJs timeout is
	// negative. Zero means evaluation is unbounded.
	ErrInvalidUnsafeTimeout = errors.New("invalid unsafe timeout: must be non-negative")

	// ErrInvalidHistoryLimit is returned when the history listing limit is
	// negative. Zero lists nothing; use the default to list recent renders.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be non-negative")
)
