package document

import "errors"

// ErrInvalidDocument is returned when the input cannot be decoded into
// a report document at all: it is neither a JSON object nor an HTML
// page carrying the designated payload element, or the payload is not
// valid JSON.
//
// Design decision: an unreadable document root is the only hard
// failure in the loading path. Everything below the root (a corrupt
// dataset, a dangling reference, an unknown visual type) is
// recoverable and degrades to per-visual empty states during the
// render instead of failing the load.
var ErrInvalidDocument = errors.New("invalid document")
