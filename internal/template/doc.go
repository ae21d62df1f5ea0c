// Package template fills {{ ... }} placeholders in document text
// fields with values computed from datasets and props.
//
// The default mode evaluates a deliberately small expression grammar:
// path traversal on the render context (datasets.<id>.data[r][c],
// props.<name>) and calls to an allowlisted function set (count, sum,
// avg, min, max, and the format helpers). Nothing else parses, not
// even operators or assignments, so untrusted documents cannot
// execute code through text fields.
//
// Documents may opt into unsafeJs values, which hand the whole source
// to an embedded ECMAScript engine with the same context as bindings.
// The host decides per document whether that opt-in is honored; when it
// is refused the value renders empty with a recorded diagnostic.
//
// Failures never escalate: a bad placeholder renders as an empty span,
// the surrounding text and every other placeholder are unaffected, and
// the problem is recorded through the renderer's logger.
package template
