package template

import "strings"

// segment is one piece of a scanned template string: literal text or
// the contents of one {{ ... }} span.
type segment struct {
	text string
	expr bool
}

// scan splits a template string into literal and expression segments.
// Text outside {{ }} passes through untouched. An opening {{ with no
// closing }} swallows the remainder: the unterminated span renders as
// empty rather than leaking delimiter syntax into the output.
func scan(s string) []segment {
	var segments []segment
	for {
		open := strings.Index(s, "{{")
		if open < 0 {
			if s != "" {
				segments = append(segments, segment{text: s})
			}
			return segments
		}
		if open > 0 {
			segments = append(segments, segment{text: s[:open]})
		}
		rest := s[open+2:]
		closing := strings.Index(rest, "}}")
		if closing < 0 {
			return segments
		}
		segments = append(segments, segment{text: strings.TrimSpace(rest[:closing]), expr: true})
		s = rest[closing+2:]
	}
}
