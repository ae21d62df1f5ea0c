package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind identifies the typed state of a single table cell.
type CellKind uint8

// Cell kinds. CellAbsent is the explicit "no value" marker used for
// missing or unparsable data; it is distinct from zero and from the
// empty string and is excluded from every aggregate.
const (
	CellAbsent CellKind = iota
	CellString
	CellNumber
	CellBool
	CellTime
)

// String returns the kind label used in diagnostics.
func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	case CellTime:
		return "date"
	default:
		return "absent"
	}
}

// Cell is one typed value in a canonical table.
//
// Design decision: Cell is a small value type with unexported fields and
// typed accessors instead of an interface{} per cell. Builders switch on
// Kind() once and read the matching field; the zero value is the absent
// marker, so padded rows need no special construction.
type Cell struct {
	kind CellKind
	num  float64
	str  string
	b    bool
	t    time.Time
}

// AbsentCell returns the explicit no-value marker.
func AbsentCell() Cell { return Cell{} }

// StringCell returns a string-typed cell.
func StringCell(s string) Cell { return Cell{kind: CellString, str: s} }

// NumberCell returns a number-typed cell.
func NumberCell(f float64) Cell { return Cell{kind: CellNumber, num: f} }

// BoolCell returns a boolean-typed cell.
func BoolCell(b bool) Cell { return Cell{kind: CellBool, b: b} }

// TimeCell returns a date-typed cell.
func TimeCell(t time.Time) Cell { return Cell{kind: CellTime, t: t} }

// Kind returns the cell's typed state.
func (c Cell) Kind() CellKind { return c.kind }

// IsAbsent reports whether the cell carries no value.
func (c Cell) IsAbsent() bool { return c.kind == CellAbsent }

// Number returns the numeric value. The second return is false for
// non-number cells; no coercion is attempted here because coercion
// already happened during normalization.
func (c Cell) Number() (float64, bool) {
	if c.kind != CellNumber {
		return 0, false
	}
	return c.num, true
}

// Text returns the string value for string-typed cells.
func (c Cell) Text() (string, bool) {
	if c.kind != CellString {
		return "", false
	}
	return c.str, true
}

// Bool returns the boolean value for bool-typed cells.
func (c Cell) Bool() (bool, bool) {
	if c.kind != CellBool {
		return false, false
	}
	return c.b, true
}

// Time returns the date value for date-typed cells.
func (c Cell) Time() (time.Time, bool) {
	if c.kind != CellTime {
		return time.Time{}, false
	}
	return c.t, true
}

// Value returns the cell's dynamic value: nil for absent cells,
// otherwise string, float64, bool, or time.Time. It is the bridge to
// consumers that work on untyped values (template context, script
// bindings, JSON output).
func (c Cell) Value() any {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return c.num
	case CellBool:
		return c.b
	case CellTime:
		return c.t
	default:
		return nil
	}
}

// Display returns the cell's canonical unformatted text. Absent cells
// and non-finite numbers display as the empty string; the presentation
// layer substitutes its own no-data placeholder.
func (c Cell) Display() string {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return ""
		}
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.b)
	case CellTime:
		if c.t.Hour() == 0 && c.t.Minute() == 0 && c.t.Second() == 0 {
			return c.t.Format("2006-01-02")
		}
		return c.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// truthyStrings are the string forms accepted as "done" markers in
// checklist status columns, matched case-insensitively.
var truthyStrings = map[string]struct{}{
	"true": {}, "yes": {}, "done": {}, "complete": {}, "completed": {}, "y": {}, "1": {},
}

// Truthy reports whether the cell counts as affirmative: a true
// boolean, a non-zero finite number, one of a small set of affirmative
// strings, or any date value (a date in a completion column marks when
// the item was finished). Absent cells are never truthy.
func (c Cell) Truthy() bool {
	switch c.kind {
	case CellBool:
		return c.b
	case CellNumber:
		return c.num != 0 && !math.IsNaN(c.num)
	case CellString:
		_, ok := truthyStrings[strings.ToLower(strings.TrimSpace(c.str))]
		return ok
	case CellTime:
		return !c.t.IsZero()
	default:
		return false
	}
}

// Equal reports whether two cells hold the same typed value. Date cells
// compare by instant, not by location.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case CellString:
		return c.str == o.str
	case CellNumber:
		if math.IsNaN(c.num) && math.IsNaN(o.num) {
			return true
		}
		return c.num == o.num
	case CellBool:
		return c.b == o.b
	case CellTime:
		return c.t.Equal(o.t)
	default:
		return true
	}
}
