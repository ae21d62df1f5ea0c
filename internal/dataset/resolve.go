package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type colRefKind uint8

const (
	refNone colRefKind = iota
	refName
	refIndex
)

// ColumnRef is a reference to one column of a canonical table, either
// by exact name or by 0-based position. Visual configurations accept
// both forms, so ColumnRef decodes from a JSON string or integer.
type ColumnRef struct {
	kind  colRefKind
	name  string
	index int
}

// Name returns a by-name column reference.
func Name(name string) ColumnRef { return ColumnRef{kind: refName, name: name} }

// Index returns a by-position column reference.
func Index(i int) ColumnRef { return ColumnRef{kind: refIndex, index: i} }

// IsZero reports whether the reference was never set.
func (r ColumnRef) IsZero() bool { return r.kind == refNone }

// String returns the reference in diagnostic form: the quoted name, or
// #N for positional references.
func (r ColumnRef) String() string {
	switch r.kind {
	case refName:
		return strconv.Quote(r.name)
	case refIndex:
		return "#" + strconv.Itoa(r.index)
	default:
		return "(unset)"
	}
}

// UnmarshalJSON decodes either a JSON string (name reference) or a JSON
// integer (positional reference). A fractional number is rejected.
func (r *ColumnRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Name(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if f != math.Trunc(f) {
			return fmt.Errorf("column reference must be a name or an integer index, got %v", f)
		}
		*r = Index(int(f))
		return nil
	}
	return fmt.Errorf("column reference must be a string or an integer, got %s", string(data))
}

// Resolve maps a column reference to a concrete column index of the
// table. Names match case-sensitively; integer references are 0-based
// positions. The second return is false when the reference does not
// resolve; that is not an error by itself, callers decide whether to
// fall back or to report a missing-column state.
func (t *Table) Resolve(ref ColumnRef) (int, bool) {
	switch ref.kind {
	case refName:
		for i, c := range t.Columns {
			if c == ref.name {
				return i, true
			}
		}
		return 0, false
	case refIndex:
		if ref.index < 0 || ref.index >= t.NumCols() {
			return 0, false
		}
		return ref.index, true
	default:
		return 0, false
	}
}
