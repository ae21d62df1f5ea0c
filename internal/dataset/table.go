package dataset

import (
	"fmt"
	"math"

	"github.com/nao1215/chartbook/internal/model"
)

// Table is the canonical form every consumer reads: an ordered list of
// column names, the resolved dtype per column, and row-major cell
// storage. All rows have exactly len(Columns) cells.
type Table struct {
	// ID is the dataset ID the table was normalized from.
	ID string
	// Columns holds the column names in order.
	Columns []string
	// DTypes holds the resolved dtype per column. Auto dtypes are
	// replaced with the inferred concrete type during normalization.
	DTypes []model.DType
	// Rows holds the cell data, row-major.
	Rows [][]Cell
	// Warnings records the non-fatal problems found while normalizing:
	// padded or truncated rows, unparsable cells, dtype list mismatches.
	Warnings []string
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// At returns the cell at (row, col). Out-of-range coordinates return
// the absent marker rather than panicking; visuals frequently index
// with user-supplied positions.
func (t *Table) At(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) {
		return AbsentCell()
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return AbsentCell()
	}
	return r[col]
}

// Column returns the cells of one column in row order. An out-of-range
// index returns nil.
func (t *Table) Column(col int) []Cell {
	if col < 0 || col >= t.NumCols() {
		return nil
	}
	cells := make([]Cell, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells = append(cells, row[col])
	}
	return cells
}

// Numbers returns the finite numeric values of a column in row order.
// Absent cells, non-number cells, and non-finite values are excluded,
// never substituted with zero.
func (t *Table) Numbers(col int) []float64 {
	if col < 0 || col >= t.NumCols() {
		return nil
	}
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		v, ok := row[col].Number()
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	return values
}

// warnf appends a formatted warning. Kept as a method so the normalizer
// helpers share one place to grow the slice.
func (t *Table) warnf(format string, args ...any) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, args...))
}
