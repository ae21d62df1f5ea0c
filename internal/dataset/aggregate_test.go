package dataset

import (
	"math"
	"testing"
)

// salesTable mirrors the documentation example: two rows of Sales
// values 1000 and 1500.
func salesTable() *Table {
	return &Table{
		Columns: []string{"Month", "Sales"},
		Rows: [][]Cell{
			{StringCell("Jan"), NumberCell(1000)},
			{StringCell("Feb"), NumberCell(1500)},
		},
	}
}

// TestAggregates verifies sum/avg/min/max over a numeric column.
func TestAggregates(t *testing.T) {
	t.Parallel()

	table := salesTable()

	if v, ok := table.Sum(1); !ok || v != 2500 {
		t.Errorf("Sum = %v (ok=%v), expected 2500", v, ok)
	}
	if v, ok := table.Avg(1); !ok || v != 1250 {
		t.Errorf("Avg = %v (ok=%v), expected 1250", v, ok)
	}
	if v, ok := table.Min(1); !ok || v != 1000 {
		t.Errorf("Min = %v (ok=%v), expected 1000", v, ok)
	}
	if v, ok := table.Max(1); !ok || v != 1500 {
		t.Errorf("Max = %v (ok=%v), expected 1500", v, ok)
	}
	if got := table.Count(); got != 2 {
		t.Errorf("Count = %d, expected 2", got)
	}
}

// TestAggregatesSkipIneligibleCells verifies that absent and
// non-numeric cells are excluded, never counted as zero.
func TestAggregatesSkipIneligibleCells(t *testing.T) {
	t.Parallel()

	table := &Table{
		Columns: []string{"v"},
		Rows: [][]Cell{
			{NumberCell(10)},
			{AbsentCell()},
			{StringCell("n/a")},
			{NumberCell(20)},
			{NumberCell(math.NaN())},
		},
	}

	if v, ok := table.Sum(0); !ok || v != 30 {
		t.Errorf("Sum = %v (ok=%v), expected 30", v, ok)
	}
	if v, ok := table.Avg(0); !ok || v != 15 {
		t.Errorf("Avg = %v (ok=%v), expected 15 (absent cells must not dilute the mean)", v, ok)
	}
	// Count still reports every row.
	if got := table.Count(); got != 5 {
		t.Errorf("Count = %d, expected 5", got)
	}
}

// TestAggregatesNoData verifies the no-data sentinel for columns with
// zero eligible values.
func TestAggregatesNoData(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		table *Table
	}{
		{
			name:  "empty table",
			table: &Table{Columns: []string{"v"}},
		},
		{
			name: "all absent",
			table: &Table{
				Columns: []string{"v"},
				Rows:    [][]Cell{{AbsentCell()}, {AbsentCell()}},
			},
		},
		{
			name: "all strings",
			table: &Table{
				Columns: []string{"v"},
				Rows:    [][]Cell{{StringCell("a")}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, ok := tc.table.Sum(0); ok {
				t.Error("Sum: expected no-data sentinel")
			}
			if _, ok := tc.table.Avg(0); ok {
				t.Error("Avg: expected no-data sentinel")
			}
			if _, ok := tc.table.Min(0); ok {
				t.Error("Min: expected no-data sentinel")
			}
			if _, ok := tc.table.Max(0); ok {
				t.Error("Max: expected no-data sentinel")
			}
		})
	}
}

// TestNumbersColumnBounds verifies that out-of-range columns yield nil
// rather than panicking.
func TestNumbersColumnBounds(t *testing.T) {
	t.Parallel()

	table := salesTable()
	if got := table.Numbers(5); got != nil {
		t.Errorf("expected nil for out-of-range column, got %v", got)
	}
	if got := table.Numbers(-1); got != nil {
		t.Errorf("expected nil for negative column, got %v", got)
	}
	if _, ok := table.Sum(5); ok {
		t.Error("expected no-data for out-of-range column")
	}
}
