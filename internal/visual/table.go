package visual

import (
	"encoding/json"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/format"
	"github.com/nao1215/chartbook/internal/model"
)

type tableConfig struct {
	// Columns restricts and orders the shown columns; empty shows all.
	Columns []dataset.ColumnRef `json:"columns"`

	// MaxRows truncates the grid when positive.
	MaxRows int `json:"maxRows"`
}

// buildTable formats the dataset as a grid of display strings. Numeric
// columns align right, everything else left. A dataset with zero rows
// still renders its header.
func buildTable(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg tableConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid table configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}

	var cols []int
	if len(cfg.Columns) > 0 {
		for _, ref := range cfg.Columns {
			col, ok := t.Resolve(ref)
			if !ok {
				m.Empty = emptyf("column %s not found", ref)
				return
			}
			cols = append(cols, col)
		}
	} else {
		cols = make([]int, t.NumCols())
		for i := range cols {
			cols[i] = i
		}
	}
	if len(cols) == 0 {
		m.Empty = emptyf("no columns")
		return
	}

	rows := t.NumRows()
	if cfg.MaxRows > 0 && rows > cfg.MaxRows {
		rows = cfg.MaxRows
	}

	g := &TableModel{
		Columns: make([]string, len(cols)),
		Aligns:  make([]string, len(cols)),
		Rows:    make([][]string, rows),
	}
	for i, col := range cols {
		g.Columns[i] = t.Columns[col]
		g.Aligns[i] = "left"
		if t.DTypes[col] == model.DTypeNumber {
			g.Aligns[i] = "right"
		}
	}
	for r := 0; r < rows; r++ {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = format.Cell(t.At(r, col))
		}
		g.Rows[r] = cells
	}
	m.Table = g
}
