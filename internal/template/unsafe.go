package template

import (
	"fmt"
	"math"
	"time"

	"github.com/dop251/goja"
	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/format"
)

// evalUnsafe runs one opted-in script in an embedded ECMAScript engine.
// The script sees the same context as safe mode (datasets, props, and
// the helper functions) but with the full language available. A fresh
// VM per evaluation keeps scripts from observing each other, and the
// interrupt timer bounds runaway loops.
func (r *Renderer) evalUnsafe(src string) (out any, err error) {
	vm := goja.New()
	if err := vm.Set("datasets", r.materializeDatasets()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if err := vm.Set("props", r.env.Props); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if err := vm.Set("helpers", r.helperBindings()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	timer := time.AfterFunc(r.unsafeTimeout, func() {
		vm.Interrupt("evaluation timed out")
	})
	defer timer.Stop()

	// goja reports some internal failures by panicking.
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrEvaluation, rec)
		}
	}()

	val, err := vm.RunString(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, nil
	}
	return val.Export(), nil
}

// materializeDatasets builds the plain-data view of every normalized
// dataset for script consumption: {id: {columns, data, rows}}.
// Datasets that failed to normalize are simply missing from the view.
func (r *Renderer) materializeDatasets() map[string]any {
	out := make(map[string]any)
	for _, id := range r.env.Store.IDs() {
		table, err := r.env.Store.Table(id)
		if err != nil {
			continue
		}
		data := make([][]any, table.NumRows())
		for i := range data {
			row := make([]any, table.NumCols())
			for j := range row {
				row[j] = table.At(i, j).Value()
			}
			data[i] = row
		}
		out[id] = map[string]any{
			"columns": table.Columns,
			"data":    data,
			"rows":    table.NumRows(),
		}
	}
	return out
}

// helperBindings exposes the safe-mode function set to scripts.
//
// Design decision: the helpers return plain values and degrade to NaN
// or the no-data placeholder on bad input instead of returning errors.
// Throwing Go errors through the VM boundary turns a helper misuse
// into a script exception, and a script mistake should degrade the
// same way a safe-mode placeholder does.
func (r *Renderer) helperBindings() map[string]any {
	aggregate := func(agg func(*dataset.Table, int) (float64, bool)) func(string, any) float64 {
		return func(id string, col any) float64 {
			table, err := r.env.Store.Table(id)
			if err != nil {
				return math.NaN()
			}
			ref, err := toColumnRef(col)
			if err != nil {
				return math.NaN()
			}
			idx, ok := table.Resolve(ref)
			if !ok {
				return math.NaN()
			}
			v, ok := agg(table, idx)
			if !ok {
				return math.NaN()
			}
			return v
		}
	}

	return map[string]any{
		"count": func(id string) float64 {
			table, err := r.env.Store.Table(id)
			if err != nil {
				return math.NaN()
			}
			return float64(table.Count())
		},
		"sum": aggregate((*dataset.Table).Sum),
		"avg": aggregate((*dataset.Table).Avg),
		"min": aggregate((*dataset.Table).Min),
		"max": aggregate((*dataset.Table).Max),
		"formatNumber": func(v float64, digits ...int) string {
			d := -1
			if len(digits) > 0 {
				d = digits[0]
			}
			return format.Number(v, d)
		},
		"formatPercent": func(v float64, digits ...int) string {
			d := -1
			if len(digits) > 0 {
				d = digits[0]
			}
			return format.Percent(v, d)
		},
		"formatCurrency": func(v float64, rest ...any) string {
			symbol := ""
			digits := -1
			if len(rest) > 0 {
				if s, ok := rest[0].(string); ok {
					symbol = s
				}
			}
			if len(rest) > 1 {
				if d, err := numberArg("formatCurrency", rest[1]); err == nil {
					digits = int(d)
				}
			}
			return format.Currency(v, symbol, digits)
		},
		"formatDate": func(v any) string {
			switch x := v.(type) {
			case string:
				if ts, ok := dataset.ParseDate(x); ok {
					return format.Date(ts)
				}
				return format.NoData
			case time.Time:
				return format.Date(x)
			default:
				return format.NoData
			}
		},
	}
}
