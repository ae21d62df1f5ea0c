package template

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/model"
)

// testRenderer builds a renderer over a small document: a sales table,
// an empty dataset, and a few props.
func testRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()

	datasets := map[string]*model.Dataset{
		"sales": {
			ID:     "sales",
			Format: model.FormatRecords,
			Data:   json.RawMessage(`[{"Month": "Jan", "Sales": 1000}, {"Month": "Feb", "Sales": 1500}]`),
		},
		"empty": {
			ID:      "empty",
			Format:  model.FormatTable,
			Columns: []string{"v"},
			Data:    json.RawMessage(`[]`),
		},
	}
	store := dataset.NewStore(datasets, dataset.WithStoreLogger(discardLogger()))

	base := []Option{
		WithProps(map[string]any{
			"title": "Quarterly Report",
			"ratio": 0.5,
			"meta":  map[string]any{"owner": "ops"},
		}),
		WithLogger(discardLogger()),
	}
	return NewRenderer(store, append(base, opts...)...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestEvalExpressions verifies the safe grammar end to end.
func TestEvalExpressions(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	testCases := []struct {
		name     string
		expr     string
		expected any
	}{
		{name: "count with bare dataset name", expr: "count(sales)", expected: 2.0},
		{name: "count with quoted dataset name", expr: `count("sales")`, expected: 2.0},
		{name: "sum by column name", expr: "sum(sales, 'Sales')", expected: 2500.0},
		{name: "avg by column name", expr: "avg(sales, 'Sales')", expected: 1250.0},
		{name: "min", expr: "min(sales, 'Sales')", expected: 1000.0},
		{name: "max", expr: "max(sales, 'Sales')", expected: 1500.0},
		{name: "sum by column index", expr: "sum(sales, 1)", expected: 2500.0},
		{name: "path to cell", expr: "datasets.sales.data[0][1]", expected: 1000.0},
		{name: "path to string cell", expr: "datasets.sales.data[1][0]", expected: "Feb"},
		{name: "out-of-range cell is absent", expr: "datasets.sales.data[99][0]", expected: nil},
		{name: "prop lookup", expr: "props.title", expected: "Quarterly Report"},
		{name: "nested prop", expr: "props.meta.owner", expected: "ops"},
		{name: "format number", expr: "formatNumber(sum(sales, 'Sales'), 0)", expected: "2,500"},
		{name: "format percent", expr: "formatPercent(props.ratio)", expected: "50%"},
		{name: "format currency", expr: "formatCurrency(sum(sales, 'Sales'))", expected: "$2,500.00"},
		{name: "format currency with symbol", expr: "formatCurrency(1234.5, '€', 0)", expected: "€1,235"},
		{name: "format date from string", expr: "formatDate('2026-03-15')", expected: "2026-03-15"},
		{name: "aggregate over empty dataset is no data", expr: "avg(empty, 'v')", expected: nil},
		{name: "string literal", expr: "'hello'", expected: "hello"},
		{name: "number literal", expr: "42", expected: 42.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Eval(tc.expr)
			if err != nil {
				t.Fatalf("Eval(%q) failed: %v", tc.expr, err)
			}
			if got != tc.expected {
				t.Errorf("Eval(%q) = %v (%T), expected %v (%T)", tc.expr, got, got, tc.expected, tc.expected)
			}
		})
	}
}

// TestEvalRejectsConstructsOutsideGrammar verifies that everything the
// grammar does not explicitly allow fails evaluation.
func TestEvalRejectsConstructsOutsideGrammar(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	testCases := []struct {
		name string
		expr string
	}{
		{name: "arithmetic operator", expr: "1 + 1"},
		{name: "assignment", expr: "x = 1"},
		{name: "unknown function", expr: "eval('x')"},
		{name: "unknown root identifier", expr: "window.location"},
		{name: "bare identifier", expr: "sales"},
		{name: "statement separator", expr: "count(sales); count(sales)"},
		{name: "trailing tokens", expr: "count(sales) extra"},
		{name: "unterminated string", expr: "'abc"},
		{name: "fractional index", expr: "datasets.sales.data[0.5][0]"},
		{name: "negative index", expr: "datasets.sales.data[-1][0]"},
		{name: "dataset property outside allowlist", expr: "datasets.sales.secret"},
		{name: "unknown prop", expr: "props.nonexistent"},
		{name: "non-scalar prop result", expr: "props.meta"},
		{name: "unknown column", expr: "sum(sales, 'Bogus')"},
		{name: "unknown dataset", expr: "count(nope)"},
		{name: "empty expression", expr: ""},
		{name: "brace injection", expr: "{alert(1)}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := r.Eval(tc.expr)
			if err == nil {
				t.Fatalf("Eval(%q) succeeded, expected a grammar or evaluation error", tc.expr)
			}
			if !errors.Is(err, ErrEvaluation) {
				t.Errorf("Eval(%q) error = %v, expected ErrEvaluation", tc.expr, err)
			}
		})
	}
}

// TestEvalWrapsDatasetSentinels verifies that dataset-level errors stay
// inspectable through the template error.
func TestEvalWrapsDatasetSentinels(t *testing.T) {
	t.Parallel()

	r := testRenderer(t)

	_, err := r.Eval("count(nope)")
	if !errors.Is(err, dataset.ErrUnresolvedDataset) {
		t.Errorf("expected ErrUnresolvedDataset to be wrapped, got %v", err)
	}

	_, err = r.Eval("sum(sales, 'Bogus')")
	if !errors.Is(err, dataset.ErrUnresolvedColumn) {
		t.Errorf("expected ErrUnresolvedColumn to be wrapped, got %v", err)
	}
}
