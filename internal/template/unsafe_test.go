package template

import (
	"testing"
	"time"

	"github.com/nao1215/chartbook/internal/model"
)

// TestUnsafeEvaluation verifies the opted-in script mode: full language
// with datasets, props, and helpers bound.
func TestUnsafeEvaluation(t *testing.T) {
	t.Parallel()

	r := testRenderer(t, WithUnsafeEnabled(true))

	testCases := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "arbitrary arithmetic",
			source:   "1 + 1",
			expected: "2",
		},
		{
			name:     "dataset binding",
			source:   "datasets.sales.data[0][1] + datasets.sales.data[1][1]",
			expected: "2,500",
		},
		{
			name:     "props binding",
			source:   "props.title.toUpperCase()",
			expected: "QUARTERLY REPORT",
		},
		{
			name:     "helpers binding",
			source:   "helpers.sum('sales', 'Sales') * 2",
			expected: "5,000",
		},
		{
			name:     "helper formatting",
			source:   "helpers.formatCurrency(helpers.sum('sales', 'Sales'))",
			expected: "$2,500.00",
		},
		{
			name:     "conditional logic",
			source:   "helpers.count('sales') > 1 ? 'many' : 'one'",
			expected: "many",
		},
		{
			name:     "missing dataset degrades to no data",
			source:   "helpers.sum('nope', 'x')",
			expected: "—",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			value := model.TemplateValue{Kind: model.KindUnsafe, Source: tc.source}
			if got := r.Render(value); got != tc.expected {
				t.Errorf("Render(%q) = %q, expected %q", tc.source, got, tc.expected)
			}
		})
	}
}

// TestUnsafeFailuresRenderEmpty verifies that script exceptions and
// syntax errors are contained to the value.
func TestUnsafeFailuresRenderEmpty(t *testing.T) {
	t.Parallel()

	r := testRenderer(t, WithUnsafeEnabled(true))

	testCases := []struct {
		name   string
		source string
	}{
		{name: "syntax error", source: "function ("},
		{name: "thrown exception", source: "(() => { throw new Error('boom') })()"},
		{name: "reference error", source: "totallyUndefinedName + 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			value := model.TemplateValue{Kind: model.KindUnsafe, Source: tc.source}
			if got := r.Render(value); got != "" {
				t.Errorf("Render(%q) = %q, expected empty", tc.source, got)
			}
		})
	}
}

// TestUnsafeTimeout verifies that a runaway script is interrupted.
func TestUnsafeTimeout(t *testing.T) {
	t.Parallel()

	r := testRenderer(t, WithUnsafeEnabled(true), WithUnsafeTimeout(50*time.Millisecond))

	value := model.TemplateValue{Kind: model.KindUnsafe, Source: "while (true) {}"}
	done := make(chan string, 1)
	go func() {
		done <- r.Render(value)
	}()

	select {
	case got := <-done:
		if got != "" {
			t.Errorf("expected interrupted script to render empty, got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("script was not interrupted")
	}
}

// TestUnsafeUndefinedResult verifies that a script with no result
// renders the no-data placeholder rather than "undefined".
func TestUnsafeUndefinedResult(t *testing.T) {
	t.Parallel()

	r := testRenderer(t, WithUnsafeEnabled(true))
	value := model.TemplateValue{Kind: model.KindUnsafe, Source: "var x = 1;"}
	if got := r.Render(value); got != "—" {
		t.Errorf("expected no-data placeholder, got %q", got)
	}
}
