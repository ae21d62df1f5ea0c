package visual

import (
	"strings"
	"testing"

	"github.com/nao1215/chartbook/internal/format"
	"github.com/nao1215/chartbook/internal/model"
)

func TestBuildKPI(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		visual      string
		wantValue   float64
		wantDisplay string
		wantClass   Classification
	}{
		{
			name:        "sum is the default aggregate",
			visual:      `{"type": "kpi", "valueColumn": "Sales"}`,
			wantValue:   2500,
			wantDisplay: "2,500",
		},
		{
			name:        "avg",
			visual:      `{"type": "kpi", "valueColumn": "Sales", "aggregate": "avg"}`,
			wantValue:   1250,
			wantDisplay: "1,250",
		},
		{
			name:        "count needs no column",
			visual:      `{"type": "kpi", "aggregate": "count"}`,
			wantValue:   2,
			wantDisplay: "2",
		},
		{
			name:        "column by index",
			visual:      `{"type": "kpi", "valueColumn": 2, "aggregate": "max"}`,
			wantValue:   600,
			wantDisplay: "600",
		},
		{
			name:        "currency display",
			visual:      `{"type": "kpi", "valueColumn": "Sales", "format": "currency"}`,
			wantValue:   2500,
			wantDisplay: "$2,500.00",
		},
		{
			name:        "fixed digits",
			visual:      `{"type": "kpi", "valueColumn": "Sales", "aggregate": "avg", "digits": 1}`,
			wantValue:   1250,
			wantDisplay: "1,250.0",
		},
		{
			name:        "breach classification",
			visual:      `{"type": "kpi", "valueColumn": "Sales", "goodDirection": "lower", "breachValue": 2000}`,
			wantValue:   2500,
			wantDisplay: "2,500",
			wantClass:   ClassBreach,
		},
		{
			name:        "ok classification",
			visual:      `{"type": "kpi", "valueColumn": "Sales", "goodDirection": "higher", "warningValue": 2000}`,
			wantValue:   2500,
			wantDisplay: "2,500",
			wantClass:   ClassOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := buildFromJSON(t, salesTable(t), tc.visual)
			if m.Empty != nil {
				t.Fatalf("unexpected empty state: %q", m.Empty.Reason)
			}
			if m.KPI == nil {
				t.Fatal("expected a kpi payload")
			}
			if !m.KPI.HasValue {
				t.Fatal("expected a value")
			}
			if m.KPI.Value != tc.wantValue {
				t.Errorf("Value = %v, want %v", m.KPI.Value, tc.wantValue)
			}
			if m.KPI.Display != tc.wantDisplay {
				t.Errorf("Display = %q, want %q", m.KPI.Display, tc.wantDisplay)
			}
			if m.KPI.Classification != tc.wantClass {
				t.Errorf("Classification = %q, want %q", m.KPI.Classification, tc.wantClass)
			}
		})
	}
}

func TestBuildKPIDelta(t *testing.T) {
	t.Parallel()

	m := buildFromJSON(t, salesTable(t), `{"type": "kpi", "valueColumn": "Sales", "deltaColumn": "Costs"}`)
	if m.KPI == nil || m.KPI.Delta == nil {
		t.Fatalf("kpi = %+v, want a delta", m.KPI)
	}
	if *m.KPI.Delta != 1000 {
		t.Errorf("Delta = %v, want 1000", *m.KPI.Delta)
	}
}

func TestBuildKPINoData(t *testing.T) {
	t.Parallel()

	// Month is string-typed, so the sum has no eligible values. The visual
	// still renders, showing the placeholder without an indicator.
	m := buildFromJSON(t, salesTable(t), `{"type": "kpi", "valueColumn": "Month", "breachValue": 10}`)
	if m.Empty != nil {
		t.Fatalf("unexpected empty state: %q", m.Empty.Reason)
	}
	if m.KPI == nil {
		t.Fatal("expected a kpi payload")
	}
	if m.KPI.HasValue {
		t.Error("HasValue = true, want false")
	}
	if m.KPI.Display != format.NoData {
		t.Errorf("Display = %q, want the no-data placeholder", m.KPI.Display)
	}
	if m.KPI.Classification != ClassNone {
		t.Errorf("Classification = %q, want none for a missing value", m.KPI.Classification)
	}
}

func TestBuildKPIEmptyStates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		visual string
		want   string
	}{
		{
			name:   "unresolved column",
			visual: `{"type": "kpi", "valueColumn": "Revenue"}`,
			want:   `value column "Revenue" not found`,
		},
		{
			name:   "unknown aggregate",
			visual: `{"type": "kpi", "valueColumn": "Sales", "aggregate": "median"}`,
			want:   `unknown aggregate "median"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := buildFromJSON(t, salesTable(t), tc.visual)
			if m.Empty == nil {
				t.Fatal("expected an empty state")
			}
			if !strings.Contains(m.Empty.Reason, tc.want) {
				t.Errorf("reason = %q, want it to contain %q", m.Empty.Reason, tc.want)
			}
			if m.KPI != nil {
				t.Error("expected no payload alongside the empty state")
			}
		})
	}
}

func TestBuildGauge(t *testing.T) {
	t.Parallel()

	t.Run("fraction on a configured range", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t),
			`{"type": "gauge", "valueColumn": "Sales", "aggregate": "avg", "min": 0, "max": 2000}`)
		if m.Empty != nil {
			t.Fatalf("unexpected empty state: %q", m.Empty.Reason)
		}
		if m.Gauge == nil || !m.Gauge.HasValue {
			t.Fatalf("gauge = %+v, want a value", m.Gauge)
		}
		if m.Gauge.Value != 1250 {
			t.Errorf("Value = %v, want 1250", m.Gauge.Value)
		}
		if !almostEqual(m.Gauge.Fraction, 0.625) {
			t.Errorf("Fraction = %v, want 0.625", m.Gauge.Fraction)
		}
		if m.Gauge.Display != "1,250" {
			t.Errorf("Display = %q, want 1,250", m.Gauge.Display)
		}
	})

	t.Run("default range pins out-of-range values", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t), `{"type": "gauge", "valueColumn": "Sales"}`)
		if m.Gauge == nil {
			t.Fatal("expected a gauge payload")
		}
		if m.Gauge.Min != 0 || m.Gauge.Max != 100 {
			t.Errorf("range = [%v, %v], want the default [0, 100]", m.Gauge.Min, m.Gauge.Max)
		}
		if m.Gauge.Fraction != 1 {
			t.Errorf("Fraction = %v, want clamped to 1", m.Gauge.Fraction)
		}
	})

	t.Run("collapsed range yields zero fraction", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t),
			`{"type": "gauge", "valueColumn": "Sales", "min": 50, "max": 50}`)
		if m.Gauge == nil || m.Gauge.Fraction != 0 {
			t.Fatalf("gauge = %+v, want zero fraction on a collapsed range", m.Gauge)
		}
	})

	t.Run("percent display with classification", func(t *testing.T) {
		t.Parallel()
		table := mustTable(t, []string{"rate"}, []model.DType{model.DTypeNumber}, `[[0.42]]`)
		m := buildFromJSON(t, table,
			`{"type": "gauge", "valueColumn": "rate", "min": 0, "max": 1, "format": "percent", "goodDirection": "higher", "warningValue": 0.5}`)
		if m.Gauge == nil {
			t.Fatal("expected a gauge payload")
		}
		if m.Gauge.Display != "42%" {
			t.Errorf("Display = %q, want 42%%", m.Gauge.Display)
		}
		if m.Gauge.Classification != ClassWarning {
			t.Errorf("Classification = %q, want warning", m.Gauge.Classification)
		}
	})

	t.Run("no eligible values still renders", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t), `{"type": "gauge", "valueColumn": "Month"}`)
		if m.Empty != nil {
			t.Fatalf("unexpected empty state: %q", m.Empty.Reason)
		}
		if m.Gauge == nil || m.Gauge.HasValue {
			t.Fatalf("gauge = %+v, want no value", m.Gauge)
		}
		if m.Gauge.Display != format.NoData {
			t.Errorf("Display = %q, want the no-data placeholder", m.Gauge.Display)
		}
	})
}
