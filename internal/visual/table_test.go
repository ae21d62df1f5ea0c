package visual

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/chartbook/internal/format"
	"github.com/nao1215/chartbook/internal/model"
)

func TestBuildTable(t *testing.T) {
	t.Parallel()

	t.Run("all columns with dtype alignment", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t), `{"type": "table"}`)
		if m.Empty != nil {
			t.Fatalf("unexpected empty state: %q", m.Empty.Reason)
		}
		g := m.Table
		if g == nil {
			t.Fatal("expected a table payload")
		}
		if !reflect.DeepEqual(g.Columns, []string{"Month", "Sales", "Costs"}) {
			t.Errorf("Columns = %v", g.Columns)
		}
		if !reflect.DeepEqual(g.Aligns, []string{"left", "right", "right"}) {
			t.Errorf("Aligns = %v, want numbers right-aligned", g.Aligns)
		}
		if len(g.Rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(g.Rows))
		}
		if !reflect.DeepEqual(g.Rows[0], []string{"Jan", "1,000", "400"}) {
			t.Errorf("first row = %v, want formatted cells", g.Rows[0])
		}
	})

	t.Run("column subset in configured order", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t), `{"type": "table", "columns": ["Costs", "Month"]}`)
		if m.Table == nil {
			t.Fatal("expected a table payload")
		}
		if !reflect.DeepEqual(m.Table.Columns, []string{"Costs", "Month"}) {
			t.Errorf("Columns = %v, want the configured order", m.Table.Columns)
		}
		if !reflect.DeepEqual(m.Table.Rows[0], []string{"400", "Jan"}) {
			t.Errorf("first row = %v", m.Table.Rows[0])
		}
	})

	t.Run("maxRows truncates", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t), `{"type": "table", "maxRows": 1}`)
		if m.Table == nil || len(m.Table.Rows) != 1 {
			t.Fatalf("table = %+v, want one row", m.Table)
		}
	})

	t.Run("zero rows keeps the header", func(t *testing.T) {
		t.Parallel()
		table := mustTable(t,
			[]string{"Month", "Sales"},
			[]model.DType{model.DTypeString, model.DTypeNumber},
			`[]`)
		m := buildFromJSON(t, table, `{"type": "table"}`)
		if m.Empty != nil {
			t.Fatalf("unexpected empty state: %q", m.Empty.Reason)
		}
		if m.Table == nil || len(m.Table.Columns) != 2 || len(m.Table.Rows) != 0 {
			t.Fatalf("table = %+v, want headers only", m.Table)
		}
	})

	t.Run("unresolved configured column", func(t *testing.T) {
		t.Parallel()
		m := buildFromJSON(t, salesTable(t), `{"type": "table", "columns": ["Month", "Margin"]}`)
		if m.Empty == nil || !strings.Contains(m.Empty.Reason, `"Margin" not found`) {
			t.Fatalf("empty = %+v, want the missing column reason", m.Empty)
		}
	})

	t.Run("absent cells render as the placeholder", func(t *testing.T) {
		t.Parallel()
		table := mustTable(t,
			[]string{"Month", "Sales"},
			[]model.DType{model.DTypeString, model.DTypeNumber},
			`[["Jan", null]]`)
		m := buildFromJSON(t, table, `{"type": "table"}`)
		if m.Table == nil {
			t.Fatal("expected a table payload")
		}
		if got := m.Table.Rows[0][1]; got != format.NoData {
			t.Errorf("absent cell = %q, want the placeholder", got)
		}
	})
}
