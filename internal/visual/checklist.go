package visual

import (
	"encoding/json"
	"math"
	"time"

	"github.com/nao1215/chartbook/internal/dataset"
)

// defaultWarningDays is the due-date warning window when the checklist
// does not configure one.
const defaultWarningDays = 7

type checklistConfig struct {
	LabelColumn  dataset.ColumnRef `json:"labelColumn"`
	StatusColumn dataset.ColumnRef `json:"statusColumn"`
	DueColumn    dataset.ColumnRef `json:"dueColumn"`
	WarningDays  *int              `json:"warningDays"`
}

// ClassifyItem derives a checklist item's status. A truthy completion
// wins regardless of the due date. Otherwise a due date strictly before
// now is overdue, one within warnDays of now is a warning, and anything
// else, including no due date at all, is pending.
func ClassifyItem(done bool, due *time.Time, now time.Time, warnDays int) ItemStatus {
	switch {
	case done:
		return StatusComplete
	case due == nil:
		return StatusPending
	case due.Before(now):
		return StatusOverdue
	case !due.After(now.Add(time.Duration(warnDays) * 24 * time.Hour)):
		return StatusWarning
	default:
		return StatusPending
	}
}

// buildChecklist classifies one item per row against the context clock.
func buildChecklist(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg checklistConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid checklist configuration: %v", err)
		return
	}
	t, empty := ctx.table()
	if empty != nil {
		m.Empty = empty
		return
	}
	lcol, empty := resolveOr(t, cfg.LabelColumn, 0, "label")
	if empty != nil {
		m.Empty = empty
		return
	}
	scol, hasStatus := resolveOptional(t, cfg.StatusColumn)
	dcol, hasDue := resolveOptional(t, cfg.DueColumn)

	warnDays := defaultWarningDays
	if cfg.WarningDays != nil && *cfg.WarningDays >= 0 {
		warnDays = *cfg.WarningDays
	}

	c := &ChecklistModel{Items: make([]ChecklistItem, 0, t.NumRows())}
	for r := 0; r < t.NumRows(); r++ {
		item := ChecklistItem{Label: t.At(r, lcol).Display()}

		done := hasStatus && t.At(r, scol).Truthy()
		if hasDue {
			if due, ok := dueTime(t.At(r, dcol)); ok {
				item.Due = &due
				days := int(math.Ceil(due.Sub(ctx.Now).Hours() / 24))
				item.DaysUntilDue = &days
			}
		}
		item.Status = ClassifyItem(done, item.Due, ctx.Now, warnDays)
		c.Items = append(c.Items, item)
	}
	m.Checklist = c
}

// dueTime reads a due date from a cell: a date-typed cell directly, or a
// string cell through the normalizer's date parsing.
func dueTime(c dataset.Cell) (time.Time, bool) {
	if t, ok := c.Time(); ok {
		return t, true
	}
	if s, ok := c.Text(); ok {
		return dataset.ParseDate(s)
	}
	return time.Time{}, false
}
