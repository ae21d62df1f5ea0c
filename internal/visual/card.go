package visual

import (
	"encoding/json"

	"github.com/nao1215/chartbook/internal/model"
)

type cardConfig struct {
	Body model.TemplateValue `json:"body"`
}

// buildCard renders a block of template text. Cards need no dataset; the
// body may still reach any dataset through template expressions.
func buildCard(m *Model, raw json.RawMessage, ctx *Context) {
	var cfg cardConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		m.Empty = emptyf("invalid card configuration: %v", err)
		return
	}
	m.Card = &CardModel{Body: ctx.render(cfg.Body)}
}
