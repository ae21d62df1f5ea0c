package template

import (
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/format"
	"github.com/nao1215/chartbook/internal/model"
)

// defaultUnsafeTimeout bounds one unsafeJs evaluation. Scripts come
// from documents, and a script that loops forever must not hang the
// render.
const defaultUnsafeTimeout = 2 * time.Second

// Renderer evaluates template values against one document's datasets
// and props. It is safe for concurrent use: evaluation only reads the
// environment, and diagnostics go through slog.
type Renderer struct {
	env           *Env
	allowUnsafe   bool
	unsafeTimeout time.Duration
	logger        *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProps sets the props mapping exposed to expressions.
func WithProps(props map[string]any) Option {
	return func(r *Renderer) {
		r.env.Props = props
	}
}

// WithUnsafeEnabled controls whether unsafeJs values are honored.
// Off by default: the host must opt in per document, based on how much
// it trusts the document's origin.
func WithUnsafeEnabled(allow bool) Option {
	return func(r *Renderer) {
		r.allowUnsafe = allow
	}
}

// WithUnsafeTimeout overrides the time limit for one unsafeJs
// evaluation.
func WithUnsafeTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.unsafeTimeout = d
		}
	}
}

// WithLogger sets the logger that receives evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer over a dataset store.
func NewRenderer(store *dataset.Store, opts ...Option) *Renderer {
	r := &Renderer{
		env:           &Env{Store: store, Props: map[string]any{}},
		unsafeTimeout: defaultUnsafeTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Render produces the final display string for a template value.
// Failures are contained per span: a placeholder that cannot be
// evaluated renders as empty and is recorded through the logger, and
// the rest of the text is unaffected.
func (r *Renderer) Render(v model.TemplateValue) string {
	switch v.Kind {
	case model.KindExpr:
		out, err := r.Eval(v.Source)
		if err != nil {
			r.logger.Warn("expression evaluation failed",
				"expr", snippet(v.Source),
				"error", err,
			)
			return ""
		}
		return format.Value(out)
	case model.KindUnsafe:
		if !r.allowUnsafe {
			r.logger.Warn("refusing unsafeJs value",
				"source", snippet(v.Source),
				"error", ErrUnsafeDisabled,
			)
			return ""
		}
		out, err := r.evalUnsafe(v.Source)
		if err != nil {
			r.logger.Warn("unsafeJs evaluation failed",
				"source", snippet(v.Source),
				"error", err,
			)
			return ""
		}
		return format.Value(out)
	default:
		// Plain strings and explicit templates both scan for
		// placeholders; a string without any renders as itself.
		return r.renderTemplate(v.Source)
	}
}

// Eval parses and evaluates one safe-mode expression.
func (r *Renderer) Eval(src string) (any, error) {
	e, err := parseExpr(src)
	if err != nil {
		return nil, err
	}
	return e.eval(r.env)
}

func (r *Renderer) renderTemplate(src string) string {
	if !strings.Contains(src, "{{") {
		return src
	}
	var b strings.Builder
	for _, seg := range scan(src) {
		if !seg.expr {
			b.WriteString(seg.text)
			continue
		}
		out, err := r.Eval(seg.text)
		if err != nil {
			r.logger.Warn("placeholder evaluation failed",
				"expr", snippet(seg.text),
				"error", err,
			)
			continue
		}
		b.WriteString(format.Value(out))
	}
	return b.String()
}

// snippet truncates long sources for log records.
func snippet(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
