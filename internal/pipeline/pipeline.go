package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/model"
	"github.com/nao1215/chartbook/internal/template"
	"github.com/nao1215/chartbook/internal/visual"
	"golang.org/x/sync/errgroup"
)

// Pipeline turns a decoded document into a RenderModel. The stages are
// fixed: normalize every dataset, build a template renderer over the
// normalized store, then derive every page.
//
// Design decision: failures below the document level never abort a
// run. A corrupt dataset, a dangling reference or an invalid visual
// configuration degrades exactly the visuals that depend on it to an
// empty state carrying a reason, and every such degradation is logged.
// Run itself fails only for a nil document or a canceled context.
type Pipeline struct {
	logger        *slog.Logger
	now           time.Time
	concurrency   int
	allowUnsafe   bool
	unsafeTimeout time.Duration
	release       bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for render diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNow pins the clock used for due-date classification. The zero
// value means the wall clock is read once at the start of each run.
func WithNow(now time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithUnsafeEnabled allows documents to evaluate unsafeJs template
// values. Off by default: enabling is a per-document trust decision
// made by the caller.
func WithUnsafeEnabled(allow bool) Option {
	return func(p *Pipeline) {
		p.allowUnsafe = allow
	}
}

// WithUnsafeTimeout bounds each unsafeJs evaluation.
func WithUnsafeTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.unsafeTimeout = d
	}
}

// WithConcurrency caps the number of datasets normalized and pages
// built simultaneously. Default is the number of CPUs.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithReleaseCompressed erases each dataset's compressed payload after
// expansion to cut the peak memory of large documents.
func WithReleaseCompressed() Option {
	return func(p *Pipeline) {
		p.release = true
	}
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Run derives the render model for one document. props carries the
// display metadata and the values exposed to template expressions as
// props.<name>; a nil map is fine.
func (p *Pipeline) Run(ctx context.Context, doc *model.ApplicationData, props map[string]any) (*RenderModel, error) {
	if doc == nil {
		return nil, errors.New("pipeline: nil document")
	}

	now := p.now
	if now.IsZero() {
		now = time.Now()
	}

	start := time.Now()
	p.logger.Info("render started",
		"pages", len(doc.Pages),
		"datasets", len(doc.Datasets),
		"visuals", doc.VisualCount(),
	)

	store := dataset.NewStore(doc.Datasets, p.storeOptions()...)
	if err := store.NormalizeAll(ctx); err != nil {
		return nil, err
	}
	for _, w := range store.Warnings() {
		p.logger.Warn("dataset warning", "detail", w)
	}

	renderer := template.NewRenderer(store, p.templateOptions(props)...)

	rm := &RenderModel{
		Title:       stringProp(props, "title"),
		Description: stringProp(props, "description"),
		Author:      stringProp(props, "author"),
		LastUpdated: stringProp(props, "lastUpdated"),
		Pages:       make([]PageModel, len(doc.Pages)),
	}

	// Pages are independent; each goroutine writes only its own index,
	// so the page order of the document is preserved regardless of
	// completion order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range doc.Pages {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rm.Pages[i] = p.buildPage(&doc.Pages[i], renderer, store, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Info("render finished",
		"pages", len(rm.Pages),
		"visuals", rm.VisualCount(),
		"empty", rm.EmptyCount(),
		"duration", time.Since(start),
	)
	return rm, nil
}

// buildPage derives one page. Page titles and descriptions pass
// through the template renderer, so they may carry placeholders.
func (p *Pipeline) buildPage(page *model.ReportPage, r *template.Renderer, store *dataset.Store, now time.Time) PageModel {
	pm := PageModel{
		Title:       r.Render(model.Plain(page.Title)),
		Description: r.Render(model.Plain(page.Description)),
		LastUpdated: page.LastUpdated,
		Rows:        make([]NodeModel, 0, len(page.Rows)),
	}
	for i := range page.Rows {
		pm.Rows = append(pm.Rows, p.buildNode(&page.Rows[i], r, store, now))
	}
	return pm
}

// buildNode converts one layout node, recursing through containers.
func (p *Pipeline) buildNode(n *model.Node, r *template.Renderer, store *dataset.Store, now time.Time) NodeModel {
	if n.Visual != nil {
		return NodeModel{Visual: p.buildVisual(n.Visual, r, store, now)}
	}
	nm := NodeModel{
		Direction: string(n.Direction),
		Children:  make([]NodeModel, 0, len(n.Children)),
	}
	for i := range n.Children {
		nm.Children = append(nm.Children, p.buildNode(&n.Children[i], r, store, now))
	}
	return nm
}

// buildVisual assembles the per-visual context and delegates to the
// family builder. Dataset failures become the visual's empty state.
func (p *Pipeline) buildVisual(v *model.Visual, r *template.Renderer, store *dataset.Store, now time.Time) *visual.Model {
	vctx := &visual.Context{
		Now:    now,
		Render: r.Render,
	}
	if v.DatasetID != "" {
		t, err := store.Table(v.DatasetID)
		if err != nil {
			vctx.DataReason = dataReason(v.DatasetID, err)
			p.logger.Warn("visual dataset unavailable",
				"visual", v.Type,
				"dataset", v.DatasetID,
				"error", err,
			)
		} else {
			vctx.Table = t
		}
	}

	m := visual.Build(v, vctx)
	if m.Empty != nil {
		p.logger.Warn("visual rendered empty",
			"visual", v.Type,
			"reason", m.Empty.Reason,
		)
	}
	return m
}

// dataReason translates a store error into the reason shown inside the
// affected visual's empty state.
func dataReason(id string, err error) string {
	switch {
	case errors.Is(err, dataset.ErrUnresolvedDataset):
		return fmt.Sprintf("dataset %q not found", id)
	case errors.Is(err, dataset.ErrCorruptDataset):
		return fmt.Sprintf("dataset %q could not be decoded", id)
	default:
		return fmt.Sprintf("dataset %q unavailable", id)
	}
}

func (p *Pipeline) storeOptions() []dataset.StoreOption {
	opts := []dataset.StoreOption{
		dataset.WithStoreLogger(p.logger),
		dataset.WithConcurrency(p.concurrency),
	}
	if p.release {
		opts = append(opts, dataset.WithReleaseCompressed())
	}
	return opts
}

func (p *Pipeline) templateOptions(props map[string]any) []template.Option {
	opts := []template.Option{
		template.WithLogger(p.logger),
		template.WithUnsafeEnabled(p.allowUnsafe),
	}
	if props != nil {
		opts = append(opts, template.WithProps(props))
	}
	if p.unsafeTimeout > 0 {
		opts = append(opts, template.WithUnsafeTimeout(p.unsafeTimeout))
	}
	return opts
}

// stringProp reads an optional display string from the props mapping.
func stringProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}
