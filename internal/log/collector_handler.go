package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Diagnostic is one captured WARN or ERROR record.
type Diagnostic struct {
	// Time is when the record was logged.
	Time time.Time

	// Level is the record's severity, always WARN or above.
	Level slog.Level

	// Message is the record's message.
	Message string

	// Attrs holds the record's attributes, including any added through
	// Logger.With.
	Attrs []slog.Attr
}

// String formats the diagnostic as a single summary line.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Level.String())
	b.WriteString(" ")
	b.WriteString(d.Message)
	for _, a := range d.Attrs {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value.String())
	}
	return b.String()
}

// CollectorHandler wraps an slog.Handler to capture WARN and ERROR
// records into an in-memory list while forwarding records to the
// underlying handler. The list is the render's diagnostics summary:
// every degradation the pipeline contains instead of failing on.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Packages keep logging through plain *slog.Logger without knowing
//     a collector is attached
type CollectorHandler struct {
	// handler is the underlying slog handler that receives forwarded records.
	handler slog.Handler

	// state is shared across handlers derived via WithAttrs/WithGroup,
	// so captures land in one list regardless of which derivation logged.
	state *collectorState

	// attrs are the attributes accumulated through WithAttrs, replayed
	// onto captured diagnostics.
	attrs []slog.Attr
}

type collectorState struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// NewCollectorHandler creates a new CollectorHandler wrapping the given handler.
// If handler is nil, the returned CollectorHandler wraps slog.Default().Handler().
func NewCollectorHandler(handler slog.Handler) *CollectorHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CollectorHandler{
		handler: handler,
		state:   &collectorState{},
	}
}

// Enabled reports whether the handler handles records at the given level.
// WARN and above are always enabled so diagnostics are captured even when
// the underlying handler filters them out; below that it delegates.
func (h *CollectorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= slog.LevelWarn {
		return true
	}
	return h.handler.Enabled(ctx, level)
}

// Handle captures WARN+ records and forwards records the underlying
// handler accepts.
func (h *CollectorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		h.capture(r)
	}
	if !h.handler.Enabled(ctx, r.Level) {
		return nil
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added. The
// derived handler shares this handler's diagnostics list.
func (h *CollectorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CollectorHandler{
		handler: h.handler.WithAttrs(attrs),
		state:   h.state,
		attrs:   merged,
	}
}

// WithGroup returns a new handler with the given group name. The derived
// handler shares this handler's diagnostics list; captured attributes
// keep their flat keys.
func (h *CollectorHandler) WithGroup(name string) slog.Handler {
	return &CollectorHandler{
		handler: h.handler.WithGroup(name),
		state:   h.state,
		attrs:   h.attrs,
	}
}

func (h *CollectorHandler) capture(r slog.Record) {
	d := Diagnostic{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
	}
	d.Attrs = make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	d.Attrs = append(d.Attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		d.Attrs = append(d.Attrs, a)
		return true
	})

	h.state.mu.Lock()
	h.state.diagnostics = append(h.state.diagnostics, d)
	h.state.mu.Unlock()
}

// Diagnostics returns a copy of the captured records in log order.
func (h *CollectorHandler) Diagnostics() []Diagnostic {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	out := make([]Diagnostic, len(h.state.diagnostics))
	copy(out, h.state.diagnostics)
	return out
}

// Count returns the number of captured records.
func (h *CollectorHandler) Count() int {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return len(h.state.diagnostics)
}

// Reset clears the captured records, for reuse across renders.
func (h *CollectorHandler) Reset() {
	h.state.mu.Lock()
	h.state.diagnostics = nil
	h.state.mu.Unlock()
}

// NewLogger creates a new slog.Logger with an attached collector.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns the logger and the collector for reading diagnostics after a
// render.
func NewLogger(w io.Writer, verbose bool) (*slog.Logger, *CollectorHandler) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	collector := NewCollectorHandler(textHandler)

	return slog.New(collector), collector
}
