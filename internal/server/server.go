package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/chartbook/internal/document"
	"github.com/nao1215/chartbook/internal/pipeline"
	"github.com/nao1215/chartbook/internal/report"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Server renders one document on demand over HTTP. Every request loads
// the document from disk again, so edits show up on the next refresh.
type Server struct {
	// documentPath is the document rendered on each request.
	documentPath string

	// addr is the listen address for ListenAndServe.
	addr string

	// props are extra template properties merged over the document's own
	// metadata, exposed to expressions as props.<name>.
	props map[string]any

	// allowUnsafe lets unsafeJs template values execute. The caller makes
	// this trust decision per document before constructing the server.
	allowUnsafe bool

	// unsafeTimeout bounds a single unsafeJs evaluation. Zero keeps the
	// renderer's default.
	unsafeTimeout time.Duration

	// concurrency caps parallel dataset normalization per render.
	// Zero means one worker per CPU.
	concurrency int

	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. Defaults to 127.0.0.1:8417.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithLogger sets a custom logger for request and render diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProps sets extra template properties merged over the document's
// own metadata.
func WithProps(props map[string]any) Option {
	return func(s *Server) {
		s.props = props
	}
}

// WithUnsafeEnabled allows unsafeJs template values to execute.
func WithUnsafeEnabled(allow bool) Option {
	return func(s *Server) {
		s.allowUnsafe = allow
	}
}

// WithUnsafeTimeout bounds each unsafeJs evaluation.
func WithUnsafeTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.unsafeTimeout = d
		}
	}
}

// WithConcurrency caps parallel dataset normalization per render.
func WithConcurrency(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a Server for the given document path.
func New(documentPath string, opts ...Option) *Server {
	s := &Server{
		documentPath: documentPath,
		addr:         "127.0.0.1:8417",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler serving the rendered document.
// Exposed separately from ListenAndServe so tests can drive it without
// a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleReport)
	return mux
}

// ListenAndServe serves the document until the context is canceled or
// the listener fails. A canceled context drains in-flight requests and
// returns nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		// Defends against clients that open a connection and stall
		// before finishing their headers.
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("development server started",
		"addr", s.addr,
		"document", s.documentPath,
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// handleReport renders the document and writes the HTML page.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	page, err := s.render(r.Context())
	if err != nil {
		s.logger.Error("render failed",
			"document", s.documentPath,
			"error", err,
		)
		http.Error(w, fmt.Sprintf("render failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// The page changes whenever the document file does, so the browser
	// must ask again on every refresh.
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page)

	s.logger.Debug("request served",
		"document", s.documentPath,
		"bytes", len(page),
		"duration", time.Since(start),
	)
}

// render loads the document from disk and produces the HTML page.
func (s *Server) render(ctx context.Context) ([]byte, error) {
	doc, err := document.LoadFile(s.documentPath)
	if err != nil {
		return nil, err
	}
	for _, warn := range doc.Warnings {
		s.logger.Warn("document warning", "detail", warn)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(s.logger),
		pipeline.WithUnsafeEnabled(s.allowUnsafe),
		pipeline.WithReleaseCompressed(),
	}
	if s.unsafeTimeout > 0 {
		opts = append(opts, pipeline.WithUnsafeTimeout(s.unsafeTimeout))
	}
	if s.concurrency > 0 {
		opts = append(opts, pipeline.WithConcurrency(s.concurrency))
	}

	rm, err := pipeline.New(opts...).Run(ctx, doc.Data, doc.MergedProps(s.props))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := report.NewHTMLWriter(&buf).Write(rm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
