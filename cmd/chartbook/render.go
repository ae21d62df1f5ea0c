package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/chartbook/internal/config"
	"github.com/nao1215/chartbook/internal/document"
	"github.com/nao1215/chartbook/internal/history"
	chartlog "github.com/nao1215/chartbook/internal/log"
	"github.com/nao1215/chartbook/internal/pipeline"
	"github.com/nao1215/chartbook/internal/report"
	"github.com/spf13/cobra"
)

// nowFormats are the accepted spellings of the --now flag.
var nowFormats = []string{time.RFC3339, "2006-01-02"}

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a report document to HTML, Markdown, or JSON",
		Long: `Render loads a report document, derives every visual, and writes the report.

The document is either a raw JSON report or an HTML page carrying the
report in a <script id="chartbook-data"> element. The default output is a
single self-contained HTML page; --format selects Markdown or the raw
JSON render model instead.

Failures inside the document never abort the render: a corrupt dataset, a
dangling reference or a bad placeholder degrades exactly the affected
visuals to an explicit empty state, and a diagnostics summary is printed
after the render.

Examples:
  # Render report.json to report.html
  chartbook render report.json

  # Render to Markdown on standard output
  chartbook render --format markdown --output - report.json

  # Allow the document's embedded unsafeJs expressions for this run
  chartbook render --unsafe report.json

  # Pin the clock so due-date classification is reproducible
  chartbook render --now 2026-03-15 report.json

Configuration file (.chartbook) example:
  defaults:
    props:
      org: "Acme Corp"
  documents:
    dashboards/trusted.json:
      allowUnsafe: true
      props:
        region: "EMEA"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRenderCmd,
	}

	// Report flags
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Report output format: html, markdown, or json")
	cmd.Flags().StringP("output", "o", "",
		`Report destination ("-" for standard output; default derives from the document path)`)
	cmd.Flags().Bool("pretty", false,
		"Indent JSON output (only meaningful with --format json)")

	// Evaluation flags
	cmd.Flags().BoolP("unsafe", "u", false,
		"Allow unsafeJs template values for this run, regardless of document trust")
	cmd.Flags().String("now", "",
		"Pin the render clock (RFC 3339 or YYYY-MM-DD) for reproducible output")
	cmd.Flags().Duration("unsafe-timeout", config.DefaultUnsafeTimeout,
		"Time limit for a single unsafeJs evaluation")
	cmd.Flags().Int("concurrency", 0,
		"Maximum datasets normalized and pages derived in parallel (0 = one per CPU)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .chartbook in current or home directory)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Skip recording this render in the history database")

	return cmd
}

// runRenderCmd executes the render command.
func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRenderConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with the diagnostics collector
	verbose := getVerboseFlag(cmd)
	logger, collector := chartlog.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runRender(ctx, cfg, logger, collector)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildRenderConfig creates a Config from cobra command flags.
func buildRenderConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if len(args) > 0 {
		cfg.DocumentPath = args[0]
	}

	var err error

	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Pretty, err = cmd.Flags().GetBool("pretty")
	if err != nil {
		return nil, err
	}

	cfg.Unsafe, err = cmd.Flags().GetBool("unsafe")
	if err != nil {
		return nil, err
	}

	now, err := cmd.Flags().GetString("now")
	if err != nil {
		return nil, err
	}
	if now != "" {
		cfg.Now, err = parseNow(now)
		if err != nil {
			return nil, err
		}
	}

	cfg.UnsafeTimeout, err = cmd.Flags().GetDuration("unsafe-timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := loadDocumentsFile(cfg); err != nil {
		return nil, err
	}

	cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	// History lives in the XDG data directory
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// loadDocumentsFile loads the per-document settings from the config file.
// If the user explicitly specified a config file path, a missing file is an
// error; otherwise a missing file silently yields an empty configuration.
func loadDocumentsFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Documents = file
		return nil
	}
	if explicit {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	cfg.Documents = &config.File{Documents: make(map[string]config.DocumentConfig)}
	return nil
}

// parseNow parses the --now flag value.
func parseNow(s string) (time.Time, error) {
	for _, layout := range nowFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --now value %q (use RFC 3339 or YYYY-MM-DD)", s)
}

// runRender executes the render.
func runRender(ctx context.Context, cfg *config.Config, logger *slog.Logger, collector *chartlog.CollectorHandler) error {
	start := time.Now()

	doc, err := document.LoadFile(cfg.DocumentPath)
	if err != nil {
		return err
	}
	for _, warn := range doc.Warnings {
		logger.Warn("document warning", "detail", warn)
	}

	// Per-document settings from the config file: trust and extra props.
	docCfg := cfg.DocumentConfig(cfg.DocumentPath)
	props := doc.MergedProps(docCfg.Props)

	allowUnsafe := cfg.AllowUnsafe(cfg.DocumentPath)
	if allowUnsafe {
		logger.Info("unsafeJs evaluation enabled", "document", cfg.DocumentPath)
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithNow(cfg.Now),
		pipeline.WithUnsafeEnabled(allowUnsafe),
		pipeline.WithUnsafeTimeout(cfg.UnsafeTimeout),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithReleaseCompressed(),
	)

	rm, err := p.Run(ctx, doc.Data, props)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	outputPath, err := writeReport(cfg, rm)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	if outputPath != "" {
		fmt.Printf("Report written to %s (%s)\n", outputPath, elapsed.Round(time.Millisecond))
	}

	printDiagnostics(collector)

	if err := saveRenderRecord(ctx, cfg, rm, collector.Count(), elapsed, logger); err != nil {
		logger.Error("failed to save render record", "error", err)
	}
	return nil
}

// writeReport writes the render model in the configured format and
// returns the output path, or "" when the report went to standard output.
func writeReport(cfg *config.Config, rm *pipeline.RenderModel) (string, error) {
	if cfg.OutputPath == "-" {
		_, err := newReportWriter(cfg, os.Stdout).Write(rm)
		return "", err
	}

	outputPath, err := resolveOutputPath(cfg)
	if err != nil {
		return "", err
	}

	// Create directories if they don't exist
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may embed business data, so keep them owner-readable only
	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := newReportWriter(cfg, f).Write(rm); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return outputPath, nil
}

// newReportWriter selects the report writer for the configured format.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch cfg.Format {
	case config.FormatMarkdown:
		return report.NewMarkdownWriter(out)
	case config.FormatJSON:
		if cfg.Pretty {
			return report.NewJSONWriter(out, report.WithPrettyPrint())
		}
		return report.NewJSONWriter(out)
	default:
		return report.NewHTMLWriter(out)
	}
}

// resolveOutputPath returns the report destination. When --output is not
// given, the path derives from the document path with the format's
// extension; a derived path that would overwrite the document itself is
// refused rather than silently clobbering the input.
func resolveOutputPath(cfg *config.Config) (string, error) {
	if cfg.OutputPath != "" {
		return cfg.OutputPath, nil
	}

	docPath := filepath.Clean(cfg.DocumentPath)
	stem := strings.TrimSuffix(docPath, filepath.Ext(docPath))
	derived := stem + formatExtension(cfg.Format)
	if derived == docPath {
		return "", fmt.Errorf("derived output path %s would overwrite the document; pass --output", derived)
	}
	return derived, nil
}

// formatExtension returns the file extension for a report format.
func formatExtension(format string) string {
	switch format {
	case config.FormatMarkdown:
		return ".md"
	case config.FormatJSON:
		return ".json"
	default:
		return ".html"
	}
}

// printDiagnostics prints the render's collected diagnostics to stderr.
func printDiagnostics(collector *chartlog.CollectorHandler) {
	diags := collector.Diagnostics()
	if len(diags) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "\n%d diagnostic(s):\n", len(diags))
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "  - %s\n", d)
	}
}

// saveRenderRecord records the completed render in the history database.
// A history failure never fails the render; the report is already written.
func saveRenderRecord(ctx context.Context, cfg *config.Config, rm *pipeline.RenderModel, warnings int, elapsed time.Duration, logger *slog.Logger) error {
	if cfg.NoHistory {
		return nil
	}

	db, err := history.Open(cfg.DBDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	rec := &history.Record{
		DocumentPath: cfg.DocumentPath,
		Title:        rm.Title,
		Pages:        len(rm.Pages),
		Visuals:      rm.VisualCount(),
		Warnings:     warnings,
		Duration:     elapsed,
		Format:       cfg.Format,
	}
	if _, err := db.Insert(ctx, rec); err != nil {
		return fmt.Errorf("failed to record render: %w", err)
	}

	logger.Debug("render recorded",
		"document", cfg.DocumentPath,
		"pages", rec.Pages,
		"visuals", rec.Visuals,
	)
	return nil
}
