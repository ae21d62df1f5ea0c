package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/chartbook/internal/config"
	chartlog "github.com/nao1215/chartbook/internal/log"
	"github.com/nao1215/chartbook/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [document]",
		Short: "Serve a report document over HTTP during development",
		Long: `Serve starts a local development server for one report document.

The document is re-loaded and re-rendered on every request, so edits show
up on the next browser refresh without restarting the server. The server
binds to loopback by default and is not meant to face a network.

Examples:
  # Serve report.json at http://127.0.0.1:8417
  chartbook serve report.json

  # Serve on a different port
  chartbook serve --addr 127.0.0.1:9000 report.json

  # Honor the document's unsafeJs expressions while developing it
  chartbook serve --unsafe report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServeAddr,
		"Listen address for the development server")
	cmd.Flags().BoolP("unsafe", "u", false,
		"Allow unsafeJs template values, regardless of document trust")
	cmd.Flags().Duration("unsafe-timeout", config.DefaultUnsafeTimeout,
		"Time limit for a single unsafeJs evaluation")
	cmd.Flags().Int("concurrency", 0,
		"Maximum datasets normalized in parallel per render (0 = one per CPU)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .chartbook in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildServeConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.DocumentPath == "" {
		return config.ErrNoDocument
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// The server must be able to find the document before listening,
	// so a typo fails immediately instead of on the first request.
	if _, err := os.Stat(cfg.DocumentPath); err != nil {
		return fmt.Errorf("document not found: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger, _ := chartlog.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Serve until interrupted
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docCfg := cfg.DocumentConfig(cfg.DocumentPath)
	srv := server.New(cfg.DocumentPath,
		server.WithAddr(cfg.ServeAddr),
		server.WithLogger(logger),
		server.WithProps(docCfg.Props),
		server.WithUnsafeEnabled(cfg.AllowUnsafe(cfg.DocumentPath)),
		server.WithUnsafeTimeout(cfg.UnsafeTimeout),
		server.WithConcurrency(cfg.Concurrency),
	)

	fmt.Printf("Serving %s at http://%s\n", cfg.DocumentPath, srv.Addr())
	fmt.Println("Press Ctrl+C to stop.")

	return srv.ListenAndServe(ctx)
}

// buildServeConfig creates a Config from the serve command flags.
func buildServeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if len(args) > 0 {
		cfg.DocumentPath = args[0]
	}

	var err error

	cfg.ServeAddr, err = cmd.Flags().GetString("addr")
	if err != nil {
		return nil, err
	}

	cfg.Unsafe, err = cmd.Flags().GetBool("unsafe")
	if err != nil {
		return nil, err
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

	return cfg, nil
}
