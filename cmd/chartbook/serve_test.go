package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/chartbook/internal/config"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve [document]" {
			t.Errorf("expected use 'serve [document]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has addr flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("addr")
		if flag == nil {
			t.Fatal("expected addr flag")
		}
		if flag.Shorthand != "a" {
			t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultServeAddr {
			t.Errorf("expected default %q, got %q", config.DefaultServeAddr, flag.DefValue)
		}
	})

	t.Run("has unsafe flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("unsafe")
		if flag == nil {
			t.Fatal("expected unsafe flag")
		}
		if flag.Shorthand != "u" {
			t.Errorf("expected shorthand 'u', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has unsafe-timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("unsafe-timeout")
		if flag == nil {
			t.Fatal("expected unsafe-timeout flag")
		}
		if flag.DefValue != config.DefaultUnsafeTimeout.String() {
			t.Errorf("expected default %q, got %q", config.DefaultUnsafeTimeout.String(), flag.DefValue)
		}
	})

	t.Run("has concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("concurrency")
		if flag == nil {
			t.Fatal("expected concurrency flag")
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})
}

// TestBuildServeConfig tests configuration building from flags.
func TestBuildServeConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewServeCmd()
		cfg, err := buildServeConfig(cmd, []string{"report.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.DocumentPath != "report.json" {
			t.Errorf("expected document 'report.json', got %q", cfg.DocumentPath)
		}
		if cfg.ServeAddr != config.DefaultServeAddr {
			t.Errorf("expected addr %q, got %q", config.DefaultServeAddr, cfg.ServeAddr)
		}
		if cfg.Unsafe {
			t.Error("expected Unsafe to be false")
		}
	})

	t.Run("builds config with custom addr", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("addr", "127.0.0.1:9000")
		cfg, err := buildServeConfig(cmd, []string{"report.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ServeAddr != "127.0.0.1:9000" {
			t.Errorf("expected addr '127.0.0.1:9000', got %q", cfg.ServeAddr)
		}
	})

	t.Run("builds config with unsafe flag", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("unsafe", "true")
		cfg, err := buildServeConfig(cmd, []string{"report.json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.AllowUnsafe("report.json") {
			t.Error("expected AllowUnsafe to be true with --unsafe")
		}
	})
}

// TestRunServeCmdErrors tests serve command failures before listening.
func TestRunServeCmdErrors(t *testing.T) {
	t.Run("returns error when no document given", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"serve"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing document")
		}
		if !errors.Is(err, config.ErrNoDocument) {
			t.Errorf("expected ErrNoDocument, got %v", err)
		}
	})

	t.Run("returns error for missing document file", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"serve", filepath.Join(t.TempDir(), "missing.json")})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing document file")
		}
		if !strings.Contains(err.Error(), "document not found") {
			t.Errorf("expected 'document not found' error, got %v", err)
		}
	})
}
