package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewInspectCmd tests the inspect command creation.
func TestNewInspectCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInspectCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "inspect [document]" {
			t.Errorf("expected use 'inspect [document]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})
}

// TestRunInspectCmd tests the inspect command execution.
func TestRunInspectCmd(t *testing.T) {
	t.Run("describes document structure", func(t *testing.T) {
		tmpDir := t.TempDir()
		docPath := writeRenderTestDocument(t, tmpDir)

		var buf bytes.Buffer
		rootCmd := NewRootCmd()
		rootCmd.SetOut(&buf)
		rootCmd.SetArgs([]string{"inspect", docPath})

		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Document: "+docPath) {
			t.Error("expected document path in output")
		}
		if !strings.Contains(output, "Pages: 1   Visuals: 2   Datasets: 1") {
			t.Errorf("expected structure summary, got:\n%s", output)
		}
		if !strings.Contains(output, "Quarterly Sales: 2 visual(s)") {
			t.Errorf("expected page heading, got:\n%s", output)
		}
		if !strings.Contains(output, "columns: Month (string), Sales (number)") {
			t.Errorf("expected dataset columns, got:\n%s", output)
		}
		if !strings.Contains(output, "2 columns x 2 rows") {
			t.Errorf("expected dataset shape, got:\n%s", output)
		}
		if !strings.Contains(output, `[kpi] "Total Sales" dataset=sales`) {
			t.Errorf("expected kpi description, got:\n%s", output)
		}
		if !strings.Contains(output, `[table] "Raw Data" dataset=sales`) {
			t.Errorf("expected table description, got:\n%s", output)
		}
	})

	t.Run("describes HTML-embedded document", func(t *testing.T) {
		tmpDir := t.TempDir()
		docPath := filepath.Join(tmpDir, "report.html")

		page := `<!DOCTYPE html>
<html>
<head><title>Embedded Report</title></head>
<body>
<script id="chartbook-data" type="application/json">` + testRenderDocument + `</script>
</body>
</html>`
		if err := os.WriteFile(docPath, []byte(page), 0600); err != nil {
			t.Fatalf("failed to write test document: %v", err)
		}

		var buf bytes.Buffer
		rootCmd := NewRootCmd()
		rootCmd.SetOut(&buf)
		rootCmd.SetArgs([]string{"inspect", docPath})

		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Title: Embedded Report") {
			t.Errorf("expected carrier page title, got:\n%s", output)
		}
		if !strings.Contains(output, "Pages: 1   Visuals: 2   Datasets: 1") {
			t.Errorf("expected structure summary, got:\n%s", output)
		}
	})

	t.Run("returns error when no document given", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"inspect"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing document")
		}
		if !strings.Contains(err.Error(), "no document specified") {
			t.Errorf("expected 'no document specified' error, got %v", err)
		}
	})

	t.Run("returns error for missing document file", func(t *testing.T) {
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"inspect", filepath.Join(t.TempDir(), "missing.json")})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing document file")
		}
	})
}
