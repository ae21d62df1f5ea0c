package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nao1215/chartbook/internal/config"
	"github.com/nao1215/chartbook/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists and prunes render records stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [document-path]",
		Short: "List past renders recorded in the history database",
		Long: `History lists renders recorded by 'chartbook render'.

Each record holds the document path, report title, page and visual counts,
the number of diagnostics, the render duration, and the output format.
Records are listed newest first. Pass a document path to list only the
renders of that document (paths match as they were given to render).

Examples:
  # List the most recent renders
  chartbook history

  # List every recorded render
  chartbook history --limit 0

  # List renders of a single document
  chartbook history report.json

  # Keep the 20 most recent records, delete the rest
  chartbook history --prune 20

  # Output records in JSON format
  chartbook history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of records to list (0 lists all)")
	cmd.Flags().Int("prune", 0,
		"Delete all but the most recent N records (0 deletes all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output records in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	keep, err := cmd.Flags().GetInt("prune")
	if err != nil {
		return err
	}
	pruneMode := cmd.Flags().Changed("prune")

	var documentPath string
	if len(args) > 0 {
		documentPath = args[0]
	}
	if pruneMode && documentPath != "" {
		return errors.New("cannot combine --prune with a document path (prune acts on the whole history)")
	}

	// Use XDG data directory for the history database
	dbDir := config.XDGDataDir()

	store, err := history.Open(dbDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if pruneMode {
		return pruneHistory(ctx, store, keep)
	}
	return listHistory(ctx, store, documentPath, limit, jsonOutput)
}

// pruneHistory deletes old render records, keeping the most recent keep rows.
func pruneHistory(ctx context.Context, store *history.Store, keep int) error {
	deleted, err := store.Prune(ctx, keep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	remaining, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	fmt.Printf("Pruned %d render record(s), %d remaining.\n", deleted, remaining)
	return nil
}

// listHistory lists render records, optionally filtered to one document.
func listHistory(ctx context.Context, store *history.Store, documentPath string, limit int, jsonOutput bool) error {
	var records []history.Record
	var err error
	if documentPath != "" {
		records, err = store.ListByDocument(ctx, documentPath, limit)
	} else {
		records, err = store.List(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if jsonOutput {
		return outputHistoryJSON(records)
	}

	if len(records) == 0 {
		if documentPath != "" {
			fmt.Printf("No render history found for %s\n", documentPath)
		} else {
			fmt.Println("No render history found.")
		}
		fmt.Println("\nUse 'chartbook render <document>' to render a document and record it.")
		return nil
	}

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	if documentPath != "" {
		fmt.Printf("Render history for %s (%d renders):\n\n", documentPath, len(records))
	} else if len(records) < total {
		fmt.Printf("Render history (%d of %d renders):\n\n", len(records), total)
	} else {
		fmt.Printf("Render history (%d renders):\n\n", len(records))
	}

	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Format", "Render")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, rec := range records {
		fmt.Printf("  %-6d  %-20s  %-8s  %s\n",
			rec.ID,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Format,
			formatRenderSummary(rec, documentPath == ""),
		)
	}

	if documentPath == "" {
		fmt.Println("\nUse 'chartbook history <document-path>' to list renders of one document.")
	}

	return nil
}

// formatRenderSummary formats one render record as a single summary column.
// When withPath is true the document path leads the summary; the per-document
// listing already names the path in its header and shows the title instead.
func formatRenderSummary(rec history.Record, withPath bool) string {
	lead := rec.Title
	if withPath {
		lead = rec.DocumentPath
	}
	if lead == "" {
		lead = "(untitled)"
	}

	summary := fmt.Sprintf("%s: %d page(s), %d visual(s), %s",
		lead, rec.Pages, rec.Visuals, formatRenderDuration(rec.Duration))
	if rec.Warnings > 0 {
		summary += fmt.Sprintf(", %d warning(s)", rec.Warnings)
	}
	return summary
}

// formatRenderDuration formats a render duration for display.
// Sub-millisecond renders round up to 1ms so short runs stay readable.
func formatRenderDuration(d time.Duration) string {
	if d <= 0 {
		return "0ms"
	}
	if d < time.Millisecond {
		return "1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// renderRecordJSON is the JSON view of a render record.
type renderRecordJSON struct {
	// ID is the unique identifier of the render in the database.
	ID int64 `json:"id"`

	// DocumentPath is the path of the rendered document.
	DocumentPath string `json:"document_path"`

	// Title is the report title at render time.
	Title string `json:"title"`

	// Pages is the number of pages in the render model.
	Pages int `json:"pages"`

	// Visuals is the number of visuals across all pages.
	Visuals int `json:"visuals"`

	// Warnings is the number of diagnostics collected during the render.
	Warnings int `json:"warnings"`

	// DurationMS is the render duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Format is the output format that was written.
	Format string `json:"format"`

	// CreatedAt is when the render was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// outputHistoryJSON outputs render records in JSON format.
func outputHistoryJSON(records []history.Record) error {
	views := make([]renderRecordJSON, 0, len(records))
	for _, rec := range records {
		views = append(views, renderRecordJSON{
			ID:           rec.ID,
			DocumentPath: rec.DocumentPath,
			Title:        rec.Title,
			Pages:        rec.Pages,
			Visuals:      rec.Visuals,
			Warnings:     rec.Warnings,
			DurationMS:   rec.Duration.Milliseconds(),
			Format:       rec.Format,
			CreatedAt:    rec.CreatedAt,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(views)
}
