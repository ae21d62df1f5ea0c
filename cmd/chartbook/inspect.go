package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nao1215/chartbook/internal/dataset"
	"github.com/nao1215/chartbook/internal/document"
	chartlog "github.com/nao1215/chartbook/internal/log"
	"github.com/nao1215/chartbook/internal/model"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [document]",
		Short: "Print the structure of a report document without rendering it",
		Long: `Inspect loads a report document and prints its structure: pages with
their visuals, and every dataset with its format, columns, row count and
normalization diagnostics.

No report is written and no template expression is evaluated, so inspect
is safe to run on untrusted documents.

Examples:
  # Inspect a document
  chartbook inspect report.json

  # Inspect an HTML page carrying an embedded document
  chartbook inspect dashboard.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInspectCmd,
	}
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no document specified: provide a document path")
	}

	verbose := getVerboseFlag(cmd)
	logger, _ := chartlog.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	return runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], logger)
}

// runInspect loads and describes one document.
func runInspect(ctx context.Context, w io.Writer, path string, logger *slog.Logger) error {
	doc, err := document.LoadFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Document: %s\n", path)
	if title, ok := doc.Props["title"].(string); ok {
		fmt.Fprintf(w, "Title: %s\n", title)
	}
	fmt.Fprintf(w, "Pages: %d   Visuals: %d   Datasets: %d\n",
		len(doc.Data.Pages), doc.Data.VisualCount(), len(doc.Data.Datasets))

	for _, warn := range doc.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}

	store := dataset.NewStore(doc.Data.Datasets, dataset.WithStoreLogger(logger))
	if err := store.NormalizeAll(ctx); err != nil {
		return err
	}

	if len(doc.Data.Datasets) > 0 {
		fmt.Fprintf(w, "\nDatasets:\n")
		for _, id := range store.IDs() {
			describeDataset(w, store, doc.Data.Datasets[id], id)
		}
	}

	if len(doc.Data.Pages) > 0 {
		fmt.Fprintf(w, "\nPages:\n")
		for i := range doc.Data.Pages {
			describePage(w, &doc.Data.Pages[i], i)
		}
	}
	return nil
}

// describeDataset prints one dataset's declared format and normalized shape.
func describeDataset(w io.Writer, store *dataset.Store, ds *model.Dataset, id string) {
	format := "unknown"
	if ds != nil {
		format = string(ds.Format)
		if ds.HasCompressedPayload() {
			format += " (compressed)"
		}
	}

	t, err := store.Table(id)
	if err != nil {
		fmt.Fprintf(w, "  %-20s %-20s ! %v\n", id, format, err)
		return
	}

	fmt.Fprintf(w, "  %-20s %-20s %d columns x %d rows\n", id, format, t.NumCols(), t.NumRows())
	if len(t.Columns) > 0 {
		cols := make([]string, 0, len(t.Columns))
		for i, name := range t.Columns {
			dt := "auto"
			if i < len(t.DTypes) && t.DTypes[i] != model.DTypeAuto {
				dt = string(t.DTypes[i])
			}
			cols = append(cols, fmt.Sprintf("%s (%s)", name, dt))
		}
		fmt.Fprintf(w, "      columns: %s\n", strings.Join(cols, ", "))
	}
	for _, warn := range t.Warnings {
		fmt.Fprintf(w, "      ! %s\n", warn)
	}
}

// describePage prints one page heading and its visual tree.
func describePage(w io.Writer, page *model.ReportPage, index int) {
	title := page.Title
	if title == "" {
		title = "(untitled)"
	}
	count := 0
	for i := range page.Rows {
		count += countVisuals(&page.Rows[i])
	}
	fmt.Fprintf(w, "  %d. %s: %d visual(s)\n", index+1, title, count)

	for i := range page.Rows {
		describeNode(w, &page.Rows[i], 2)
	}
}

// describeNode prints one layout node, recursing through containers.
func describeNode(w io.Writer, n *model.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	if n.Visual != nil {
		line := fmt.Sprintf("%s[%s]", indent, n.Visual.Type)
		if title := visualTitle(n.Visual); title != "" {
			line += fmt.Sprintf(" %q", title)
		}
		if n.Visual.DatasetID != "" {
			line += " dataset=" + n.Visual.DatasetID
		}
		fmt.Fprintln(w, line)
		return
	}

	fmt.Fprintf(w, "%s[%s]\n", indent, n.Direction)
	for i := range n.Children {
		describeNode(w, &n.Children[i], depth+1)
	}
}

// visualTitle extracts a visual's title when it is a plain string.
// Template and expression titles need evaluation, which inspect
// deliberately never performs.
func visualTitle(v *model.Visual) string {
	var head struct {
		Title model.TemplateValue `json:"title"`
	}
	if err := json.Unmarshal(v.Config, &head); err != nil {
		return ""
	}
	if head.Title.Kind != model.KindPlain {
		return ""
	}
	return head.Title.Source
}

// countVisuals counts the visuals in one layout subtree.
func countVisuals(n *model.Node) int {
	if n.Visual != nil {
		return 1
	}
	total := 0
	for i := range n.Children {
		total += countVisuals(&n.Children[i])
	}
	return total
}
