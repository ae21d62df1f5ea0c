package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/report.json templates/chartbook.yaml
var starterTemplates embed.FS

// Default output file names for the init command.
const (
	starterDocumentName = "report.json"
	configFileName      = ".chartbook"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter report document",
		Long: `Init creates a starter report document in the current directory.

The generated document has one page with KPIs, charts, a checklist and a
table, all bound to small embedded datasets, so it renders immediately:

  chartbook init
  chartbook render report.json

With --config, init instead writes a .chartbook configuration file with
commented examples of per-document trust and props settings.

Examples:
  # Create report.json in the current directory
  chartbook init

  # Create a starter document at a specific path
  chartbook init -o dashboards/report.json

  # Create a .chartbook configuration file instead
  chartbook init --config

  # Force overwrite an existing file
  chartbook init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output file path (default: report.json, or .chartbook with --config)")
	cmd.Flags().Bool("config", false,
		"Write a .chartbook configuration file instead of a starter document")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite an existing file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	configMode, err := cmd.Flags().GetBool("config")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	templateName := "templates/report.json"
	if configMode {
		templateName = "templates/chartbook.yaml"
	}
	if outputPath == "" {
		outputPath = starterDocumentName
		if configMode {
			outputPath = configFileName
		}
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := starterTemplates.ReadFile(templateName)
	if err != nil {
		return fmt.Errorf("failed to read starter template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Printf("Created %s\n", outputPath)
	if configMode {
		fmt.Println("\nEdit this file to configure per-document settings such as:")
		fmt.Println("  - Trust entries allowing unsafeJs template values")
		fmt.Println("  - Extra template props merged into every render")
	} else {
		fmt.Println("\nRender it with:")
		fmt.Printf("  chartbook render %s\n", outputPath)
		fmt.Println("\nOr serve it during editing with:")
		fmt.Printf("  chartbook serve %s\n", outputPath)
	}

	return nil
}
