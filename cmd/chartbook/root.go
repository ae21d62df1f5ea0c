// Package main provides the entry point for the chartbook CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for chartbook.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chartbook",
		Short: "Render data-driven HTML reports from JSON documents",
		Long: `Chartbook turns a JSON report document into a self-contained HTML page.
A document describes pages, layouts and visuals (KPIs, charts, tables,
checklists), each bound to datasets embedded in the document itself.

Documents may embed scripted template values (unsafeJs). Those never run
unless you pass --unsafe or mark the document trusted in the .chartbook
configuration file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
