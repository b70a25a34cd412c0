package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-graph/internal/render"
	"github.com/pdiddy/citation-graph/internal/snapshot"
)

var renderCmd = &cobra.Command{
	Use:   "render <snapshot>",
	Short: "Render a saved graph snapshot as an HTML page",
	Long: `Render reads a JSON, YAML or SQLite snapshot and writes the interactive
ECharts page. Without -o the page is written next to the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output HTML path")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tax, err := loadTaxonomy(cfg.Taxonomy)
	if err != nil {
		return err
	}
	doc, err := snapshot.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".html"
	}
	if err := render.WriteHTML(out, doc, tax); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
