package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-graph/internal/graph"
	"github.com/pdiddy/citation-graph/internal/snapshot"
)

var topCmd = &cobra.Command{
	Use:   "top <arxiv-id>",
	Short: "Build a graph from a paper's top references and citations",
	Long: `Top fetches the seed paper from arXiv, keeps its N most-cited references and
its N most-cited citing papers from Semantic Scholar, completes their metadata,
and writes the resulting knowledge graph as top_citations_kg_<id>.`,
	Args: cobra.ExactArgs(1),
	RunE: runTop,
}

func init() {
	topCmd.Flags().IntP("top", "n", 5, "number of references and of citations to keep")
	topCmd.Flags().Bool("llm", false, "extract models, datasets and metrics with the LLM")

	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("top")
	if n < 0 {
		return fmt.Errorf("--top must not be negative")
	}
	useLLM, _ := cmd.Flags().GetBool("llm")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tax, err := loadTaxonomy(cfg.Taxonomy)
	if err != nil {
		return err
	}
	b, err := newBuilder(cfg, tax, useLLM)
	if err != nil {
		return err
	}

	doc, err := b.BuildTop(cmd.Context(), args[0], graph.TopOptions{TopN: n, LLM: useLLM})
	if err != nil {
		return err
	}

	paths, err := writeOutputs(cmd.Context(), cfg.Output, snapshot.TopBaseName(args[0]), doc, tax)
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}
