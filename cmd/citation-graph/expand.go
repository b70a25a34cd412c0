package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-graph/internal/graph"
	"github.com/pdiddy/citation-graph/internal/snapshot"
)

var expandCmd = &cobra.Command{
	Use:   "expand <arxiv-id>",
	Short: "Build a graph by expanding the citation network breadth-first",
	Long: `Expand starts at the seed paper and, level by level, adds the K most-cited
references and citations of every paper on arXiv until the depth limit. Each
paper is expanded at most once. The graph is written as
recursive_kg_<id>_k<K>_d<D>.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().IntP("top", "k", 5, "number of references and of citations kept per paper")
	expandCmd.Flags().IntP("depth", "d", 2, "maximum expansion depth")
	expandCmd.Flags().Bool("llm", false, "extract models, datasets and metrics with the LLM")

	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	k, _ := cmd.Flags().GetInt("top")
	depth, _ := cmd.Flags().GetInt("depth")
	if k < 0 || depth < 0 {
		return fmt.Errorf("--top and --depth must not be negative")
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

	doc, err := b.BuildRecursive(cmd.Context(), args[0], graph.RecursiveOptions{TopK: k, Depth: depth, LLM: useLLM})
	if err != nil {
		return err
	}

	paths, err := writeOutputs(cmd.Context(), cfg.Output, snapshot.RecursiveBaseName(args[0], k, depth), doc, tax)
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}
