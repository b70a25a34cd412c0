package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-graph/internal/cite"
	"github.com/pdiddy/citation-graph/internal/snapshot"
)

var citeCmd = &cobra.Command{
	Use:   "cite <snapshot>",
	Short: "Print the papers of a saved graph as a CSL bibliography",
	Long: `Cite reads a graph snapshot and prints the seed and related papers as
CSL-YAML (default) or CSL-JSON, ready for Pandoc or a reference manager.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := snapshot.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return cite.WriteJSON(cmd.OutOrStdout(), doc)
		}
		return cite.WriteYAML(cmd.OutOrStdout(), doc)
	},
}

func init() {
	citeCmd.Flags().Bool("json", false, "output CSL-JSON instead of CSL-YAML")

	rootCmd.AddCommand(citeCmd)
}
