package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the valid entity types of the taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tax, err := loadTaxonomy(cfg.Taxonomy)
		if err != nil {
			return err
		}

		if prompt, _ := cmd.Flags().GetBool("prompt"); prompt {
			fmt.Fprintln(cmd.OutOrStdout(), tax.PromptTypes())
			return nil
		}
		for _, t := range tax.AllowedTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

func init() {
	typesCmd.Flags().Bool("prompt", false, "print only the types offered to the LLM")

	rootCmd.AddCommand(typesCmd)
}
