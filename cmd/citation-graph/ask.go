package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-graph/internal/qa"
	"github.com/pdiddy/citation-graph/internal/snapshot"
)

var askCmd = &cobra.Command{
	Use:   "ask <snapshot> [question]",
	Short: "Answer questions about a saved graph",
	Long: `Ask flattens a graph snapshot into plain-English facts and asks the LLM to
answer from those facts only. Without a question it starts an interactive
session; type "exit" to quit.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := snapshot.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	answerer, err := qa.New(cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("%w: set OPENAI_API_KEY or .secrets/openai-api-key", err)
	}

	out := cmd.OutOrStdout()
	if len(args) == 2 {
		answer, err := answerer.Ask(cmd.Context(), args[1], doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, answer)
		return nil
	}

	fmt.Fprintf(out, "Graph QA for %q. Type \"exit\" to quit.\n", doc.PaperMetadata.Title)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\n? ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(q, "exit") {
			return nil
		}
		if q == "" {
			continue
		}
		answer, err := answerer.Ask(cmd.Context(), q, doc)
		if err != nil {
			logger.Error("question failed", "err", err)
			continue
		}
		fmt.Fprintln(out, answer)
	}
}
