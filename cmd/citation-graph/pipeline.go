package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/citation-graph/internal/arxiv"
	"github.com/pdiddy/citation-graph/internal/extract"
	"github.com/pdiddy/citation-graph/internal/graph"
	"github.com/pdiddy/citation-graph/internal/llm"
	"github.com/pdiddy/citation-graph/internal/metadata"
	"github.com/pdiddy/citation-graph/internal/render"
	"github.com/pdiddy/citation-graph/internal/scholar"
	"github.com/pdiddy/citation-graph/internal/snapshot"
	"github.com/pdiddy/citation-graph/internal/taxonomy"
	"github.com/pdiddy/citation-graph/pkg/types"
)

const defaultUserAgent = "citation-graph/0.1"

func loadTaxonomy(cfg types.TaxonomyConfig) (*taxonomy.Taxonomy, error) {
	return taxonomy.LoadDefault(cfg.Path, taxonomy.Options{
		Default: cfg.Default,
		Aliases: cfg.Aliases,
	})
}

// newBuilder wires the arXiv and Semantic Scholar clients, the metadata
// completer and, when withLLM is set and a key is configured, the LLM
// extractor.
func newBuilder(cfg types.PipelineConfig, tax *taxonomy.Taxonomy, withLLM bool) (*graph.Builder, error) {
	ax := arxiv.New(cfg.Arxiv, logger)
	s2 := scholar.New(cfg.Scholar, logger)

	b := &graph.Builder{
		Metadata:  ax,
		Citations: s2,
		Completer: metadata.New(ax, s2, cfg.Completion.Delay, logger),
		Taxonomy:  tax,
		Log:       logger,
	}
	if !withLLM {
		return b, nil
	}

	ex, err := extract.NewChat(cfg.AI, tax.PromptTypes(), logger)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn("LLM extraction skipped: set OPENAI_API_KEY or .secrets/openai-api-key")
	case err != nil:
		return nil, err
	default:
		b.Extractor = ex
	}
	return b, nil
}

// writeOutputs persists doc under base in every configured format and
// renders the HTML page when enabled. It returns the written paths.
func writeOutputs(ctx context.Context, cfg types.OutputConfig, base string, doc *types.GraphDocument, tax *taxonomy.Taxonomy) ([]string, error) {
	paths, err := snapshot.Write(ctx, cfg.Dir, base, cfg.Formats, doc)
	if err != nil {
		return paths, fmt.Errorf("writing snapshot: %w", err)
	}
	if cfg.HTML {
		page := filepath.Join(cfg.Dir, base+".html")
		if err := render.WriteHTML(page, doc, tax); err != nil {
			return paths, err
		}
		paths = append(paths, page)
	}
	return paths, nil
}
