// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds the knowledge graph around a seed paper. A one-shot
// build takes the seed's top references and citations; a recursive build
// expands the citation network breadth-first up to a depth. Both complete
// paper metadata, emit paper and author entities with authorship and
// citation edges, and optionally merge LLM-extracted triples.
package graph

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/citation-graph/internal/extract"
	"github.com/pdiddy/citation-graph/internal/metadata"
	"github.com/pdiddy/citation-graph/internal/taxonomy"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// ErrSeedFetch means the seed paper could not be fetched. It is the only
// failure that aborts a build.
var ErrSeedFetch = errors.New("seed paper fetch failed")

// MetadataSource looks up a paper by arXiv id.
type MetadataSource interface {
	Paper(ctx context.Context, arxivID string) (*types.Paper, error)
}

// CitationSource returns the top-ranked neighbours of an arXiv paper.
type CitationSource interface {
	TopRelated(ctx context.Context, arxivID string, k int) (types.Related, error)
}

// Completer fills missing abstracts and authors in place.
type Completer interface {
	Complete(ctx context.Context, papers []*types.Paper) (metadata.Summary, error)
}

// Extractor proposes entities and triples for one paper.
type Extractor interface {
	Extract(ctx context.Context, p *types.Paper) (extract.Result, error)
}

// Builder orchestrates graph builds. Completer and Extractor are optional;
// a nil Taxonomy uses the built-in one.
type Builder struct {
	Metadata  MetadataSource
	Citations CitationSource
	Completer Completer
	Extractor Extractor
	Taxonomy  *taxonomy.Taxonomy
	Log       *log.Logger
}

// TopOptions configures BuildTop.
type TopOptions struct {
	// TopN is the number of references and of citations to keep.
	TopN int

	// LLM enables per-paper LLM extraction.
	LLM bool
}

// RecursiveOptions configures BuildRecursive.
type RecursiveOptions struct {
	// TopK is the number of references and of citations kept per expanded paper.
	TopK int

	// Depth is the maximum expansion level. Depth 1 expands only the seed.
	Depth int

	// LLM enables per-paper LLM extraction.
	LLM bool
}

// BuildTop builds the one-shot graph: the seed, its top references and its
// top citing papers.
func (b *Builder) BuildTop(ctx context.Context, seedID string, opts TopOptions) (*types.GraphDocument, error) {
	b.logger().Info("building top-citations graph", "id", seedID, "top", opts.TopN)

	seed, err := b.fetchSeed(ctx, seedID)
	if err != nil {
		return nil, err
	}

	rel, err := b.Citations.TopRelated(ctx, seedID, opts.TopN)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger().Error("citation lookup failed, continuing with seed only", "id", seedID, "err", err)
		rel = types.Related{}
	}

	related := make([]*types.Paper, 0, len(rel.References)+len(rel.Citations))
	for i := range rel.References {
		related = append(related, &rel.References[i])
	}
	for i := range rel.Citations {
		related = append(related, &rel.Citations[i])
	}
	if err := b.complete(ctx, related); err != nil {
		return nil, err
	}

	all := append([]*types.Paper{seed}, related...)
	asm := newAssembler(b.taxonomy())
	asm.addPapers(all)
	for _, r := range rel.References {
		asm.addTriple(seed.Title, types.RelCites, r.Title)
	}
	for _, c := range rel.Citations {
		asm.addTriple(c.Title, types.RelCites, seed.Title)
	}

	if opts.LLM {
		if err := b.mergeLLM(ctx, asm, all); err != nil {
			return nil, err
		}
	}

	doc := &types.GraphDocument{
		PaperMetadata: *seed,
		RelatedPapersCount: types.RelatedCounts{
			References: len(rel.References),
			Citations:  len(rel.Citations),
		},
		RelatedPapers:  derefAll(related),
		TopN:           types.IntPtr(opts.TopN),
		KnowledgeGraph: asm.graph(),
	}
	b.logSummary(doc)
	return doc, nil
}

// edge is a directed citation between two trimmed titles.
type edge struct {
	head, tail string
}

// BuildRecursive expands the citation network breadth-first from the seed.
// Every arXiv id is fetched at most once and nothing past opts.Depth is
// expanded. Lookup failures for non-seed papers skip that paper's
// expansion and never abort the build.
func (b *Builder) BuildRecursive(ctx context.Context, seedID string, opts RecursiveOptions) (*types.GraphDocument, error) {
	b.logger().Info("building recursive citation graph", "id", seedID, "top", opts.TopK, "depth", opts.Depth)

	fetched, err := b.fetchSeed(ctx, seedID)
	if err != nil {
		return nil, err
	}

	papers := newPaperSet()
	seed := papers.add(*fetched)
	if seed == nil {
		return nil, fmt.Errorf("%w: %s has no title", ErrSeedFetch, seedID)
	}

	var edges []edge
	seenEdge := make(map[edge]bool)
	addEdge := func(head, tail *types.Paper) {
		if head == nil || tail == nil || head == tail {
			return
		}
		e := edge{head.Title, tail.Title}
		if seenEdge[e] {
			return
		}
		seenEdge[e] = true
		edges = append(edges, e)
	}

	frontier := NewFrontier()
	frontier.Push(seedID, 0)
	for {
		item, ok := frontier.Pop()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		paper := seed
		if item.Level > 0 {
			p, err := b.Metadata.Paper(ctx, item.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				b.logger().Warn("skipping paper", "id", item.ID, "level", item.Level, "err", err)
				continue
			}
			if paper = papers.add(*p); paper == nil {
				continue
			}
		}

		if item.Level >= opts.Depth {
			continue
		}
		b.logger().Info("expanding", "id", item.ID, "level", item.Level, "title", paper.Title)

		rel, err := b.Citations.TopRelated(ctx, item.ID, opts.TopK)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			b.logger().Warn("citation lookup failed", "id", item.ID, "level", item.Level, "err", err)
			continue
		}
		for _, r := range rel.References {
			addEdge(paper, papers.add(r))
			frontier.Push(r.ArxivID, item.Level+1)
		}
		for _, c := range rel.Citations {
			addEdge(papers.add(c), paper)
			frontier.Push(c.ArxivID, item.Level+1)
		}
	}

	all := papers.all()
	if err := b.complete(ctx, all); err != nil {
		return nil, err
	}

	asm := newAssembler(b.taxonomy())
	asm.addPapers(all)
	var counts types.RelatedCounts
	for _, e := range edges {
		asm.addTriple(e.head, types.RelCites, e.tail)
		if e.head == seed.Title {
			counts.References++
		}
		if e.tail == seed.Title {
			counts.Citations++
		}
	}

	if opts.LLM {
		if err := b.mergeLLM(ctx, asm, all); err != nil {
			return nil, err
		}
	}

	related := make([]types.Paper, 0, len(all))
	for _, p := range all {
		if p != seed {
			related = append(related, *p)
		}
	}

	doc := &types.GraphDocument{
		PaperMetadata:      *seed,
		RelatedPapersCount: counts,
		RelatedPapers:      related,
		TopK:               types.IntPtr(opts.TopK),
		Depth:              types.IntPtr(opts.Depth),
		KnowledgeGraph:     asm.graph(),
	}
	b.logSummary(doc)
	return doc, nil
}

func (b *Builder) fetchSeed(ctx context.Context, seedID string) (*types.Paper, error) {
	seed, err := b.Metadata.Paper(ctx, seedID)
	if err != nil {
		b.logger().Error("seed paper fetch failed", "id", seedID, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrSeedFetch, seedID, err)
	}
	if seed.ArxivID == "" {
		seed.ArxivID = seedID
	}
	return seed, nil
}

func (b *Builder) complete(ctx context.Context, papers []*types.Paper) error {
	if b.Completer == nil {
		for _, p := range papers {
			if p.Authors == nil {
				p.Authors = []string{}
			}
		}
		return nil
	}
	_, err := b.Completer.Complete(ctx, papers)
	return err
}

// mergeLLM runs extraction per paper. A failure contributes nothing for that
// paper; only context cancellation is returned.
func (b *Builder) mergeLLM(ctx context.Context, asm *assembler, papers []*types.Paper) error {
	if b.Extractor == nil {
		b.logger().Warn("LLM extraction requested but no extractor is configured")
		return nil
	}
	for _, p := range papers {
		res, err := b.Extractor.Extract(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger().Warn("LLM extraction failed", "title", p.Title, "err", err)
			continue
		}
		asm.mergeExtraction(res)
	}
	return nil
}

func (b *Builder) taxonomy() *taxonomy.Taxonomy {
	if b.Taxonomy != nil {
		return b.Taxonomy
	}
	return taxonomy.Builtin()
}

func (b *Builder) logSummary(doc *types.GraphDocument) {
	b.logger().Info("graph built",
		"papers", len(doc.RelatedPapers)+1,
		"entities", len(doc.KnowledgeGraph.Entities),
		"triples", len(doc.KnowledgeGraph.Triples))
}

func (b *Builder) logger() *log.Logger {
	if b.Log != nil {
		return b.Log
	}
	return log.New(io.Discard)
}

func derefAll(ps []*types.Paper) []types.Paper {
	out := make([]types.Paper, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}
