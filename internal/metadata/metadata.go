// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata completes partial paper records with abstracts and
// author lists from the primary and fallback metadata sources.
package metadata

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-graph/internal/httputil"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// DefaultDelay is the spacing between records that need a remote lookup.
const DefaultDelay = 500 * time.Millisecond

// Source looks up one paper by an identifier it understands.
type Source interface {
	Paper(ctx context.Context, id string) (*types.Paper, error)
}

// Completer fills in missing abstracts and authors. Primary is keyed by
// arXiv id and Fallback by Semantic Scholar id; either may be nil.
type Completer struct {
	Primary  Source
	Fallback Source

	// Limiter, when set, is waited on before each record that needs a lookup.
	Limiter *rate.Limiter

	Log *log.Logger
}

// New returns a Completer throttled to one lookup per delay.
func New(primary, fallback Source, delay time.Duration, logger *log.Logger) *Completer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Completer{
		Primary:  primary,
		Fallback: fallback,
		Limiter:  rate.NewLimiter(rate.Every(delay), 1),
		Log:      logger,
	}
}

// Summary reports the outcome of a Complete call.
type Summary struct {
	// Completed records were filled from a source.
	Completed int

	// Skipped records already had an abstract and authors.
	Skipped int

	// Defaulted records got an empty abstract and author list because no
	// source had data.
	Defaulted int
}

// Complete mutates each record in place, sequentially. Lookup failures are
// logged and never returned; only context cancellation stops the run.
func (c *Completer) Complete(ctx context.Context, papers []*types.Paper) (Summary, error) {
	var s Summary
	c.logger().Info("completing paper metadata", "papers", len(papers))

	for _, p := range papers {
		if p.HasMetadata() {
			s.Skipped++
			continue
		}
		if p.ArxivID == "" && p.S2ID == "" {
			defaults(p)
			s.Defaulted++
			continue
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return s, err
			}
		}

		if c.fromPrimary(ctx, p) || c.fromFallback(ctx, p) {
			s.Completed++
		} else {
			defaults(p)
			s.Defaulted++
		}
		if err := ctx.Err(); err != nil {
			return s, err
		}
	}

	c.logger().Info("metadata completion finished",
		"completed", s.Completed, "skipped", s.Skipped, "defaulted", s.Defaulted)
	return s, nil
}

func (c *Completer) fromPrimary(ctx context.Context, p *types.Paper) bool {
	if c.Primary == nil || p.ArxivID == "" {
		return false
	}
	meta, err := c.Primary.Paper(ctx, p.ArxivID)
	if err != nil {
		c.logLookup("primary", p.ArxivID, err)
		return false
	}
	p.Abstract = meta.Abstract
	p.Authors = nonNil(meta.Authors)
	if meta.PublishedDate != "" {
		p.PublishedDate = meta.PublishedDate
	}
	if meta.PDFURL != "" {
		p.PDFURL = meta.PDFURL
	}
	if p.Title == "" {
		p.Title = meta.Title
	}
	return true
}

func (c *Completer) fromFallback(ctx context.Context, p *types.Paper) bool {
	if c.Fallback == nil || p.S2ID == "" {
		return false
	}
	meta, err := c.Fallback.Paper(ctx, p.S2ID)
	if err != nil {
		c.logLookup("fallback", p.S2ID, err)
		return false
	}
	p.Abstract = meta.Abstract
	p.Authors = nonNil(meta.Authors)
	switch {
	case meta.PublishedDate != "":
		p.PublishedDate = meta.PublishedDate
	case p.Year != nil && *p.Year > 0:
		p.PublishedDate = strconv.Itoa(*p.Year)
	}
	if p.Title == "" {
		p.Title = meta.Title
	}
	return true
}

func (c *Completer) logLookup(source, id string, err error) {
	if errors.Is(err, httputil.ErrNotFound) {
		c.logger().Warn("paper not found", "source", source, "id", id)
		return
	}
	c.logger().Error("metadata lookup failed", "source", source, "id", id, "err", err)
}

func defaults(p *types.Paper) {
	p.Authors = nonNil(p.Authors)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (c *Completer) logger() *log.Logger {
	if c.Log != nil {
		return c.Log
	}
	return log.New(io.Discard)
}
