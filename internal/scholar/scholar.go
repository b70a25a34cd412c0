// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar talks to the Semantic Scholar Graph API: fallback paper
// metadata by Semantic Scholar id, and the top-ranked references and
// citations of an arXiv paper. Every request goes through the shared
// retrying primitive.
package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/citation-graph/internal/httputil"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	paperFields   = "title,abstract,authors,year"
	relatedFields = "title,externalIds,citationCount,year,paperId"

	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "citation-graph/0.1"
)

// Client queries Semantic Scholar.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// APIKey is sent as x-api-key when set.
	APIKey string

	// Policy drives retries for every request.
	Policy httputil.Policy

	Log *log.Logger
}

// New returns a Client configured from cfg. Zero retry settings fall back
// to httputil.DefaultPolicy.
func New(cfg types.ScholarConfig, logger *log.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	policy := httputil.DefaultPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxRetries = cfg.MaxRetries
	}
	if cfg.BaseDelay > 0 {
		policy.BaseDelay = cfg.BaseDelay
	}
	if cfg.PrePause > 0 {
		policy.PrePause = cfg.PrePause
	}

	c := &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: ua,
		APIKey:    cfg.APIKey,
		Policy:    policy,
		Log:       logger,
	}
	c.Policy.OnRetry = func(attempt int, wait time.Duration, cause error) {
		c.logger().Warn("Semantic Scholar request failed, retrying",
			"attempt", attempt, "max", c.Policy.MaxRetries, "wait", wait, "err", cause)
	}
	return c
}

// Paper fetches the reduced metadata for a Semantic Scholar paper id: title,
// abstract, author names and the year as published date. The result has no
// PDF link. An unknown id returns an error matching httputil.ErrNotFound.
func (c *Client) Paper(ctx context.Context, s2ID string) (*types.Paper, error) {
	s2ID = strings.TrimSpace(s2ID)
	if s2ID == "" {
		return nil, fmt.Errorf("Semantic Scholar lookup: empty id: %w", httputil.ErrNotFound)
	}
	c.logger().Info("fetching Semantic Scholar metadata", "id", s2ID)

	var sp s2Paper
	if err := c.get(ctx, "/paper/"+url.PathEscape(s2ID), paperFields, &sp); err != nil {
		return nil, err
	}

	p := &types.Paper{
		S2ID:     s2ID,
		Title:    strings.TrimSpace(sp.Title),
		Abstract: sp.Abstract,
		Authors:  []string{},
	}
	for _, a := range sp.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if sp.Year != nil && *sp.Year > 0 {
		p.PublishedDate = strconv.Itoa(*sp.Year)
		p.Year = types.IntPtr(*sp.Year)
	}
	return p, nil
}

// TopRelated returns up to k references and k citing papers of the arXiv
// paper arxivID, each list ranked by descending citation count with ties in
// source order. Items without a title are dropped. A paper unknown to
// Semantic Scholar yields empty lists and no error.
func (c *Client) TopRelated(ctx context.Context, arxivID string, k int) (types.Related, error) {
	c.logger().Info("fetching citation neighbourhood", "id", arxivID, "top", k)

	var fields []string
	fields = append(fields, "title,year,citationCount")
	for _, side := range []string{"references", "citations"} {
		for _, f := range strings.Split(relatedFields, ",") {
			fields = append(fields, side+"."+f)
		}
	}

	var sp s2Paper
	err := c.get(ctx, "/paper/ARXIV:"+strings.TrimSpace(arxivID), strings.Join(fields, ","), &sp)
	if errors.Is(err, httputil.ErrNotFound) {
		c.logger().Warn("paper not indexed by Semantic Scholar", "id", arxivID)
		return types.Related{References: []types.Paper{}, Citations: []types.Paper{}}, nil
	}
	if err != nil {
		return types.Related{}, err
	}

	rel := types.Related{
		References: rankTop(sp.References, k),
		Citations:  rankTop(sp.Citations, k),
	}
	c.logger().Info("citation neighbourhood fetched", "id", arxivID,
		"references", len(rel.References), "citations", len(rel.Citations))
	return rel, nil
}

// get performs a retried GET of path with the given fields and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, path, fields string, out any) error {
	reqURL := semanticAPIBase + path + "?fields=" + fields
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient(), req, c.Policy)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading Semantic Scholar response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// rankTop converts raw items, drops untitled ones, stable-sorts by
// descending citation count and keeps the first k.
func rankTop(items []s2Related, k int) []types.Paper {
	out := make([]types.Paper, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		p := types.Paper{
			Title:         title,
			S2ID:          it.PaperID,
			ArxivID:       it.ExternalIDs.ArXiv,
			CitationCount: types.IntPtr(derefInt(it.CitationCount)),
			Year:          types.IntPtr(derefInt(it.Year)),
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Citations() > out[j].Citations()
	})

	if k < 0 {
		k = 0
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) logger() *log.Logger {
	if c.Log != nil {
		return c.Log
	}
	return log.New(io.Discard)
}

// Semantic Scholar JSON response structures.
type s2Paper struct {
	PaperID       string      `json:"paperId"`
	Title         string      `json:"title"`
	Abstract      string      `json:"abstract"`
	Year          *int        `json:"year"`
	CitationCount *int        `json:"citationCount"`
	Authors       []s2Author  `json:"authors"`
	References    []s2Related `json:"references"`
	Citations     []s2Related `json:"citations"`
}

type s2Author struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type s2Related struct {
	PaperID       string        `json:"paperId"`
	Title         string        `json:"title"`
	Year          *int          `json:"year"`
	CitationCount *int          `json:"citationCount"`
	ExternalIDs   s2ExternalIDs `json:"externalIds"`
}

type s2ExternalIDs struct {
	ArXiv string `json:"ArXiv"`
	DOI   string `json:"DOI"`
}
