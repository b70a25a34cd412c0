// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches paper metadata from the arXiv Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-graph/internal/httputil"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultTimeout     = 20 * time.Second
	defaultMinInterval = 3 * time.Second
	defaultUserAgent   = "citation-graph/0.1"
)

// Client looks up single papers by arXiv identifier. Calls are single-shot;
// Limiter only spaces consecutive calls.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// Limiter, when set, is waited on before every request.
	Limiter *rate.Limiter

	Log *log.Logger
}

// New returns a Client configured from cfg.
func New(cfg types.ArxivConfig, logger *log.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	interval := cfg.MinInterval
	if interval <= 0 {
		interval = defaultMinInterval
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: ua,
		Limiter:   rate.NewLimiter(rate.Every(interval), 1),
		Log:       logger,
	}
}

// Paper fetches the metadata for id. It returns an error matching
// httputil.ErrNotFound when arXiv has no such paper, and a *StatusError or
// transport error for every other failure.
func (c *Client) Paper(ctx context.Context, id string) (*types.Paper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("arXiv lookup: empty id: %w", httputil.ErrNotFound)
	}
	c.logger().Info("fetching arXiv metadata", "id", id)

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := arxivAPIBase + "?" + url.Values{"id_list": {id}, "max_results": {"1"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("arXiv API %s: %w", id, err)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	for _, entry := range feed.Entries {
		if entry.isError() {
			continue
		}
		p := entry.toPaper(id)
		if p.Title == "" {
			continue
		}
		return p, nil
	}
	return nil, fmt.Errorf("arXiv %s: %w", id, httputil.ErrNotFound)
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

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// isError reports whether the entry is arXiv's in-band error record, which
// it returns for malformed identifiers.
func (e arxivEntry) isError() bool {
	return strings.Contains(e.ID, "/api/errors") || strings.TrimSpace(e.Title) == "Error"
}

func (e arxivEntry) toPaper(requested string) *types.Paper {
	p := &types.Paper{
		ArxivID:  requested,
		Title:    strings.Join(strings.Fields(e.Title), " "),
		Abstract: strings.TrimSpace(e.Summary),
		Authors:  []string{},
	}
	if requested == "" {
		p.ArxivID = extractArxivID(e.ID)
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		p.PublishedDate = t.Format("2006-01-02")
		p.Year = types.IntPtr(t.Year())
	}
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			p.PDFURL = l.Href
			break
		}
	}
	return p
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
