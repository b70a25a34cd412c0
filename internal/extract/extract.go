// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract asks an LLM for entities and relations in a paper's
// title and abstract and normalizes the reply into one canonical shape
// before any merge logic sees it.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/citation-graph/internal/llm"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// ErrExtraction marks an LLM call that failed or returned unusable output.
var ErrExtraction = errors.New("extraction failed")

const defaultMaxRetries = 2

// Backend abstracts the chat API so tests can supply a mock.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Entity is an entity as proposed by the model, before type normalization.
type Entity struct {
	Name string
	Type string
	ID   string
}

// Result is one paper's canonical extraction output.
type Result struct {
	Entities []Entity
	Triples  []types.Triple
}

// Response is the wire shape of the model reply. Triples may name their
// endpoints head/tail or subject/object.
type Response struct {
	Entities []ResponseEntity `json:"entities"`
	Triples  []ResponseTriple `json:"triples"`
}

// ResponseEntity is a single entity as returned by the model.
type ResponseEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   any    `json:"id,omitempty"`
}

// ResponseTriple is a single triple as returned by the model. Endpoints
// are names or entity ids, and ids may be numbers.
type ResponseTriple struct {
	Head     any    `json:"head,omitempty"`
	Subject  any    `json:"subject,omitempty"`
	Relation string `json:"relation"`
	Tail     any    `json:"tail,omitempty"`
	Object   any    `json:"object,omitempty"`
}

// Extractor runs LLM extraction for one paper at a time.
type Extractor struct {
	Backend Backend

	// AllowedTypes is the comma-separated type list offered in the prompt.
	AllowedTypes string

	// MaxRetries is the number of retries after a failed call (default 2).
	MaxRetries int

	Log *log.Logger
}

// New returns an Extractor using backend and offering allowedTypes.
func New(backend Backend, allowedTypes string, maxRetries int, logger *log.Logger) *Extractor {
	return &Extractor{
		Backend:      backend,
		AllowedTypes: allowedTypes,
		MaxRetries:   maxRetries,
		Log:          logger,
	}
}

// NewChat wires an Extractor to the chat API described by cfg. It returns
// llm.ErrNotConfigured when cfg has no usable key.
func NewChat(cfg types.AIConfig, allowedTypes string, logger *log.Logger) (*Extractor, error) {
	client, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return New(&ChatBackend{Client: client}, allowedTypes, cfg.MaxRetries, logger), nil
}

// Extract returns the entities and triples the model finds in p. Errors
// match ErrExtraction unless the context ended.
func (e *Extractor) Extract(ctx context.Context, p *types.Paper) (Result, error) {
	e.logger().Info("extracting with LLM", "title", truncate(p.Title, 40))

	system, err := renderSystemPrompt(e.AllowedTypes)
	if err != nil {
		return Result{}, fmt.Errorf("%w: rendering prompt: %w", ErrExtraction, err)
	}
	user, err := renderUserPrompt(p)
	if err != nil {
		return Result{}, fmt.Errorf("%w: rendering prompt: %w", ErrExtraction, err)
	}

	maxRetries := e.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	resp, err := callWithRetry(ctx, e.Backend, system, user, maxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %q: %w", ErrExtraction, truncate(p.Title, 40), err)
	}
	return Canonicalize(resp), nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend and decodes the reply, with exponential
// backoff on either failing.
func callWithRetry(ctx context.Context, backend Backend, system, user string, maxRetries int) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := backend.Complete(ctx, system, user)
		if err != nil {
			lastErr = err
			continue
		}
		var resp Response
		if err := llm.DecodeReply(raw, &resp); err != nil {
			lastErr = fmt.Errorf("parsing model reply: %w", err)
			continue
		}
		return resp, nil
	}
	return Response{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// Canonicalize converts a model reply into the canonical Result: names are
// trimmed, entities without a name are dropped, triple endpoints are taken
// from head/tail or else subject/object, and triples missing an endpoint
// are dropped.
func Canonicalize(resp Response) Result {
	var r Result
	for _, re := range resp.Entities {
		name := strings.TrimSpace(re.Name)
		if name == "" {
			continue
		}
		r.Entities = append(r.Entities, Entity{
			Name: name,
			Type: strings.TrimSpace(re.Type),
			ID:   idString(re.ID),
		})
	}
	for _, rt := range resp.Triples {
		head := firstNonBlank(idString(rt.Head), idString(rt.Subject))
		tail := firstNonBlank(idString(rt.Tail), idString(rt.Object))
		if head == "" || tail == "" {
			continue
		}
		r.Triples = append(r.Triples, types.Triple{
			Head:     head,
			Relation: strings.TrimSpace(rt.Relation),
			Tail:     tail,
		})
	}
	return r
}

// idString accepts ids the model emits as strings or numbers.
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		if id == math.Trunc(id) {
			return fmt.Sprintf("%d", int64(id))
		}
		return fmt.Sprintf("%g", id)
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func (e *Extractor) logger() *log.Logger {
	if e.Log != nil {
		return e.Log
	}
	return log.New(io.Discard)
}
