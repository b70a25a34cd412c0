// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-graph/internal/llm"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	replies []string // served in order, last one repeats
	err     error
	calls   int
	system  string
	user    string
}

func (m *mockBackend) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	m.system, m.user = system, user
	if m.err != nil {
		return "", m.err
	}
	i := m.calls - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i], nil
}

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

var attention = &types.Paper{Title: "Attention Is All You Need", Abstract: "We propose the Transformer."}

func TestExtract_CanonicalResult(t *testing.T) {
	backend := &mockBackend{replies: []string{`{
		"entities": [
			{"name": " Transformer ", "type": "SoftwareApplication", "id": "E1"},
			{"name": "WMT 2014", "type": "Dataset", "id": 2},
			{"name": "  ", "type": "Person"}
		],
		"triples": [
			{"head": "Attention Is All You Need", "relation": "proposed_model", "tail": "E1"},
			{"subject": "E1", "relation": "evaluated_on", "object": "2"},
			{"head": "", "relation": "cites", "tail": "X"}
		]
	}`}}
	e := New(backend, "Thesis, Dataset", 0, nil)

	r, err := e.Extract(context.Background(), attention)
	require.NoError(t, err)

	assert.Equal(t, []Entity{
		{Name: "Transformer", Type: "SoftwareApplication", ID: "E1"},
		{Name: "WMT 2014", Type: "Dataset", ID: "2"},
	}, r.Entities)
	assert.Equal(t, []types.Triple{
		{Head: "Attention Is All You Need", Relation: "proposed_model", Tail: "E1"},
		{Head: "E1", Relation: "evaluated_on", Tail: "2"},
	}, r.Triples)
	assert.Equal(t, 1, backend.calls)
}

func TestExtract_Prompts(t *testing.T) {
	backend := &mockBackend{replies: []string{`{"entities":[],"triples":[]}`}}
	e := New(backend, "Thesis, Article, Person", 0, nil)

	_, err := e.Extract(context.Background(), attention)
	require.NoError(t, err)

	assert.Contains(t, backend.system, "Thesis, Article, Person")
	assert.Contains(t, backend.system, "proposed_model, baseline_model, evaluated_on, uses_metric, cites, author_of")
	assert.Equal(t, "Title: Attention Is All You Need\nAbstract: We propose the Transformer.", backend.user)
}

func TestExtract_RepairsMalformedJSON(t *testing.T) {
	backend := &mockBackend{replies: []string{"```json\n{\"entities\":[{\"name\":\"BLEU\",\"type\":\"Metric\"},],\"triples\":[]\n```"}}
	e := New(backend, "", 0, nil)

	r, err := e.Extract(context.Background(), attention)
	require.NoError(t, err)
	require.Len(t, r.Entities, 1)
	assert.Equal(t, "BLEU", r.Entities[0].Name)
}

func TestExtract_RetriesThenSucceeds(t *testing.T) {
	backend := &mockBackend{replies: []string{"not json at all <<<", `{"entities":[{"name":"A","type":"Thesis"}]}`}}
	e := New(backend, "", 2, nil)

	r, err := e.Extract(context.Background(), attention)
	require.NoError(t, err)
	assert.Len(t, r.Entities, 1)
	assert.Equal(t, 2, backend.calls)
}

func TestExtract_FailureIsExtractionError(t *testing.T) {
	backend := &mockBackend{err: fmt.Errorf("503 upstream")}
	e := New(backend, "", 2, nil)

	r, err := e.Extract(context.Background(), attention)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Empty(t, r.Entities)
	assert.Empty(t, r.Triples)
	// 1 initial + 2 retries.
	assert.Equal(t, 3, backend.calls)
}

func TestExtract_CancelledContext(t *testing.T) {
	backend := &mockBackend{err: fmt.Errorf("boom")}
	e := New(backend, "", 3, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, attention)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_NumericIDsInTriples(t *testing.T) {
	backend := &mockBackend{replies: []string{
		`{"entities":[{"name":"Transformer","type":"SoftwareApplication","id":1},{"name":"WMT 2014","type":"Dataset","id":2}],` +
			`"triples":[{"head":1,"relation":"evaluated_on","tail":2},{"subject":"Transformer","relation":"uses_metric","object":3.5}]}`,
	}}
	e := New(backend, "", 2, nil)

	r, err := e.Extract(context.Background(), attention)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, []Entity{
		{Name: "Transformer", Type: "SoftwareApplication", ID: "1"},
		{Name: "WMT 2014", Type: "Dataset", ID: "2"},
	}, r.Entities)
	assert.Equal(t, []types.Triple{
		{Head: "1", Relation: "evaluated_on", Tail: "2"},
		{Head: "Transformer", Relation: "uses_metric", Tail: "3.5"},
	}, r.Triples)
}

func TestCanonicalize_PrefersHeadTail(t *testing.T) {
	r := Canonicalize(Response{Triples: []ResponseTriple{
		{Head: "H", Subject: "S", Relation: " uses_metric ", Tail: "T", Object: "O"},
		{Subject: " S ", Relation: "r", Object: " O "},
		{Head: "H", Relation: "r"},
	}})
	assert.Equal(t, []types.Triple{
		{Head: "H", Relation: "uses_metric", Tail: "T"},
		{Head: "S", Relation: "r", Tail: "O"},
	}, r.Triples)
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "", idString(nil))
	assert.Equal(t, "E1", idString(" E1 "))
	assert.Equal(t, "3", idString(float64(3)))
	assert.Equal(t, "1.5", idString(1.5))
	assert.Equal(t, "true", idString(true))
}

func TestChatBackend_SendsJSONObjectFormat(t *testing.T) {
	var format string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		format = req.ResponseFormat.Type

		content, _ := json.Marshal(`{"entities":[{"name":"Transformer","type":"SoftwareApplication"}],"triples":[]}`)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"x","object":"chat.completion","created":0,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%s}}]}`, content)
	}))
	defer ts.Close()

	e, err := NewChat(types.AIConfig{APIKey: "sk-test", BaseURL: ts.URL + "/"}, "Thesis", nil)
	require.NoError(t, err)

	r, err := e.Extract(context.Background(), attention)
	require.NoError(t, err)
	assert.Equal(t, "json_object", format)
	require.Len(t, r.Entities, 1)
	assert.Equal(t, "Transformer", r.Entities[0].Name)
}

func TestNewChat_NotConfigured(t *testing.T) {
	_, err := NewChat(types.AIConfig{APIKey: llm.PlaceholderKey}, "", nil)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
	assert.True(t, strings.HasSuffix(truncate(strings.Repeat("é", 50), 40), "..."))
}
