// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/pdiddy/citation-graph/internal/llm"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// systemPromptTmpl instructs the model to extract entities and relations
// from a title and abstract, restricted to the taxonomy's academic types.
var systemPromptTmpl = template.Must(template.New("system").Parse(`You are a knowledge graph expert. Extract entities and relations from the paper title and abstract.
Entity types must be chosen only from: {{.Types}}
Relation types: {{.Relations}}
Triples must use the "head" and "tail" fields (not subject/object). Head and tail values must be entity names such as paper titles, model names or dataset names, never IDs like E1 or E2.
Respond strictly with JSON: {"entities": [{"name": "...", "type": "..."}], "triples": [{"head": "...", "relation": "...", "tail": "..."}]}`))

var userPromptTmpl = template.Must(template.New("user").Parse(`Title: {{.Title}}
Abstract: {{.Abstract}}`))

// relations lists the labels offered to the model.
var relations = []string{
	types.RelProposedModel,
	types.RelBaselineModel,
	types.RelEvaluatedOn,
	types.RelUsesMetric,
	types.RelCites,
	types.RelAuthorOf,
}

func renderSystemPrompt(allowedTypes string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Types, Relations string }{allowedTypes, strings.Join(relations, ", ")}
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderUserPrompt(p *types.Paper) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ChatBackend sends extraction prompts to an OpenAI-compatible chat model.
type ChatBackend struct {
	Client *llm.Client
}

// Complete asks for a JSON object, or for strict schema output when the
// client is configured for json_schema.
func (b *ChatBackend) Complete(ctx context.Context, system, user string) (string, error) {
	opt := llm.WithJSONObject()
	if b.Client.Format() == types.ResponseJSONSchema {
		opt = llm.WithJSONSchema("knowledge_graph", "Entities and triples extracted from a paper abstract", &schemaResponse{})
	}
	return b.Client.Complete(ctx, system, user, opt)
}

// schemaResponse is the closed shape offered in json_schema mode. Strict
// schemas require every field, so the alias fields are absent here.
type schemaResponse struct {
	Entities []schemaEntity `json:"entities"`
	Triples  []schemaTriple `json:"triples"`
}

type schemaEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   string `json:"id"`
}

type schemaTriple struct {
	Head     string `json:"head"`
	Relation string `json:"relation"`
	Tail     string `json:"tail"`
}
