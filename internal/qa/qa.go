// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa answers questions about a GraphDocument by flattening it into
// plain-English facts and asking the LLM to answer from those facts only.
package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/citation-graph/internal/llm"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// NotInGraph is the answer the model is told to give when the facts do not
// cover the question.
const NotInGraph = "The knowledge graph does not contain this information."

const answerTemperature = 0.1

// Chat is the completion call the answerer needs. *llm.Client satisfies it.
type Chat interface {
	Complete(ctx context.Context, system, user string, opts ...llm.CompleteOption) (string, error)
}

// Answerer answers questions against one document at a time.
type Answerer struct {
	Chat Chat
	Log  *log.Logger
}

// New builds an Answerer on the configured LLM. It returns
// llm.ErrNotConfigured when no usable API key is set.
func New(cfg types.AIConfig, logger *log.Logger) (*Answerer, error) {
	client, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Answerer{Chat: client, Log: logger}, nil
}

// Ask answers question using only the facts of doc.
func (a *Answerer) Ask(ctx context.Context, question string, doc *types.GraphDocument) (string, error) {
	if a == nil || a.Chat == nil {
		return "", llm.ErrNotConfigured
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}

	facts, err := Facts(doc)
	if err != nil {
		return "", err
	}
	a.logger().Debug("asking", "facts", len(facts), "question", question)

	answer, err := a.Chat.Complete(ctx, SystemPrompt(facts), question, llm.WithTemperature(answerTemperature))
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (a *Answerer) logger() *log.Logger {
	if a.Log != nil {
		return a.Log
	}
	return log.New(io.Discard)
}

// SystemPrompt lists facts and the rules for answering from them.
func SystemPrompt(facts []string) string {
	var b strings.Builder
	b.WriteString("You are a question answering assistant backed by a knowledge graph. ")
	b.WriteString("Answer the user's question using only the known facts below.\n\n")
	b.WriteString("Known facts:\n")
	for _, f := range facts {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	b.WriteString("\nIf the answer is in the facts, answer accurately. ")
	fmt.Fprintf(&b, "If it is not, reply exactly %q and do not make anything up. ", NotInGraph)
	b.WriteString("Keep answers short and precise.")
	return b.String()
}

// Facts flattens doc into one sentence per triple, preceded by the seed
// paper's metadata. Triples with a blank endpoint, or with no relation, are
// skipped.
func Facts(doc *types.GraphDocument) ([]string, error) {
	meta, err := json.Marshal(doc.PaperMetadata)
	if err != nil {
		return nil, fmt.Errorf("encoding paper metadata: %w", err)
	}
	facts := []string{fmt.Sprintf("Metadata of the paper %q: %s", doc.PaperMetadata.Title, meta)}
	for _, t := range doc.KnowledgeGraph.Triples {
		if f := Fact(t); f != "" {
			facts = append(facts, f)
		}
	}
	return facts, nil
}

// Fact phrases one triple, or returns "" when it cannot be phrased.
func Fact(t types.Triple) string {
	head := strings.TrimSpace(t.Head)
	tail := strings.TrimSpace(t.Tail)
	if head == "" || tail == "" {
		return ""
	}
	switch t.Relation {
	case types.RelProposedModel:
		return fmt.Sprintf("%s proposed the model %s.", head, tail)
	case types.RelBaselineModel:
		return fmt.Sprintf("%s compares against the baseline model %s.", head, tail)
	case types.RelEvaluatedOn:
		return fmt.Sprintf("%s was evaluated on the dataset %s.", head, tail)
	case types.RelUsesMetric:
		return fmt.Sprintf("%s uses the metric %s.", head, tail)
	case types.RelAuthorOf:
		return fmt.Sprintf("%s is an author of the paper %q.", head, tail)
	case types.RelCites:
		return fmt.Sprintf("%s cites %s.", head, tail)
	case "":
		return ""
	default:
		return fmt.Sprintf("The %s of %s is %s.", t.Relation, head, tail)
	}
}
