// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps an OpenAI-compatible chat completions API behind a
// single Complete call. The default endpoint is DeepSeek.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/pdiddy/citation-graph/pkg/types"
)

const (
	// DefaultBaseURL is the chat API used when none is configured.
	DefaultBaseURL = "https://api.deepseek.com"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "deepseek-chat"

	// DefaultTemperature keeps extraction close to deterministic.
	DefaultTemperature = 0.1

	// PlaceholderKey is the sample key shipped in example configs. It
	// counts as unconfigured.
	PlaceholderKey = "sk-xxxxxxxxxxxxxxxxxxxxxxxx"
)

// ErrNotConfigured is returned when no usable API key is set.
var ErrNotConfigured = errors.New("LLM API key not configured")

// Configured reports whether apiKey is set and is not the placeholder.
func Configured(apiKey string) bool {
	k := strings.TrimSpace(apiKey)
	return k != "" && k != PlaceholderKey
}

// Client sends chat completions to one model.
type Client struct {
	chat        openai.Client
	model       string
	temperature float64
	format      types.ResponseFormat
}

// New returns a Client for cfg, or ErrNotConfigured when cfg has no usable
// key. Retries are left to the caller.
func New(cfg types.AIConfig) (*Client, error) {
	if !Configured(cfg.APIKey) {
		return nil, ErrNotConfigured
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}
	format := cfg.ResponseFormat
	if format == "" {
		format = types.ResponseJSONObject
	}

	return &Client{
		chat: openai.NewClient(
			option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
		),
		model:       model,
		temperature: temp,
		format:      format,
	}, nil
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string { return c.model }

// Format returns the configured structured-output mode.
func (c *Client) Format() types.ResponseFormat { return c.format }

// CompleteOptions tunes a single Complete call.
type CompleteOptions struct {
	Temperature float64
	JSON        bool

	// SchemaName and Schema request strict JSON-schema output. They take
	// precedence over JSON.
	SchemaName        string
	SchemaDescription string
	Schema            any
}

// CompleteOption is a functional option for Complete.
type CompleteOption func(*CompleteOptions)

// WithTemperature overrides the configured sampling temperature.
func WithTemperature(t float64) CompleteOption {
	return func(o *CompleteOptions) { o.Temperature = t }
}

// WithJSONObject asks for a bare JSON object response.
func WithJSONObject() CompleteOption {
	return func(o *CompleteOptions) { o.JSON = true }
}

// WithJSONSchema asks for a response matching the schema reflected from v.
func WithJSONSchema(name, description string, v any) CompleteOption {
	return func(o *CompleteOptions) {
		o.SchemaName = name
		o.SchemaDescription = description
		o.Schema = schemaOf(v)
	}
}

// Complete sends one system prompt and one user message and returns the
// assistant reply.
func (c *Client) Complete(ctx context.Context, system, user string, opts ...CompleteOption) (string, error) {
	options := CompleteOptions{Temperature: c.temperature}
	for _, o := range opts {
		o(&options)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(user))

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}
	switch {
	case options.Schema != nil:
		body.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        options.SchemaName,
					Description: openai.String(options.SchemaDescription),
					Schema:      options.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	case options.JSON:
		body.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	response, err := c.chat.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response from model")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return "", fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
	}
	return message, nil
}
