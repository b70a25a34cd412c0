package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citation-graph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivConfig holds settings for the arXiv metadata client.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MinInterval spaces consecutive arXiv requests (default 3s).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval" mapstructure:"min_interval"`
}

// ScholarConfig holds settings for the Semantic Scholar client.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is an optional API key sent as x-api-key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retries after the first attempt (default 4).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// BaseDelay is the backoff unit; retry n waits BaseDelay * 2^n (default 5s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`

	// PrePause is slept before the first attempt of every request (default 3s).
	PrePause time.Duration `json:"pre_pause" yaml:"pre_pause" mapstructure:"pre_pause"`
}

// CompletionConfig holds settings for the metadata completion stage.
type CompletionConfig struct {
	// Delay throttles consecutive records (default 500ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// ResponseFormat selects how the LLM is asked to shape its answer.
type ResponseFormat string

const (
	ResponseJSONObject ResponseFormat = "json_object"
	ResponseJSONSchema ResponseFormat = "json_schema"
)

// AIConfig holds settings for stages that call an OpenAI-compatible chat API.
type AIConfig struct {
	// Model is the chat model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the chat API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the API endpoint (e.g. "https://api.deepseek.com").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries is the number of retry attempts for failed API calls (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// ResponseFormat is json_object or json_schema.
	ResponseFormat ResponseFormat `json:"response_format" yaml:"response_format" mapstructure:"response_format"`
}

// TaxonomyConfig holds settings for the type normalizer.
type TaxonomyConfig struct {
	// Path is a JSON or YAML taxonomy file. Empty uses the built-in taxonomy.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	// Default is the type used when a raw type cannot be mapped (default CreativeWork).
	Default string `json:"default" yaml:"default" mapstructure:"default"`

	// Aliases maps raw labels to taxonomy types.
	Aliases map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty" mapstructure:"aliases"`
}

// SnapshotFormat selects a persisted graph format.
type SnapshotFormat string

const (
	FormatJSON   SnapshotFormat = "json"
	FormatYAML   SnapshotFormat = "yaml"
	FormatSQLite SnapshotFormat = "sqlite"
)

// OutputConfig holds settings for persisting and rendering graphs.
type OutputConfig struct {
	// Dir is the directory snapshots and pages are written to (default ".").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Formats lists the snapshot formats to write (default json).
	Formats []SnapshotFormat `json:"formats" yaml:"formats" mapstructure:"formats"`

	// HTML controls whether an interactive page is rendered next to the snapshot.
	HTML bool `json:"html" yaml:"html" mapstructure:"html"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Arxiv      ArxivConfig      `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Scholar    ScholarConfig    `json:"scholar" yaml:"scholar" mapstructure:"scholar"`
	Completion CompletionConfig `json:"completion" yaml:"completion" mapstructure:"completion"`
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Taxonomy   TaxonomyConfig   `json:"taxonomy" yaml:"taxonomy" mapstructure:"taxonomy"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
}
