// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// from .env files. In a secrets directory each file is one secret: the
// filename is the key name and the trimmed contents are the value.
//
// Supported key files: openai-api-key, openai-base-url, openai-model-name,
// semantic-scholar-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/pdiddy/citation-graph/pkg/types"
)

// Key file names.
const (
	KeyOpenAI          = "openai-api-key"
	KeyOpenAIBaseURL   = "openai-base-url"
	KeyOpenAIModel     = "openai-model-name"
	KeySemanticScholar = "semantic-scholar-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *log.Logger) (map[string]string, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "name", name, "err", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv loads each .env file that exists into the process environment.
// Variables already set are not overridden.
func LoadEnv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("loading %s: %w", f, err)
	}
	return nil
}

// Apply copies secrets into cfg for every field still empty. Values from
// flags, config, or the environment take precedence.
func Apply(secrets map[string]string, cfg *types.PipelineConfig) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = secrets[key]
		}
	}
	fill(&cfg.AI.APIKey, KeyOpenAI)
	fill(&cfg.AI.BaseURL, KeyOpenAIBaseURL)
	fill(&cfg.AI.Model, KeyOpenAIModel)
	fill(&cfg.Scholar.APIKey, KeySemanticScholar)
}
