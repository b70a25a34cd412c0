// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-graph/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyOpenAI, "  sk-abc123  \n")
				writeFile(t, dir, KeySemanticScholar, "s2_xyz789")
				return dir
			},
			want: map[string]string{
				KeyOpenAI:          "sk-abc123",
				KeySemanticScholar: "s2_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyOpenAI, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{KeyOpenAI: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeySemanticScholar, "s2_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{KeySemanticScholar: "s2_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	assert.NotContains(t, got, "bad-key")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CITATION_GRAPH_TEST_KEY=from-file\nCITATION_GRAPH_TEST_SET=from-file\n"), 0o644))

	t.Setenv("CITATION_GRAPH_TEST_SET", "from-env")
	t.Setenv("CITATION_GRAPH_TEST_KEY", "")
	os.Unsetenv("CITATION_GRAPH_TEST_KEY")

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "from-file", os.Getenv("CITATION_GRAPH_TEST_KEY"))
	assert.Equal(t, "from-env", os.Getenv("CITATION_GRAPH_TEST_SET"))
}

func TestApply_FillsOnlyEmptyFields(t *testing.T) {
	cfg := types.PipelineConfig{}
	cfg.AI.Model = "gpt-4o"

	Apply(map[string]string{
		KeyOpenAI:          "sk-file",
		KeyOpenAIModel:     "deepseek-chat",
		KeySemanticScholar: "s2-file",
	}, &cfg)

	assert.Equal(t, "sk-file", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, "", cfg.AI.BaseURL)
	assert.Equal(t, "s2-file", cfg.Scholar.APIKey)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
