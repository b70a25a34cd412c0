// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citation-graph CLI. It builds
// knowledge graphs around an arXiv paper from its citation network, renders
// them as interactive pages, and answers questions about them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-graph/internal/secrets"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the process-wide logger, configured in PersistentPreRunE.
var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

// rootCmd is the base command for the citation-graph CLI.
var rootCmd = &cobra.Command{
	Use:   "citation-graph",
	Short: "Build knowledge graphs around an arXiv paper",
	Long: `citation-graph fetches a paper from arXiv, ranks its references and citations
through Semantic Scholar, completes missing metadata, and assembles a typed
knowledge graph of papers, authors and (optionally) LLM-extracted entities.

Graphs are written as JSON snapshots (optionally YAML or SQLite) and rendered
as self-contained ECharts pages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger.SetLevel(log.DebugLevel)
		}
		if err := secrets.LoadEnv(".env"); err != nil {
			return err
		}
		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citation-graph.yaml or ~/.config/citation-graph/citation-graph.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("output-dir", "", "directory for snapshots and pages (default .)")
	rootCmd.PersistentFlags().StringSlice("format", nil, "snapshot formats: json, yaml, sqlite (default json)")
	rootCmd.PersistentFlags().Bool("html", true, "render an HTML page next to the snapshot")

	viper.BindPFlag("output.dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("output.formats", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output.html", rootCmd.PersistentFlags().Lookup("html"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citation-graph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citation-graph"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("CITATION_GRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("ai.api_key", "CITATION_GRAPH_AI_API_KEY", "OPENAI_API_KEY")
	viper.BindEnv("ai.base_url", "CITATION_GRAPH_AI_BASE_URL", "OPENAI_BASE_URL")
	viper.BindEnv("ai.model", "CITATION_GRAPH_AI_MODEL", "OPENAI_MODEL_NAME")
	viper.BindEnv("scholar.api_key", "CITATION_GRAPH_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file", "path", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("arxiv.timeout", "20s")
	viper.SetDefault("arxiv.user_agent", defaultUserAgent)
	viper.SetDefault("arxiv.min_interval", "3s")

	viper.SetDefault("scholar.timeout", "20s")
	viper.SetDefault("scholar.user_agent", defaultUserAgent)
	viper.SetDefault("scholar.max_retries", 4)
	viper.SetDefault("scholar.base_delay", "5s")
	viper.SetDefault("scholar.pre_pause", "3s")

	viper.SetDefault("completion.delay", "500ms")

	viper.SetDefault("ai.max_retries", 2)
	viper.SetDefault("ai.temperature", 0.1)
	viper.SetDefault("ai.response_format", string(types.ResponseJSONObject))

	viper.SetDefault("taxonomy.default", "CreativeWork")

	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.formats", []string{string(types.FormatJSON)})
	viper.SetDefault("output.html", true)
}

// loadConfig unmarshals the merged configuration and fills API keys left
// empty from .secrets/.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	secrets.Apply(loadedSecrets, &cfg)
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
