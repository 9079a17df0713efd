// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the quality-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quality-engine/internal/evaluate"
	"github.com/pdiddy/quality-engine/internal/secrets"
	"github.com/pdiddy/quality-engine/internal/store"
	"github.com/pdiddy/quality-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the quality-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "quality-engine",
	Short: "Tiered translation quality evaluation",
	Long: `quality-engine scores translations against their source text. Cheap
heuristic and terminology checks run on every translation; AI evaluation
runs only when those checks find something worth a closer look, and
content-addressed caching keeps repeat evaluations free.

Each operation is a subcommand: evaluate scores one translation, batch
scores many, glossary and store manage the backing data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./quality-engine.yaml or ~/.config/quality-engine/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database (default: quality.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("quality-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "quality-engine"))
		}
	}

	viper.SetDefault("store.db_path", "quality.db")
	viper.SetDefault("ai.provider", "anthropic")
	viper.SetDefault("ai.model", "claude-sonnet-4-5")
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("ai.max_retries", 2)
	viper.SetDefault("batch.concurrency", 3)
	viper.SetDefault("batch.related_limit", 10)
	viper.SetDefault("source_locale", "en")

	viper.SetEnvPrefix("QUALITY_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig assembles the full engine configuration from viper plus
// loaded secrets.
func engineConfig() types.EngineConfig {
	timeout, err := time.ParseDuration(viper.GetString("ai.timeout"))
	if err != nil {
		timeout = 0
	}
	provider := viper.GetString("ai.provider")
	return types.EngineConfig{
		AI: types.AIConfig{
			Provider:   provider,
			Model:      viper.GetString("ai.model"),
			APIKey:     secrets.APIKeyFor(provider, loadedSecrets),
			BaseURL:    viper.GetString("ai.base_url"),
			Timeout:    timeout,
			MaxRetries: viper.GetInt("ai.max_retries"),
		},
		Store: types.StoreConfig{DBPath: viper.GetString("store.db_path")},
		Batch: types.BatchConfig{
			Concurrency:  viper.GetInt("batch.concurrency"),
			RelatedLimit: viper.GetInt("batch.related_limit"),
		},
	}
}

// openStore opens the configured SQLite database, bootstrapping the schema.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := engineConfig().Store
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	return store.Open(cfg)
}

// newOrchestrator wires the evaluation orchestrator onto an open store.
func newOrchestrator(s *store.Store) *evaluate.Orchestrator {
	cfg := engineConfig()
	return &evaluate.Orchestrator{
		Store:        s,
		Glossary:     s,
		KeyCtx:       s,
		Config:       s,
		AI:           cfg.AI,
		SourceLocale: viper.GetString("source_locale"),
		RelatedLimit: cfg.Batch.RelatedLimit,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
