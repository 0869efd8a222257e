// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the recipe-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recipe-engine/internal/log"
	"github.com/pdiddy/recipe-engine/internal/secrets"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds one file per credential.
const secretsDir = ".secrets/"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the recipe-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "recipe-engine",
	Short: "Build recipes from ingredients and score their nutrition",
	Long: `recipe-engine assembles recipes from ingredient records, scales each
ingredient's per-100 nutrient values to the quantity used, and keeps the
recipe totals, additive list and nutrition score up to date.

A draft is edited with the draft subcommands and submitted to the local
recipe store, which the recipes subcommands query and export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.SetLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		s, err := secrets.Load(cmd.Context(), secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			log.Debug(cmd.Context(), "loaded secrets", "keys", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./recipe-engine.yaml or ~/.config/recipe-engine/recipe-engine.yaml)")
	pf.String("store-dir", "data", "directory holding recipes.db")
	pf.String("draft", filepath.Join("drafts", "current.yaml"), "recipe draft file")
	pf.String("classifier", string(types.ClassifierNutriScore), "score classifier: nutriscore or http")
	pf.String("classifier-url", "", "endpoint of the http classifier")
	pf.String("log-level", "info", "log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"store.dir":          "store-dir",
		"draft":              "draft",
		"classifier.backend": "classifier",
		"classifier.url":     "classifier-url",
		"log_level":          "log-level",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetDefault("classifier.timeout", 5*time.Second)
	viper.SetDefault("classifier.max_retries", 2)
	viper.SetDefault("store.default_limit", 50)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("recipe-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "recipe-engine"))
		}
	}

	viper.SetEnvPrefix("RECIPE_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig decodes the merged flag, env and file settings. The
// classifier API key comes from .secrets/ unless set explicitly.
func engineConfig() (types.EngineConfig, error) {
	var cfg types.EngineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Classifier.APIKey == "" {
		cfg.Classifier.APIKey = loadedSecrets.Get(secrets.ClassifierAPIKey)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
