// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scopuscite CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the scopuscite CLI.
var rootCmd = &cobra.Command{
	Use:   "scopuscite",
	Short: "Query Scopus for author and citation data, cached locally",
	Long: `scopuscite queries the Scopus API for author profiles, publication lists
and citation overviews. Every response is cached in a local SQLite file so
repeated queries never spend API quota twice, and per-author citation
summaries are aggregated from the publication data.

The API key is read from --api-key, the key file (INI [Authentication]
APIKey, or YAML authentication.apikey), SCOPUS_API_KEY, or
.secrets/scopus-api-key, in that order.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./scopuscite.yaml or ~/.config/scopuscite/scopuscite.yaml)")
	pf.String("api-key", "", "Scopus API key")
	pf.String("key-file", ".config", "file holding the API key under [Authentication] APIKey")
	pf.String("cache-dir", "data/local_cache", "directory holding cache files")
	pf.String("cache-name", "cache", "cache file name, without extension")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.Float64("rate", 5, "maximum API requests per second (0 or less disables pacing)")
	pf.Int("max-retries", 3, "retries of 503/504 gateway failures (negative disables)")

	bindFlag("api_key", "api-key")
	bindFlag("key_file", "key-file")
	bindFlag("cache.dir", "cache-dir")
	bindFlag("cache.name", "cache-name")
	bindFlag("log.level", "log-level")
	bindFlag("log.format", "log-format")
	bindFlag("metrics_file", "metrics-file")
	bindFlag("scopus.requests_per_second", "rate")
	bindFlag("scopus.max_retries", "max-retries")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: could not load .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scopuscite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scopuscite"))
		}
	}

	viper.SetEnvPrefix("SCOPUSCITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
