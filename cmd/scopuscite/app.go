// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/scopuscite/internal/cache"
	"github.com/pdiddy/scopuscite/internal/observability"
	"github.com/pdiddy/scopuscite/internal/scopus"
	"github.com/pdiddy/scopuscite/internal/secrets"
	"github.com/pdiddy/scopuscite/pkg/types"
)

const (
	metricsNamespace = "scopuscite"
	secretsDir       = ".secrets/"
	apiKeyEnv        = "SCOPUS_API_KEY"
)

// app holds what a subcommand needs: logger, metrics, cache and, when a
// command talks to the API, the Scopus client.
type app struct {
	log     zerolog.Logger
	metrics *observability.Metrics
	cache   *cache.Cache
	client  *scopus.Client
}

// newApp builds the logger, metrics and cache from viper settings. With
// withClient it also resolves the API key and creates the client.
func newApp(withClient bool) (*app, error) {
	log := observability.NewLogger(loggingConfig())
	metrics := observability.NewMetrics(metricsNamespace)

	c, err := cache.New(cacheConfig(), log, metrics)
	if err != nil {
		return nil, err
	}
	a := &app{log: log, metrics: metrics, cache: c}
	if !withClient {
		return a, nil
	}

	a.client, err = newClient(c, log, metrics)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}
	return a, nil
}

func newClient(c *cache.Cache, log zerolog.Logger, metrics *observability.Metrics) (*scopus.Client, error) {
	key, err := secrets.ResolveAPIKey(secrets.Sources{
		Direct:     viper.GetString("api_key"),
		ConfigFile: viper.GetString("key_file"),
		Env:        os.Getenv(apiKeyEnv),
		SecretsDir: secretsDir,
	})
	if err != nil {
		if errors.Is(err, secrets.ErrNoAPIKey) {
			return nil, fmt.Errorf("%w: use --api-key, %s, %s or %s%s",
				err, viper.GetString("key_file"), apiKeyEnv, secretsDir, secrets.KeyFile)
		}
		return nil, err
	}

	return scopus.New(scopusConfig(key), c, log, metrics)
}

// Close reports the remaining quota, writes the metrics file when one is
// configured and closes the cache.
func (a *app) Close() error {
	if a.client != nil {
		if q := a.client.Quota(); q.Known {
			a.log.Info().Int("remaining", q.Remaining).Int("limit", q.Limit).Msg("API quota")
		}
	}

	var errs []error
	if path := viper.GetString("metrics_file"); path != "" {
		errs = append(errs, a.metrics.WriteTextfile(path))
	}
	errs = append(errs, a.cache.Close())
	return errors.Join(errs...)
}

// loggingConfig overlays the log flags on the default logger settings.
func loggingConfig() observability.LoggingConfig {
	cfg := observability.DefaultLoggingConfig()
	if v := viper.GetString("log.level"); v != "" {
		cfg.Level = v
	}
	if v := viper.GetString("log.format"); v != "" {
		cfg.Format = v
	}
	return cfg
}

func cacheConfig() types.CacheConfig {
	return types.CacheConfig{
		Dir:  viper.GetString("cache.dir"),
		Name: viper.GetString("cache.name"),
	}
}

func scopusConfig(key string) types.ScopusConfig {
	cfg := types.ScopusConfig{
		BaseURL:           viper.GetString("scopus.base_url"),
		APIKey:            key,
		RequestsPerSecond: viper.GetFloat64("scopus.requests_per_second"),
		Burst:             viper.GetInt("scopus.burst"),
		MaxRetries:        viper.GetInt("scopus.max_retries"),
	}
	cfg.Timeout = viper.GetDuration("scopus.timeout")
	cfg.UserAgent = "scopuscite/" + version
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = -1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return cfg
}
