// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scopus queries the Elsevier Scopus API for author profiles,
// publication lists and citation overviews. Every request is memoized in a
// cache.Cache keyed by its signature, so repeating a query with the same
// parameters never touches the network twice.
package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scopuscite/internal/cache"
	"github.com/pdiddy/scopuscite/internal/httputil"
	"github.com/pdiddy/scopuscite/internal/observability"
	"github.com/pdiddy/scopuscite/pkg/types"
)

// DefaultBaseURL is the Elsevier content API root. Declared as a var so
// tests can substitute an httptest server.
var DefaultBaseURL = "https://api.elsevier.com/content"

const (
	// DefaultRequestsPerSecond matches the per-key Scopus throttle.
	DefaultRequestsPerSecond = 5.0

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 60 * time.Second

	defaultUserAgent = "scopuscite/1.0"
	apiKeyHeader     = "X-ELS-APIKey"
	maxBodyBytes     = 64 << 20
)

// Endpoint paths relative to the base URL.
const (
	searchEndpoint   = "search/scopus"
	authorEndpoint   = "author"
	citationEndpoint = "abstract/citations"
)

// Operation names recorded with every cache entry. They group entries for
// cache.ClearOperation.
const (
	OpAuthorsByJournalYear = "authors-by-journal-year"
	OpAuthorInfo           = "author-info"
	OpAuthorPublications   = "author-publications"
	OpPublicationInfo      = "publication-info"
)

// Operations lists every operation name in pipeline order.
var Operations = []string{OpAuthorsByJournalYear, OpAuthorInfo, OpAuthorPublications, OpPublicationInfo}

// Quota is the rate-limit state reported by the last response.
type Quota struct {
	Remaining int       `json:"remaining" yaml:"remaining"`
	Limit     int       `json:"limit" yaml:"limit"`
	Reset     time.Time `json:"reset,omitempty" yaml:"reset,omitempty"`

	// Known is false until a response carried the rate-limit headers.
	Known bool `json:"known" yaml:"known"`
}

// Client runs Scopus queries through a response cache.
type Client struct {
	cfg     types.ScopusConfig
	http    *http.Client
	pacer   *httputil.Limiter
	cache   *cache.Cache
	log     zerolog.Logger
	metrics *observability.Metrics

	quota    Quota
	notFound int
}

// New creates a client. The cache is required; metrics may be nil.
func New(cfg types.ScopusConfig, c *cache.Cache, log zerolog.Logger, metrics *observability.Metrics) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("scopus client: API key is required: %w", ErrUnauthorized)
	}
	if c == nil {
		return nil, errors.New("scopus client: cache is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		pacer:   httputil.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cache:   c,
		log:     log.With().Str("component", "scopus").Logger(),
		metrics: metrics,
	}, nil
}

// Quota returns the rate-limit state from the most recent response.
func (c *Client) Quota() Quota { return c.quota }

// NotFound returns how many citation batches were skipped because the API
// reported RESOURCE_NOT_FOUND.
func (c *Client) NotFound() int { return c.notFound }

// get performs one GET against endpoint and returns the validated body.
// Error statuses and service-error payloads become *APIError; a body that
// is not JSON becomes ErrMalformedResponse.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.http, req, httputil.RetryOptions{
		MaxRetries: c.cfg.MaxRetries,
		Pacer:      c.pacer,
		OnRetry: func(attempt, status int, backoff time.Duration) {
			c.metrics.RecordRetry()
			c.log.Warn().
				Str("endpoint", endpoint).
				Int("status", status).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("gateway failure, retrying")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scopus %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordRequest(endpoint, resp.StatusCode, time.Since(start).Seconds())
	c.updateQuota(resp.Header)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("scopus %s: reading response: %w", endpoint, err)
	}

	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Int("remaining", c.quota.Remaining).
		Msg("response received")

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(endpoint, resp.StatusCode, body)
	}
	if !json.Valid(body) {
		return nil, malformed(endpoint, errors.New("body is not valid JSON"))
	}

	var se serviceErrorResponse
	if err := json.Unmarshal(body, &se); err == nil {
		if code, msg, ok := se.code(); ok {
			return nil, &APIError{StatusCode: resp.StatusCode, Code: code, Message: msg, Endpoint: endpoint}
		}
	}
	return body, nil
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Endpoint: endpoint}
	var se serviceErrorResponse
	if json.Unmarshal(body, &se) == nil {
		if code, msg, ok := se.code(); ok {
			apiErr.Code, apiErr.Message = code, msg
			return apiErr
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	apiErr.Message = msg
	return apiErr
}

func (c *Client) updateQuota(h http.Header) {
	remaining, errR := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	limit, errL := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	if errR != nil && errL != nil {
		return
	}
	q := Quota{Remaining: remaining, Limit: limit, Known: true}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		q.Reset = time.Unix(reset, 0).UTC()
	}
	c.quota = q
	c.metrics.SetQuotaRemaining(remaining)
	c.log.Trace().Int("remaining", remaining).Int("limit", limit).Msg("quota")
}

// cachedGet memoizes one request under its own signature. validate runs
// before the payload is stored, so a response of the wrong shape is never
// cached.
func (c *Client) cachedGet(ctx context.Context, op, endpoint string, params url.Values, validate func([]byte) error) ([]byte, error) {
	sig := cache.NewSignature(op, endpoint, params)
	return c.cache.GetOrFetch(ctx, sig, func(ctx context.Context) ([]byte, error) {
		body, err := c.get(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}
		if err := validate(body); err != nil {
			return nil, malformed(endpoint, err)
		}
		return body, nil
	})
}

// batchFetch fetches the entries for one chunk of ids keyed by id. Ids the
// API did not return are simply absent.
type batchFetch func(ctx context.Context, chunk []string) (map[string]json.RawMessage, error)

// cachedBatch resolves ids one signature per id. Misses are fetched in
// chunks of size; every id of a fetched chunk is stored, ids the API did not
// return as JSON null, so no id is ever requested twice. A chunk rejected
// with RESOURCE_NOT_FOUND is skipped, counted and left uncached.
func (c *Client) cachedBatch(ctx context.Context, ids []string, size int, sigFor func(id string) cache.Signature, fetch batchFetch) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(ids))
	var missing []string
	for _, id := range ids {
		payload, ok, err := c.cache.Lookup(ctx, sigFor(id))
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = payload
			continue
		}
		missing = append(missing, id)
	}

	for i, chunk := range chunks(missing, size) {
		c.log.Debug().Int("chunk", i).Int("ids", len(chunk)).Msg("fetching batch")
		got, err := fetch(ctx, chunk)
		if errors.Is(err, ErrNotFound) {
			c.notFound++
			c.log.Warn().Err(err).Int("chunk", i).Msg("batch not found, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, id := range chunk {
			payload, ok := got[id]
			if !ok {
				payload = json.RawMessage("null")
			}
			if err := c.cache.Put(ctx, sigFor(id), payload); err != nil {
				return nil, err
			}
			out[id] = payload
		}
	}
	return out, nil
}

// chunks splits ids into consecutive slices of at most size.
func chunks(ids []string, size int) [][]string {
	var out [][]string
	for size < len(ids) {
		ids, out = ids[size:], append(out, ids[:size:size])
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// uniqueSorted returns the distinct non-empty ids in ascending order.
func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
