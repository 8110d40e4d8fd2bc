// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for outgoing API requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scopuscite/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScopusConfig holds settings for the Scopus API client.
type ScopusConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the Elsevier content API root (default https://api.elsevier.com/content).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is sent in the X-ELS-APIKey header. Never serialized.
	APIKey string `json:"-" yaml:"-"`

	// RequestsPerSecond paces outgoing requests (default 5, the Scopus quota).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the token bucket size for request pacing (default 1).
	Burst int `json:"burst" yaml:"burst"`

	// MaxRetries bounds retries of 503/504 gateway responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CacheConfig locates the response cache file <Dir>/<Name>.db.
type CacheConfig struct {
	Dir  string `json:"dir" yaml:"dir"`
	Name string `json:"name" yaml:"name"`
}

// ReloadFlags force individual download stages to drop their cached
// responses before querying.
type ReloadFlags struct {
	AuthorList bool `json:"author_list" yaml:"author_list"`
	AuthorInfo bool `json:"author_info" yaml:"author_info"`
	AuthorPub  bool `json:"author_pub" yaml:"author_pub"`
	PubInfo    bool `json:"pub_info" yaml:"pub_info"`
}

// DownloadConfig describes one journal-year download run.
type DownloadConfig struct {
	// Name prefixes every output file (default "<journal or issn>_<year>").
	Name string `json:"name" yaml:"name"`

	Year    int    `json:"year" yaml:"year"`
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	ISSN    string `json:"issn,omitempty" yaml:"issn,omitempty"`

	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Years is the citation range requested for every publication.
	Years    YearRange `json:"years" yaml:"years"`
	CiteType CiteType  `json:"cite_type" yaml:"cite_type"`

	// FirstPubBefore keeps only authors whose first publication is no later
	// than this year. Zero disables the filter.
	FirstPubBefore int `json:"first_pub_before,omitempty" yaml:"first_pub_before,omitempty"`

	Reload ReloadFlags `json:"reload" yaml:"reload"`
}
