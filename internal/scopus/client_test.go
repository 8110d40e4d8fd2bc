// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scopuscite/internal/cache"
	"github.com/pdiddy/scopuscite/internal/httputil"
	"github.com/pdiddy/scopuscite/internal/observability"
	"github.com/pdiddy/scopuscite/pkg/types"
)

const testKey = "test-key"

// --- test helpers ---

type testEnv struct {
	client   *Client
	cache    *cache.Cache
	metrics  *observability.Metrics
	requests *atomic.Int32
}

// newTestEnv starts an httptest server running handler and returns a client
// pointed at it with pacing disabled.
func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	orig := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = orig })

	var n atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		if r.Header.Get(apiKeyHeader) != testKey {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error-response":{"error-code":"AUTHENTICATION_ERROR","error-message":"bad key"}}`)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	m := observability.NewMetrics("test")
	c, err := cache.New(types.CacheConfig{Dir: t.TempDir(), Name: "scopus"}, zerolog.Nop(), m)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	client, err := New(types.ScopusConfig{
		BaseURL:           srv.URL,
		APIKey:            testKey,
		RequestsPerSecond: -1,
		MaxRetries:        2,
	}, c, zerolog.Nop(), m)
	require.NoError(t, err)

	return &testEnv{client: client, cache: c, metrics: m, requests: &n}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

type entry = map[string]any

func searchPage(total int, entries ...entry) map[string]any {
	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = e
	}
	return map[string]any{"search-results": map[string]any{
		"opensearch:totalResults": strconv.Itoa(total),
		"entry":                   list,
	}}
}

func pub(eid string, authors ...string) entry {
	list := make([]any, len(authors))
	for i, a := range authors {
		list[i] = map[string]any{"authid": a}
	}
	return entry{"eid": "2-s2.0-" + eid, "author": list}
}

func author(id string) entry {
	return entry{
		"coredata": map[string]any{
			"dc:identifier":  "AUTHOR_ID:" + id,
			"document-count": "12",
			"citation-count": "150",
			"cited-by-count": 120,
		},
		"h-index":        "5",
		"coauthor-count": "20",
		"author-profile": map[string]any{
			"preferred-name": map[string]any{
				"indexed-name": "Name " + id,
				"given-name":   "Given",
				"surname":      "Sur" + id,
			},
			"publication-range": map[string]any{"@start": "1990", "@end": "2019"},
			"affiliation-current": map[string]any{
				"affiliation": []any{
					map[string]any{"ip-doc": map[string]any{"afdispname": "Uni " + id}},
					map[string]any{"ip-doc": map[string]any{"afdispname": "Other"}},
				},
			},
		},
	}
}

func citeEntry(id string, cc []int, pcc, lcc int, authors ...string) entry {
	ccList := make([]any, len(cc))
	for i, n := range cc {
		ccList[i] = map[string]any{"$": strconv.Itoa(n)}
	}
	authList := make([]any, len(authors))
	for i, a := range authors {
		authList[i] = map[string]any{"authid": a}
	}
	return entry{
		"dc:identifier":         "SCOPUS_ID:" + id,
		"dc:title":              "Title " + id,
		"prism:publicationName": "J",
		"sort-year":             "2001",
		"author":                authList,
		"cc":                    ccList,
		"pcc":                   strconv.Itoa(pcc),
		"lcc":                   strconv.Itoa(lcc),
	}
}

// --- New ---

func TestNewRequiresAPIKey(t *testing.T) {
	c, err := cache.New(types.CacheConfig{Dir: t.TempDir()}, zerolog.Nop(), nil)
	require.NoError(t, err)

	_, err = New(types.ScopusConfig{}, c, zerolog.Nop(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = New(types.ScopusConfig{APIKey: "k"}, nil, zerolog.Nop(), nil)
	assert.Error(t, err)
}

// --- AuthorsByJournalYear ---

func TestJournalYearQuery(t *testing.T) {
	tests := []struct {
		name string
		q    JournalYearQuery
		want string
	}{
		{"year only", JournalYearQuery{Year: 2016}, "PUBYEAR IS 2016"},
		{"journal", JournalYearQuery{Year: 2016, Journal: "Nature"}, "PUBYEAR IS 2016 AND SRCTITLE(Nature)"},
		{"issn", JournalYearQuery{Year: 2016, ISSN: "0028-0836"}, "PUBYEAR IS 2016 AND ISSN(0028-0836)"},
		{"both", JournalYearQuery{Year: 2016, Journal: "Nature", ISSN: "0028-0836"}, "PUBYEAR IS 2016 AND SRCTITLE(Nature) AND ISSN(0028-0836)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Query())
		})
	}
}

func TestAuthorsByJournalYearPagesAndDedups(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/scopus", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "PUBYEAR IS 2016 AND SRCTITLE(Nature)", q.Get("query"))
		assert.Equal(t, "eid,author", q.Get("field"))
		assert.Equal(t, "200", q.Get("count"))
		assert.Empty(t, q.Get("apikey"))

		switch q.Get("start") {
		case "0":
			writeJSON(w, searchPage(3, pub("1", "b", "a"), pub("2", "a", "c")))
		case "2":
			writeJSON(w, searchPage(3, pub("3", "d")))
		default:
			t.Errorf("unexpected start %q", q.Get("start"))
		}
	})

	ids, err := env.client.AuthorsByJournalYear(context.Background(), JournalYearQuery{Year: 2016, Journal: "Nature"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.Equal(t, int32(2), env.requests.Load())
}

func TestAuthorsByJournalYearAtMostOneRequest(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, searchPage(1, pub("1", "a")))
	})
	ctx := context.Background()
	q := JournalYearQuery{Year: 2010, ISSN: "1234-5678"}

	first, err := env.client.AuthorsByJournalYear(ctx, q)
	require.NoError(t, err)
	second, err := env.client.AuthorsByJournalYear(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), env.requests.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CacheMisses))
}

func TestAuthorsByJournalYearEmptyResult(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, searchPage(0, entry{"@_fa": "true", "error": "Result set was empty"}))
	})

	ids, err := env.client.AuthorsByJournalYear(context.Background(), JournalYearQuery{Year: 1800})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAuthorsByJournalYearRejectsYear(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := env.client.AuthorsByJournalYear(context.Background(), JournalYearQuery{Journal: "x"})
	assert.Error(t, err)
	assert.Equal(t, int32(0), env.requests.Load())
}

// --- failure modes ---

func TestMalformedResponseIsErrorAndNotCached(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `<html>gateway</html>`)
			return
		}
		writeJSON(w, searchPage(1, pub("1", "a")))
	})
	ctx := context.Background()
	q := JournalYearQuery{Year: 2016}

	ids, err := env.client.AuthorsByJournalYear(ctx, q)
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Nil(t, ids)

	ids, err = env.client.AuthorsByJournalYear(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestMissingEnvelopeIsMalformed(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"unexpected": true}`)
	})
	ctx := context.Background()

	_, err := env.client.AuthorsByJournalYear(ctx, JournalYearQuery{Year: 2016})
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = env.client.AuthorInfo(ctx, []string{"1"})
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = env.client.PublicationInfo(ctx, []string{"1"}, types.YearRange{Start: 2000, End: 2001}, types.CiteAll)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	n, err := env.cache.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, `{"service-error":{"status":{"statusCode":"AUTHORIZATION_ERROR","statusText":"not entitled"}}}`, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, `{"error-response":{"error-code":"TOO_MANY_REQUESTS"}}`, ErrRateLimited},
		{"quota exceeded", http.StatusTooManyRequests, `{"service-error":{"status":{"statusCode":"QUOTA_EXCEEDED"}}}`, ErrRateLimited},
		{"server error", http.StatusInternalServerError, `oops`, ErrAPI},
		{"error payload with 200", http.StatusOK, `{"service-error":{"status":{"statusCode":"INVALID_INPUT","statusText":"bad query"}}}`, ErrAPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := env.client.AuthorsByJournalYear(context.Background(), JournalYearQuery{Year: 2016})
			require.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, searchEndpoint, apiErr.Endpoint)
			assert.Equal(t, int32(1), env.requests.Load())
		})
	}
}

func TestWrongKeyIsUnauthorized(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.client.cfg.APIKey = "wrong"

	_, err := env.client.AuthorInfo(context.Background(), []string{"1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGatewayFailureRetried(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, searchPage(1, pub("1", "a")))
	})

	ids, err := env.client.AuthorsByJournalYear(context.Background(), JournalYearQuery{Year: 2016})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Retries))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Requests.WithLabelValues(searchEndpoint, "200")))
}

func TestQuotaFromHeaders(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "19876")
		w.Header().Set("X-RateLimit-Limit", "20000")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		writeJSON(w, searchPage(0))
	})
	assert.False(t, env.client.Quota().Known)

	_, err := env.client.AuthorsByJournalYear(context.Background(), JournalYearQuery{Year: 2016})
	require.NoError(t, err)

	q := env.client.Quota()
	assert.True(t, q.Known)
	assert.Equal(t, 19876, q.Remaining)
	assert.Equal(t, 20000, q.Limit)
	assert.Equal(t, int64(1700000000), q.Reset.Unix())
	assert.Equal(t, 19876.0, testutil.ToFloat64(env.metrics.QuotaRemaining))
}

// --- AuthorInfo ---

func authorHandler(t *testing.T, omit map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/author", r.URL.Path)
		assert.Equal(t, "ENHANCED", r.URL.Query().Get("view"))
		var list []any
		for _, id := range strings.Split(r.URL.Query().Get("author_id"), ",") {
			if !omit[id] {
				list = append(list, author(id))
			}
		}
		writeJSON(w, map[string]any{
			"author-retrieval-response-list": map[string]any{"author-retrieval-response": list},
		})
	}
}

func TestAuthorInfoBatchesAndCaches(t *testing.T) {
	env := newTestEnv(t, authorHandler(t, nil))
	ctx := context.Background()

	ids := make([]string, 30)
	for i := range ids {
		ids[i] = fmt.Sprintf("%03d", 30-i)
	}

	recs, err := env.client.AuthorInfo(ctx, ids)
	require.NoError(t, err)
	require.Len(t, recs, 30)
	assert.Equal(t, int32(2), env.requests.Load())
	assert.Equal(t, "001", recs[0].ID)

	again, err := env.client.AuthorInfo(ctx, ids[:10])
	require.NoError(t, err)
	assert.Len(t, again, 10)
	assert.Equal(t, int32(2), env.requests.Load())

	n, err := env.cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, n)
}

func TestAuthorInfoDecodesRecord(t *testing.T) {
	env := newTestEnv(t, authorHandler(t, nil))

	recs, err := env.client.AuthorInfo(context.Background(), []string{"42"})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, types.AuthorRecord{
		ID:          "42",
		Name:        "Name 42",
		FirstName:   "Given",
		LastName:    "Sur42",
		Affiliation: "Uni 42",
		FirstPub:    1990,
		LastPub:     2019,
		NPubs:       12,
		NCites:      150,
		NCitedBy:    120,
		NCoauthors:  20,
		HIndex:      5,
	}, recs[0])
}

func TestAuthorInfoMissingIDsAreNotRefetched(t *testing.T) {
	env := newTestEnv(t, authorHandler(t, map[string]bool{"2": true}))
	ctx := context.Background()

	recs, err := env.client.AuthorInfo(ctx, []string{"1", "2"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0].ID)

	_, err = env.client.AuthorInfo(ctx, []string{"2"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), env.requests.Load())
}

func TestAuthorInfoDropsTombstones(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		dead := author("7")
		dead["author-profile"].(map[string]any)["alias"] = map[string]any{"@current-status": "tombstone"}
		writeJSON(w, map[string]any{"author-retrieval-response": []any{dead}})
	})

	recs, err := env.client.AuthorInfo(context.Background(), []string{"7"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestAuthorInfoWrongShapeIsNotCached(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		a := author("1")
		if calls.Add(1) == 1 {
			a["author-profile"].(map[string]any)["preferred-name"] = "oops"
		}
		writeJSON(w, map[string]any{"author-retrieval-response": []any{a}})
	})
	ctx := context.Background()

	_, err := env.client.AuthorInfo(ctx, []string{"1"})
	require.ErrorIs(t, err, ErrMalformedResponse)

	n, err := env.cache.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	recs, err := env.client.AuthorInfo(ctx, []string{"1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Name 1", recs[0].Name)
	assert.Equal(t, int32(2), env.requests.Load())
}

// --- AuthorPublications ---

func TestAuthorPublications(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AU-ID(a) OR AU-ID(b)", r.URL.Query().Get("query"))
		writeJSON(w, searchPage(3,
			pub("1", "a", "x"),
			pub("2", "a", "b"),
			pub("3", "b"),
		))
	})

	got, err := env.client.AuthorPublications(context.Background(), []string{"b", "a", "a"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"a": {"1", "2"},
		"b": {"2", "3"},
	}, got)
	assert.Equal(t, []string{"1", "2", "3"}, UniquePublications(got))
}

func TestAuthorPublicationsTruncatedFallsBackPerAuthor(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "AU-ID(a) OR AU-ID(b)":
			writeJSON(w, searchPage(2,
				pub("1", "a"),
				entry{"eid": "2-s2.0-9", "message": "Author list truncated"},
			))
		case "AU-ID(a)":
			writeJSON(w, searchPage(2, pub("1", "a"), pub("9")))
		case "AU-ID(b)":
			writeJSON(w, searchPage(1, pub("9")))
		default:
			t.Errorf("unexpected query %q", r.URL.Query().Get("query"))
		}
	})

	got, err := env.client.AuthorPublications(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"a": {"1", "9"},
		"b": {"9"},
	}, got)
	assert.Equal(t, int32(3), env.requests.Load())
}

func TestAuthorPublicationsChunksOfTen(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, searchPage(0))
	})

	ids := make([]string, 21)
	for i := range ids {
		ids[i] = strconv.Itoa(100 + i)
	}
	got, err := env.client.AuthorPublications(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, got, 21)
	assert.Equal(t, []string{}, got["100"])
	assert.Equal(t, int32(3), env.requests.Load())
}

// --- PublicationInfo ---

func TestPublicationInfo(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/abstract/citations", r.URL.Path)
		assert.Equal(t, "2000-2002", q.Get("date"))
		assert.Equal(t, "exclude-self", q.Get("citation"))
		assert.Equal(t, "p1,p2", q.Get("scopus_id"))
		writeJSON(w, map[string]any{"abstract-citations-response": map[string]any{
			"citeInfoMatrix": map[string]any{"citeInfoMatrixXML": map[string]any{
				"citationMatrix": map[string]any{"citeInfo": []any{
					citeEntry("p1", []int{1, 2, 3}, 4, 5, "a", "b"),
					citeEntry("p2", []int{0, 0, 1}, 0, 0),
				}},
			}},
		}})
	})
	ctx := context.Background()
	years := types.YearRange{Start: 2000, End: 2003}

	recs, err := env.client.PublicationInfo(ctx, []string{"p2", "p1"}, years, types.CiteExcludeSelf)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, types.PublicationRecord{
		ID:             "p1",
		Title:          "Title p1",
		Journal:        "J",
		Year:           2001,
		Authors:        []string{"a", "b"},
		CitesStartYear: 2000,
		CitesByYear:    []int{1, 2, 3},
		PCC:            4,
		LCC:            5,
		NCites:         15,
		CiteType:       types.CiteExcludeSelf,
	}, recs[0])
	assert.Equal(t, 1, recs[1].NCites)

	_, err = env.client.PublicationInfo(ctx, []string{"p1"}, years, types.CiteExcludeSelf)
	require.NoError(t, err)
	assert.Equal(t, int32(1), env.requests.Load())
}

func TestPublicationInfoRangeAndCiteTypeAreSeparateSignatures(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"abstract-citations-response": map[string]any{
			"citeInfoMatrix": map[string]any{"citeInfoMatrixXML": map[string]any{
				"citationMatrix": map[string]any{"citeInfo": citeEntry("p1", []int{1}, 0, 0)},
			}},
		}})
	})
	ctx := context.Background()

	_, err := env.client.PublicationInfo(ctx, []string{"p1"}, types.YearRange{Start: 2000, End: 2001}, types.CiteAll)
	require.NoError(t, err)
	_, err = env.client.PublicationInfo(ctx, []string{"p1"}, types.YearRange{Start: 2000, End: 2002}, types.CiteAll)
	require.NoError(t, err)
	recs, err := env.client.PublicationInfo(ctx, []string{"p1"}, types.YearRange{Start: 2000, End: 2001}, types.CiteExcludeBooks)
	require.NoError(t, err)

	assert.Equal(t, int32(3), env.requests.Load())
	require.Len(t, recs, 1)
	assert.Equal(t, []int{1}, recs[0].CitesByYear)
}

func TestPublicationInfoNotFoundSkipsBatch(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"service-error":{"status":{"statusCode":"RESOURCE_NOT_FOUND","statusText":"not found"}}}`)
	})
	ctx := context.Background()
	years := types.YearRange{Start: 2000, End: 2001}

	recs, err := env.client.PublicationInfo(ctx, []string{"p1"}, years, types.CiteAll)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 1, env.client.NotFound())

	n, err := env.cache.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublicationInfoWrongShapeIsNotCached(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		info := citeEntry("p1", []int{1}, 0, 0)
		if calls.Add(1) == 1 {
			info["dc:title"] = []any{1, 2}
		}
		writeJSON(w, map[string]any{"abstract-citations-response": map[string]any{
			"citeInfoMatrix": map[string]any{"citeInfoMatrixXML": map[string]any{
				"citationMatrix": map[string]any{"citeInfo": info},
			}},
		}})
	})
	ctx := context.Background()
	years := types.YearRange{Start: 2000, End: 2001}

	_, err := env.client.PublicationInfo(ctx, []string{"p1"}, years, types.CiteAll)
	require.ErrorIs(t, err, ErrMalformedResponse)

	n, err := env.cache.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	recs, err := env.client.PublicationInfo(ctx, []string{"p1"}, years, types.CiteAll)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].NCites)
	assert.Equal(t, int32(2), env.requests.Load())
}

func TestPublicationInfoValidatesArguments(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	_, err := env.client.PublicationInfo(ctx, []string{"p1"}, types.YearRange{}, types.CiteAll)
	assert.Error(t, err)
	_, err = env.client.PublicationInfo(ctx, []string{"p1"}, types.YearRange{Start: 2000, End: 2001}, "bogus")
	assert.Error(t, err)
	assert.Equal(t, int32(0), env.requests.Load())
}

// --- helpers ---

func TestChunks(t *testing.T) {
	assert.Nil(t, chunks(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunks([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b"}}, chunks([]string{"a", "b"}, 2))
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueSorted([]string{"b", " a", "", "b"}))
	assert.Equal(t, []string{}, uniqueSorted(nil))
}
