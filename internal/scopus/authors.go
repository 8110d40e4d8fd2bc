// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/scopuscite/internal/cache"
	"github.com/pdiddy/scopuscite/pkg/types"
)

const (
	searchPageSize  = 200
	authorBatchSize = 25
	searchFields    = "eid,author"
	authorView      = "ENHANCED"
)

// JournalYearQuery selects the publications of one journal in one year.
// Journal matches the source title, ISSN the serial number; either or both
// may be set.
type JournalYearQuery struct {
	Year    int
	Journal string
	ISSN    string
}

// Query renders the Scopus advanced search expression.
func (q JournalYearQuery) Query() string {
	parts := []string{"PUBYEAR IS " + strconv.Itoa(q.Year)}
	if j := strings.TrimSpace(q.Journal); j != "" {
		parts = append(parts, "SRCTITLE("+j+")")
	}
	if issn := strings.TrimSpace(q.ISSN); issn != "" {
		parts = append(parts, "ISSN("+issn+")")
	}
	return strings.Join(parts, " AND ")
}

// AuthorsByJournalYear returns the sorted ids of every author of every
// publication matching q.
func (c *Client) AuthorsByJournalYear(ctx context.Context, q JournalYearQuery) ([]string, error) {
	if q.Year <= 0 {
		return nil, fmt.Errorf("authors by journal year: invalid year %d", q.Year)
	}

	entries, err := c.search(ctx, OpAuthorsByJournalYear, q.Query())
	if err != nil {
		return nil, fmt.Errorf("authors by journal year: %w", err)
	}

	var ids []string
	for _, e := range entries {
		for _, a := range e.Authors {
			ids = append(ids, a.AuthID)
		}
	}
	ids = uniqueSorted(ids)

	c.log.Info().
		Str("query", q.Query()).
		Int("publications", len(entries)).
		Int("authors", len(ids)).
		Msg("authors retrieved")
	return ids, nil
}

// AuthorInfo returns one record per requested author, in ascending id order.
// Ids the API does not know and tombstoned profiles are left out.
func (c *Client) AuthorInfo(ctx context.Context, ids []string) ([]types.AuthorRecord, error) {
	ids = uniqueSorted(ids)
	sigFor := func(id string) cache.Signature {
		return cache.NewSignature(OpAuthorInfo, authorEndpoint, url.Values{
			"author_id": {id},
			"view":      {authorView},
		})
	}

	payloads, err := c.cachedBatch(ctx, ids, authorBatchSize, sigFor, c.fetchAuthors)
	if err != nil {
		return nil, fmt.Errorf("author info: %w", err)
	}

	records := make([]types.AuthorRecord, 0, len(ids))
	for _, id := range ids {
		raw, ok := payloads[id]
		if !ok {
			continue
		}
		rec, ok, err := decodeAuthor(raw)
		if err != nil {
			return nil, fmt.Errorf("author info: decoding %s: %w", id, errors.Join(ErrMalformedResponse, err))
		}
		if ok {
			records = append(records, rec)
		}
	}

	c.log.Info().Int("requested", len(ids)).Int("found", len(records)).Msg("author info retrieved")
	return records, nil
}

func (c *Client) fetchAuthors(ctx context.Context, chunk []string) (map[string]json.RawMessage, error) {
	body, err := c.get(ctx, authorEndpoint, url.Values{
		"author_id": {strings.Join(chunk, ",")},
		"view":      {authorView},
	})
	if err != nil {
		return nil, err
	}

	var resp authorRetrievalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed(authorEndpoint, err)
	}
	if resp.List == nil && resp.Authors == nil {
		return nil, malformed(authorEndpoint, errors.New("missing author-retrieval-response"))
	}

	out := make(map[string]json.RawMessage, len(chunk))
	for _, raw := range resp.entries() {
		var a authorEntry
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, malformed(authorEndpoint, err)
		}
		if id := a.id(); id != "" {
			out[id] = raw
		}
	}
	return out, nil
}

// search runs one advanced search and returns the entries of every page.
// Each page is cached under its own signature.
func (c *Client) search(ctx context.Context, op, query string) ([]searchEntry, error) {
	var all []searchEntry
	for start := 0; ; {
		params := url.Values{
			"query": {query},
			"field": {searchFields},
			"count": {strconv.Itoa(searchPageSize)},
			"start": {strconv.Itoa(start)},
		}
		body, err := c.cachedGet(ctx, op, searchEndpoint, params, validateSearch)
		if err != nil {
			return nil, err
		}

		var page searchResponse
		if err := json.Unmarshal(body, &page); err != nil || page.Results == nil {
			return nil, malformed(searchEndpoint, errors.New("missing search-results"))
		}

		entries := page.Results.Entries
		for _, e := range entries {
			if e.Error == "" {
				all = append(all, e)
			}
		}

		total := int(page.Results.TotalResults)
		start += len(entries)
		if total == 0 || len(entries) == 0 || start >= total {
			return all, nil
		}
		c.log.Debug().Str("query", query).Int("start", start).Int("total", total).Msg("next search page")
	}
}

func validateSearch(body []byte) error {
	var page searchResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return err
	}
	if page.Results == nil {
		return errors.New("missing search-results")
	}
	return nil
}
