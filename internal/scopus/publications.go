// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/scopuscite/internal/cache"
	"github.com/pdiddy/scopuscite/pkg/types"
)

const (
	authorQueryChunk  = 10
	citationBatchSize = 25
	citationView      = "STANDARD"
)

// AuthorPublications maps every requested author id to the sorted Scopus ids
// of their publications. Authors are queried ten at a time; a chunk whose
// results include a truncated author list is re-queried one author at a
// time, since the truncated entries cannot be attributed.
func (c *Client) AuthorPublications(ctx context.Context, ids []string) (map[string][]string, error) {
	ids = uniqueSorted(ids)
	pubs := make(map[string]map[string]bool, len(ids))
	for _, id := range ids {
		pubs[id] = make(map[string]bool)
	}

	truncated := 0
	for i, chunk := range chunks(ids, authorQueryChunk) {
		terms := make([]string, len(chunk))
		for j, id := range chunk {
			terms[j] = "AU-ID(" + id + ")"
		}

		entries, err := c.search(ctx, OpAuthorPublications, strings.Join(terms, " OR "))
		if err != nil {
			return nil, fmt.Errorf("author publications: %w", err)
		}

		inChunk := make(map[string]bool, len(chunk))
		for _, id := range chunk {
			inChunk[id] = true
		}

		fallback := false
		for _, e := range entries {
			sid := e.scopusID()
			if sid == "" {
				continue
			}
			if e.truncated() {
				fallback = true
				truncated++
				continue
			}
			for _, a := range e.Authors {
				if inChunk[a.AuthID] {
					pubs[a.AuthID][sid] = true
				}
			}
		}

		c.log.Debug().Int("chunk", i).Int("results", len(entries)).Bool("fallback", fallback).Msg("author chunk searched")

		if !fallback {
			continue
		}
		for _, id := range chunk {
			single, err := c.search(ctx, OpAuthorPublications, "AU-ID("+id+")")
			if err != nil {
				return nil, fmt.Errorf("author publications for %s: %w", id, err)
			}
			for _, e := range single {
				if sid := e.scopusID(); sid != "" {
					pubs[id][sid] = true
				}
			}
		}
	}

	out := make(map[string][]string, len(pubs))
	for id, set := range pubs {
		list := make([]string, 0, len(set))
		for sid := range set {
			list = append(list, sid)
		}
		sort.Strings(list)
		out[id] = list
	}

	c.log.Info().
		Int("authors", len(ids)).
		Int("publications", len(UniquePublications(out))).
		Int("truncated", truncated).
		Msg("author publications retrieved")
	return out, nil
}

// UniquePublications flattens an author → publications map into the sorted
// set of publication ids.
func UniquePublications(byAuthor map[string][]string) []string {
	var ids []string
	for _, list := range byAuthor {
		ids = append(ids, list...)
	}
	return uniqueSorted(ids)
}

// PublicationInfo returns the citation overview of every requested
// publication over years, counting citations of type ct. Records come back
// in ascending id order; ids unknown to the API are left out.
func (c *Client) PublicationInfo(ctx context.Context, ids []string, years types.YearRange, ct types.CiteType) ([]types.PublicationRecord, error) {
	if err := years.Validate(); err != nil {
		return nil, fmt.Errorf("publication info: %w", err)
	}
	if ct == "" {
		ct = types.CiteAll
	}
	if _, err := types.ParseCiteType(string(ct)); err != nil {
		return nil, fmt.Errorf("publication info: %w", err)
	}

	ids = uniqueSorted(ids)
	base := url.Values{"date": {years.String()}}
	if ct != types.CiteAll {
		base.Set("citation", string(ct))
	}

	sigFor := func(id string) cache.Signature {
		params := cloneValues(base)
		params.Set("scopus_id", id)
		return cache.NewSignature(OpPublicationInfo, citationEndpoint, params)
	}
	fetch := func(ctx context.Context, chunk []string) (map[string]json.RawMessage, error) {
		params := cloneValues(base)
		params.Set("scopus_id", strings.Join(chunk, ","))
		params.Set("view", citationView)
		return c.fetchCitations(ctx, params)
	}

	payloads, err := c.cachedBatch(ctx, ids, citationBatchSize, sigFor, fetch)
	if err != nil {
		return nil, fmt.Errorf("publication info: %w", err)
	}

	records := make([]types.PublicationRecord, 0, len(ids))
	for _, id := range ids {
		raw, ok := payloads[id]
		if !ok {
			continue
		}
		rec, ok, err := decodeCiteInfo(raw, years, ct)
		if err != nil {
			return nil, fmt.Errorf("publication info: decoding %s: %w", id, errors.Join(ErrMalformedResponse, err))
		}
		if ok {
			records = append(records, rec)
		}
	}

	c.log.Info().
		Int("requested", len(ids)).
		Int("found", len(records)).
		Int("not_found_batches", c.notFound).
		Str("years", years.String()).
		Str("cite_type", string(ct)).
		Msg("publication info retrieved")
	return records, nil
}

func (c *Client) fetchCitations(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	body, err := c.get(ctx, citationEndpoint, params)
	if err != nil {
		return nil, err
	}

	var resp citationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed(citationEndpoint, err)
	}
	if resp.Response == nil {
		return nil, malformed(citationEndpoint, errors.New("missing abstract-citations-response"))
	}

	out := make(map[string]json.RawMessage)
	for _, raw := range resp.entries() {
		var ci citeInfo
		if err := json.Unmarshal(raw, &ci); err != nil {
			return nil, malformed(citationEndpoint, err)
		}
		if id := ci.id(); id != "" {
			out[id] = raw
		}
	}
	return out, nil
}

func cloneValues(v url.Values) url.Values {
	cp := make(url.Values, len(v))
	for k, vs := range v {
		cp[k] = append([]string(nil), vs...)
	}
	return cp
}
