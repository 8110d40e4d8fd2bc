// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import "github.com/pdiddy/scopuscite/pkg/types"

// Predicate selects author rows.
type Predicate func(types.AuthorRecord) bool

// FilterAuthors returns the authors for which keep is true, preserving order.
// A nil keep returns authors unchanged.
func FilterAuthors(authors []types.AuthorRecord, keep Predicate) []types.AuthorRecord {
	if keep == nil {
		return authors
	}
	out := make([]types.AuthorRecord, 0, len(authors))
	for _, a := range authors {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// FirstPubNoLaterThan keeps authors whose first publication is in year or
// earlier. Authors with an unknown first publication are dropped.
func FirstPubNoLaterThan(year int) Predicate {
	return func(a types.AuthorRecord) bool {
		return a.FirstPub > 0 && a.FirstPub <= year
	}
}

// AuthorIDs returns the ids of authors in order.
func AuthorIDs(authors []types.AuthorRecord) []string {
	ids := make([]string, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	return ids
}

// TotalPubs sums the document counts Scopus reports for authors.
func TotalPubs(authors []types.AuthorRecord) int {
	n := 0
	for _, a := range authors {
		n += a.NPubs
	}
	return n
}
