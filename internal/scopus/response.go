// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pdiddy/scopuscite/pkg/types"
)

const (
	authorIDPrefix = "AUTHOR_ID:"
	scopusIDPrefix = "SCOPUS_ID:"
	eidPrefix      = "2-s2.0-"
)

// flexInt decodes Scopus counters, which arrive as numbers, numeric strings,
// empty strings or null. Anything unparseable decodes to 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(x)
	}
	return nil
}

// oneOrMany decodes a field that Scopus renders as an object when there is
// a single item and as an array otherwise.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*o = nil
		return nil
	}
	if b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*o = items
		return nil
	}
	if b[0] != '{' {
		*o = nil
		return nil
	}
	var item T
	if err := json.Unmarshal(b, &item); err != nil {
		return err
	}
	*o = oneOrMany[T]{item}
	return nil
}

// serviceErrorResponse covers the two error envelopes the API uses.
type serviceErrorResponse struct {
	ServiceError *struct {
		Status struct {
			StatusCode string `json:"statusCode"`
			StatusText string `json:"statusText"`
		} `json:"status"`
	} `json:"service-error"`

	ErrorResponse *struct {
		ErrorCode    string `json:"error-code"`
		ErrorMessage string `json:"error-message"`
	} `json:"error-response"`
}

// code returns the status code and message carried by the body, if any.
func (r serviceErrorResponse) code() (string, string, bool) {
	switch {
	case r.ServiceError != nil:
		return r.ServiceError.Status.StatusCode, r.ServiceError.Status.StatusText, true
	case r.ErrorResponse != nil:
		return r.ErrorResponse.ErrorCode, r.ErrorResponse.ErrorMessage, true
	}
	return "", "", false
}

// --- search ---

type searchResponse struct {
	Results *struct {
		TotalResults flexInt       `json:"opensearch:totalResults"`
		Entries      []searchEntry `json:"entry"`
	} `json:"search-results"`
}

type searchEntry struct {
	EID     string `json:"eid"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Authors []struct {
		AuthID string `json:"authid"`
	} `json:"author"`
}

// scopusID strips the EID prefix.
func (e searchEntry) scopusID() string {
	return strings.TrimPrefix(e.EID, eidPrefix)
}

// truncated reports whether Scopus cut the entry's author list short.
func (e searchEntry) truncated() bool {
	return strings.Contains(strings.ToLower(e.Message), "truncated")
}

// --- author retrieval ---

type authorRetrievalResponse struct {
	List *struct {
		Authors oneOrMany[json.RawMessage] `json:"author-retrieval-response"`
	} `json:"author-retrieval-response-list"`

	// Single-id requests come back without the list envelope.
	Authors oneOrMany[json.RawMessage] `json:"author-retrieval-response"`
}

func (r authorRetrievalResponse) entries() []json.RawMessage {
	if r.List != nil {
		return r.List.Authors
	}
	return r.Authors
}

type authorEntry struct {
	Coredata struct {
		Identifier    string  `json:"dc:identifier"`
		DocumentCount flexInt `json:"document-count"`
		CitationCount flexInt `json:"citation-count"`
		CitedByCount  flexInt `json:"cited-by-count"`
	} `json:"coredata"`

	HIndex        flexInt `json:"h-index"`
	CoauthorCount flexInt `json:"coauthor-count"`

	Profile struct {
		Alias oneOrMany[struct {
			Status string `json:"@current-status"`
		}] `json:"alias"`

		PreferredName struct {
			IndexedName string `json:"indexed-name"`
			GivenName   string `json:"given-name"`
			Surname     string `json:"surname"`
		} `json:"preferred-name"`

		PublicationRange struct {
			Start flexInt `json:"@start"`
			End   flexInt `json:"@end"`
		} `json:"publication-range"`

		AffiliationCurrent struct {
			Affiliation oneOrMany[struct {
				IPDoc struct {
					DisplayName string `json:"afdispname"`
				} `json:"ip-doc"`
			}] `json:"affiliation"`
		} `json:"affiliation-current"`
	} `json:"author-profile"`
}

// id returns the author id without its prefix.
func (a authorEntry) id() string {
	return strings.TrimPrefix(a.Coredata.Identifier, authorIDPrefix)
}

// tombstone reports a merged profile that Scopus keeps only as a pointer.
func (a authorEntry) tombstone() bool {
	for _, al := range a.Profile.Alias {
		if al.Status == "tombstone" {
			return true
		}
	}
	return false
}

func (a authorEntry) record() types.AuthorRecord {
	rec := types.AuthorRecord{
		ID:         a.id(),
		Name:       a.Profile.PreferredName.IndexedName,
		FirstName:  a.Profile.PreferredName.GivenName,
		LastName:   a.Profile.PreferredName.Surname,
		FirstPub:   int(a.Profile.PublicationRange.Start),
		LastPub:    int(a.Profile.PublicationRange.End),
		NPubs:      int(a.Coredata.DocumentCount),
		NCites:     int(a.Coredata.CitationCount),
		NCitedBy:   int(a.Coredata.CitedByCount),
		NCoauthors: int(a.CoauthorCount),
		HIndex:     int(a.HIndex),
	}
	if affs := a.Profile.AffiliationCurrent.Affiliation; len(affs) > 0 {
		rec.Affiliation = affs[0].IPDoc.DisplayName
	}
	return rec
}

// decodeAuthor turns one cached author entry into a record. ok is false for
// tombstones and for ids the API did not return.
func decodeAuthor(raw json.RawMessage) (types.AuthorRecord, bool, error) {
	if isNull(raw) {
		return types.AuthorRecord{}, false, nil
	}
	var a authorEntry
	if err := json.Unmarshal(raw, &a); err != nil {
		return types.AuthorRecord{}, false, err
	}
	if a.tombstone() || a.id() == "" {
		return types.AuthorRecord{}, false, nil
	}
	return a.record(), true, nil
}

// --- citation overview ---

type citationResponse struct {
	Response *struct {
		Matrix struct {
			XML struct {
				CitationMatrix struct {
					CiteInfo oneOrMany[json.RawMessage] `json:"citeInfo"`
				} `json:"citationMatrix"`
			} `json:"citeInfoMatrixXML"`
		} `json:"citeInfoMatrix"`
	} `json:"abstract-citations-response"`
}

func (r citationResponse) entries() []json.RawMessage {
	if r.Response == nil {
		return nil
	}
	return r.Response.Matrix.XML.CitationMatrix.CiteInfo
}

type citeInfo struct {
	Identifier string          `json:"dc:identifier"`
	Title      string          `json:"dc:title"`
	Journal    string          `json:"prism:publicationName"`
	SortYear   flexInt         `json:"sort-year"`
	Author     json.RawMessage `json:"author"`
	CC         oneOrMany[struct {
		Count flexInt `json:"$"`
	}] `json:"cc"`
	PCC flexInt `json:"pcc"`
	LCC flexInt `json:"lcc"`
}

func (c citeInfo) id() string {
	return strings.TrimPrefix(c.Identifier, scopusIDPrefix)
}

// authors returns the author ids. Scopus only lists them reliably when the
// field is an array; a single object is treated as unknown.
func (c citeInfo) authors() []string {
	var list []struct {
		AuthID string `json:"authid"`
	}
	if len(c.Author) == 0 || c.Author[0] != '[' {
		return []string{}
	}
	if err := json.Unmarshal(c.Author, &list); err != nil {
		return []string{}
	}
	ids := make([]string, 0, len(list))
	for _, a := range list {
		if a.AuthID != "" {
			ids = append(ids, a.AuthID)
		}
	}
	return ids
}

// record lays cc out over years. Counts past the end of the range are added
// to LCC so NCites always covers the whole vector.
func (c citeInfo) record(years types.YearRange, ct types.CiteType) types.PublicationRecord {
	cites := make([]int, years.Len())
	sum, overflow := 0, 0
	for i, cc := range c.CC {
		n := int(cc.Count)
		sum += n
		if i < len(cites) {
			cites[i] = n
		} else {
			overflow += n
		}
	}
	return types.PublicationRecord{
		ID:             c.id(),
		Title:          c.Title,
		Journal:        c.Journal,
		Year:           int(c.SortYear),
		Authors:        c.authors(),
		CitesStartYear: years.Start,
		CitesByYear:    cites,
		PCC:            int(c.PCC),
		LCC:            int(c.LCC) + overflow,
		NCites:         sum + int(c.PCC) + int(c.LCC),
		CiteType:       ct,
	}
}

// decodeCiteInfo turns one cached citation entry into a record.
func decodeCiteInfo(raw json.RawMessage, years types.YearRange, ct types.CiteType) (types.PublicationRecord, bool, error) {
	if isNull(raw) {
		return types.PublicationRecord{}, false, nil
	}
	var c citeInfo
	if err := json.Unmarshal(raw, &c); err != nil {
		return types.PublicationRecord{}, false, err
	}
	if c.id() == "" {
		return types.PublicationRecord{}, false, nil
	}
	return c.record(years, ct), true, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
