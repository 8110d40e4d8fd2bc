// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// CiteType selects which citations the citation overview counts.
type CiteType string

const (
	CiteAll          CiteType = "all"
	CiteExcludeSelf  CiteType = "exclude-self"
	CiteExcludeBooks CiteType = "exclude-books"
)

// ParseCiteType validates s. The empty string means CiteAll.
func ParseCiteType(s string) (CiteType, error) {
	switch CiteType(s) {
	case "", CiteAll:
		return CiteAll, nil
	case CiteExcludeSelf, CiteExcludeBooks:
		return CiteType(s), nil
	}
	return "", fmt.Errorf("unknown cite type %q: use all, exclude-self or exclude-books", s)
}

// YearRange is the half-open interval of years [Start, End).
type YearRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// IsZero reports whether the range is unset.
func (r YearRange) IsZero() bool { return r.Start == 0 && r.End == 0 }

// Len returns the number of years in the range.
func (r YearRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool { return year >= r.Start && year < r.End }

// Validate rejects empty and inverted ranges.
func (r YearRange) Validate() error {
	if r.Len() == 0 {
		return fmt.Errorf("invalid year range [%d, %d)", r.Start, r.End)
	}
	return nil
}

// String renders the range the way the citation overview endpoint expects
// its date parameter: inclusive on both ends ("1960-2018").
func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End-1)
}

// ParseYearRange parses "START-END" with END inclusive, the inverse of String.
func ParseYearRange(s string) (YearRange, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return YearRange{}, fmt.Errorf("year range %q: want START-END", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return YearRange{}, fmt.Errorf("year range %q: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return YearRange{}, fmt.Errorf("year range %q: %w", s, err)
	}
	r := YearRange{Start: start, End: end + 1}
	return r, r.Validate()
}

// PublicationRecord is one row of the publications table, decoded from a
// citation overview response.
type PublicationRecord struct {
	// ID is the Scopus id (the EID without its "2-s2.0-" prefix).
	ID      string `json:"scopus_id" yaml:"scopus_id"`
	Title   string `json:"title" yaml:"title"`
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication (sort) year, 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// Authors holds the Scopus author ids in source order.
	Authors []string `json:"authors" yaml:"authors,flow"`

	// CitesStartYear is the year CitesByYear[0] refers to.
	CitesStartYear int   `json:"cites_start_year" yaml:"cites_start_year"`
	CitesByYear    []int `json:"cites_by_year" yaml:"cites_by_year,flow"`

	// PCC counts citations before the range, LCC citations after it.
	PCC int `json:"pcc" yaml:"pcc"`
	LCC int `json:"lcc" yaml:"lcc"`

	// NCites is sum(CitesByYear) + PCC + LCC.
	NCites int `json:"ncites" yaml:"ncites"`

	CiteType CiteType `json:"cite_type" yaml:"cite_type"`
}

// Years returns the range covered by CitesByYear.
func (p PublicationRecord) Years() YearRange {
	return YearRange{Start: p.CitesStartYear, End: p.CitesStartYear + len(p.CitesByYear)}
}
