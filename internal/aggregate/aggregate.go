// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate joins the authors and publications tables into one
// citation summary per author. Everything here is a pure function of its
// inputs.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/pdiddy/scopuscite/pkg/types"
)

// Authors returns one summary per author, in the order of authors. Totals
// are recomputed from pubs; only NCitedBy and the identity columns are
// carried over from the author rows.
//
// A zero years is derived from pubs: from the earliest CitesStartYear to the
// latest end of a CitesByYear vector. Publications are deduplicated by id
// (the most cited row wins), so the result does not depend on their order.
func Authors(authors []types.AuthorRecord, pubs []types.PublicationRecord, years types.YearRange) []types.AggregatedAuthorRecord {
	pubs = dedup(pubs)
	if years.IsZero() {
		years = DeriveYears(pubs)
	}

	byID := make(map[string]*types.PublicationRecord, len(pubs))
	for i := range pubs {
		byID[pubs[i].ID] = &pubs[i]
	}
	byAuthor := PubsByAuthor(pubs)

	out := make([]types.AggregatedAuthorRecord, len(authors))
	for i, a := range authors {
		ids := byAuthor[a.ID]
		list := make([]*types.PublicationRecord, len(ids))
		for j, id := range ids {
			list[j] = byID[id]
		}
		out[i] = summarize(a, list, years)
	}
	return out
}

// DeriveYears returns the smallest range covering every publication's
// citation vector, or the zero range when there are none.
func DeriveYears(pubs []types.PublicationRecord) types.YearRange {
	var r types.YearRange
	for i, p := range pubs {
		py := p.Years()
		if i == 0 || py.Start < r.Start {
			r.Start = py.Start
		}
		if i == 0 || py.End > r.End {
			r.End = py.End
		}
	}
	return r
}

// PubsByAuthor maps every author id appearing in pubs to the sorted ids of
// their publications.
func PubsByAuthor(pubs []types.PublicationRecord) map[string][]string {
	sets := make(map[string]map[string]bool)
	for _, p := range pubs {
		for _, a := range p.Authors {
			if sets[a] == nil {
				sets[a] = make(map[string]bool)
			}
			sets[a][p.ID] = true
		}
	}

	out := make(map[string][]string, len(sets))
	for a, set := range sets {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[a] = ids
	}
	return out
}

func summarize(a types.AuthorRecord, pubs []*types.PublicationRecord, years types.YearRange) types.AggregatedAuthorRecord {
	n := years.Len()
	rec := types.AggregatedAuthorRecord{
		ID:           a.ID,
		Name:         a.Name,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Affiliation:  a.Affiliation,
		NCitedBy:     a.NCitedBy,
		NPubs:        len(pubs),
		Years:        years,
		CitesByYear:  make([]int, n),
		PubsByYear:   make([]int, n),
		CoauthorsAcc: make([]int, n),
	}
	if len(pubs) == 0 {
		return rec
	}

	cites := make([]int, len(pubs))
	coauthors := make(map[string]bool)
	coauthorSlots := 0
	for i, p := range pubs {
		cites[i] = p.NCites
		rec.NCites += p.NCites

		if p.Year > 0 {
			if rec.FirstPub == 0 || p.Year < rec.FirstPub {
				rec.FirstPub = p.Year
			}
			if p.Year > rec.LastPub {
				rec.LastPub = p.Year
			}
		}
		if years.Contains(p.Year) {
			rec.PubsByYear[p.Year-years.Start]++
		}

		rec.PCC += p.PCC
		rec.LCC += p.LCC
		for j, c := range p.CitesByYear {
			switch y := p.CitesStartYear + j; {
			case y < years.Start:
				rec.PCC += c
			case y >= years.End:
				rec.LCC += c
			default:
				rec.CitesByYear[y-years.Start] += c
			}
		}

		coauthorSlots += len(p.Authors) - 1
		for _, co := range p.Authors {
			if co != a.ID {
				coauthors[co] = true
			}
		}
	}

	rec.NCoauthors = len(coauthors)
	rec.CoauthorsMean = float64(coauthorSlots) / float64(len(pubs))
	rec.HIndex = HIndex(cites)
	rec.CoauthorsAcc = accumulatedCoauthors(a.ID, pubs, years)
	return rec
}

// accumulatedCoauthors counts, for each year of the range, the distinct
// coauthors of publications up to and including that year. Publications
// before the range seed the count.
func accumulatedCoauthors(self string, pubs []*types.PublicationRecord, years types.YearRange) []int {
	out := make([]int, years.Len())
	byYear := make(map[int][]*types.PublicationRecord)
	seen := make(map[string]bool)
	add := func(p *types.PublicationRecord) {
		for _, co := range p.Authors {
			if co != self {
				seen[co] = true
			}
		}
	}

	for _, p := range pubs {
		if p.Year < years.Start {
			add(p)
			continue
		}
		byYear[p.Year] = append(byYear[p.Year], p)
	}
	for i := range out {
		for _, p := range byYear[years.Start+i] {
			add(p)
		}
		out[i] = len(seen)
	}
	return out
}

// dedup drops repeated publication ids and returns the rows sorted by id.
// Of several rows sharing an id the one with the most citations survives,
// ties broken on the full row, so input order never matters.
func dedup(pubs []types.PublicationRecord) []types.PublicationRecord {
	byID := make(map[string]int, len(pubs))
	out := make([]types.PublicationRecord, 0, len(pubs))
	for _, p := range pubs {
		i, ok := byID[p.ID]
		if !ok {
			byID[p.ID] = len(out)
			out = append(out, p)
			continue
		}
		if preferred(p, out[i]) {
			out[i] = p
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// preferred reports whether a should replace b as the surviving row.
func preferred(a, b types.PublicationRecord) bool {
	if a.NCites != b.NCites {
		return a.NCites > b.NCites
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
