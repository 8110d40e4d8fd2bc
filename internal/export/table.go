// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/scopuscite/pkg/types"
)

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatIDs writes one id per line followed by a count.
func FormatIDs(ids []string, noun string, w io.Writer) {
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	fmt.Fprintf(w, "\n%d %s\n", len(ids), noun)
}

// FormatAuthors writes the authors table as aligned text.
func FormatAuthors(authors []types.AuthorRecord, w io.Writer) {
	if len(authors) == 0 {
		fmt.Fprintln(w, "No authors found.")
		return
	}

	fmt.Fprintf(w, "%-12s  %-28s  %-30s  %-9s  %5s  %7s  %5s\n",
		"Author ID", "Name", "Affiliation", "Pubs", "Docs", "Cites", "h")
	fmt.Fprintln(w, strings.Repeat("-", 108))

	for _, a := range authors {
		fmt.Fprintf(w, "%-12s  %-28s  %-30s  %-9s  %5d  %7d  %5d\n",
			a.ID, truncate(a.Name, 28), truncate(a.Affiliation, 30),
			yearSpan(a.FirstPub, a.LastPub), a.NPubs, a.NCites, a.HIndex)
	}
	fmt.Fprintf(w, "\n%d authors\n", len(authors))
}

// FormatAuthorPublications writes each author's publication count and ids.
func FormatAuthorPublications(byAuthor map[string][]string, w io.Writer) {
	if len(byAuthor) == 0 {
		fmt.Fprintln(w, "No authors given.")
		return
	}

	ids := make([]string, 0, len(byAuthor))
	for id := range byAuthor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(w, "%-12s  %5s  %s\n", "Author ID", "Pubs", "Scopus IDs")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	total := 0
	for _, id := range ids {
		pubs := byAuthor[id]
		total += len(pubs)
		fmt.Fprintf(w, "%-12s  %5d  %s\n", id, len(pubs), truncate(strings.Join(pubs, ","), 59))
	}
	fmt.Fprintf(w, "\n%d authors, %d author-publication pairs\n", len(ids), total)
}

// FormatPublications writes the publications table as aligned text.
func FormatPublications(pubs []types.PublicationRecord, w io.Writer) {
	if len(pubs) == 0 {
		fmt.Fprintln(w, "No publications found.")
		return
	}

	fmt.Fprintf(w, "%-12s  %-50s  %-4s  %7s  %5s  %5s  %s\n",
		"Scopus ID", "Title", "Year", "Cites", "pcc", "lcc", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, p := range pubs {
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(w, "%-12s  %-50s  %-4s  %7d  %5d  %5d  %d\n",
			p.ID, truncate(p.Title, 50), year, p.NCites, p.PCC, p.LCC, len(p.Authors))
	}
	fmt.Fprintf(w, "\n%d publications\n", len(pubs))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func yearSpan(first, last int) string {
	switch {
	case first == 0 && last == 0:
		return ""
	case first == last:
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}
