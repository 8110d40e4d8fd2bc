// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/scopuscite/pkg/types"
)

// Separator is the CSV field delimiter. Semicolons keep author names with
// commas in one cell and open directly in European spreadsheet locales.
const Separator = ';'

var authorColumns = []string{
	"author_id", "name", "first_name", "last_name", "affiliation",
	"first_pub", "last_pub", "npubs", "ncites", "ncited_by", "ncoauthors", "hindex",
}

var aggregatedColumns = []string{
	"author_id", "name", "first_name", "last_name", "affiliation", "ncited_by",
	"npubs", "first_pub", "last_pub", "ncites", "ncoauthors", "hindex",
	"pcc", "lcc", "ncoauthors_mean",
}

// WriteAuthorsCSV writes the authors table as reported by Scopus.
func WriteAuthorsCSV(w io.Writer, authors []types.AuthorRecord) error {
	cw := newWriter(w)
	if err := cw.Write(authorColumns); err != nil {
		return err
	}
	for _, a := range authors {
		row := []string{
			a.ID, a.Name, a.FirstName, a.LastName, a.Affiliation,
			itoa(a.FirstPub), itoa(a.LastPub), itoa(a.NPubs), itoa(a.NCites),
			itoa(a.NCitedBy), itoa(a.NCoauthors), itoa(a.HIndex),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAggregatedCSV writes the per-author summaries. Each yearly vector is
// spread over one column per year (cites_YYYY, pubs_YYYY,
// ncoauthors_acc_YYYY) covering the union of every row's range; years a row
// does not cover are left empty.
func WriteAggregatedCSV(w io.Writer, authors []types.AggregatedAuthorRecord) error {
	span := spanOf(authors)

	header := append([]string(nil), aggregatedColumns...)
	for _, prefix := range []string{"cites_", "pubs_", "ncoauthors_acc_"} {
		for y := span.Start; y < span.End; y++ {
			header = append(header, prefix+itoa(y))
		}
	}

	cw := newWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, a := range authors {
		row := []string{
			a.ID, a.Name, a.FirstName, a.LastName, a.Affiliation, itoa(a.NCitedBy),
			itoa(a.NPubs), itoa(a.FirstPub), itoa(a.LastPub), itoa(a.NCites),
			itoa(a.NCoauthors), itoa(a.HIndex), itoa(a.PCC), itoa(a.LCC),
			strconv.FormatFloat(a.CoauthorsMean, 'f', -1, 64),
		}
		for _, v := range [][]int{a.CitesByYear, a.PubsByYear, a.CoauthorsAcc} {
			row = append(row, spread(v, a.Years.Start, span)...)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile creates path and runs write against it.
func WriteCSVFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	return cw
}

// spanOf returns the smallest range covering every row's Years.
func spanOf(authors []types.AggregatedAuthorRecord) types.YearRange {
	var span types.YearRange
	first := true
	for _, a := range authors {
		if a.Years.Len() == 0 {
			continue
		}
		if first || a.Years.Start < span.Start {
			span.Start = a.Years.Start
		}
		if first || a.Years.End > span.End {
			span.End = a.Years.End
		}
		first = false
	}
	return span
}

// spread lays v, starting at year start, over the columns of span.
func spread(v []int, start int, span types.YearRange) []string {
	cells := make([]string, span.Len())
	for i, n := range v {
		if y := start + i; span.Contains(y) {
			cells[y-span.Start] = itoa(n)
		}
	}
	return cells
}

func itoa(n int) string { return strconv.Itoa(n) }
