// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"fmt"
	"io"

	"github.com/pdiddy/scopuscite/internal/export"
	"github.com/pdiddy/scopuscite/pkg/types"
)

// MergeResult summarizes a merge.
type MergeResult struct {
	Paths        export.Paths
	Authors      int
	Publications int
}

// Merge joins the author and publication tables of earlier runs into run
// name. Rows repeated across runs keep their first occurrence, in the order
// runs are given. All files live in dir.
func Merge(dir, name string, runs []string, w io.Writer) (MergeResult, error) {
	if len(runs) == 0 {
		return MergeResult{}, fmt.Errorf("merge: no runs given")
	}

	var authorLists [][]types.AggregatedAuthorRecord
	var pubLists [][]types.PublicationRecord
	for _, run := range runs {
		p := export.NewPaths(dir, run)
		authors, err := export.ReadTable[types.AggregatedAuthorRecord](p.Authors)
		if err != nil {
			return MergeResult{}, fmt.Errorf("merge %s: %w", run, err)
		}
		pubs, err := export.ReadTable[types.PublicationRecord](p.Publications)
		if err != nil {
			return MergeResult{}, fmt.Errorf("merge %s: %w", run, err)
		}
		authorLists = append(authorLists, authors)
		pubLists = append(pubLists, pubs)
	}

	authors := export.Merge(func(a types.AggregatedAuthorRecord) string { return a.ID }, authorLists...)
	pubs := export.Merge(func(p types.PublicationRecord) string { return p.ID }, pubLists...)

	res := MergeResult{Paths: export.NewPaths(dir, name), Authors: len(authors), Publications: len(pubs)}
	if err := writeSummaries(res.Paths, authors); err != nil {
		return res, err
	}
	if err := export.WriteTable(res.Paths.Publications, pubs); err != nil {
		return res, err
	}

	fmt.Fprintf(w, "Merged %d runs into %s: %d authors, %d publications\n",
		len(runs), name, res.Authors, res.Publications)
	return res, nil
}
