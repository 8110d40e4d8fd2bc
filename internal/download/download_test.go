// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scopuscite/internal/export"
	"github.com/pdiddy/scopuscite/internal/scopus"
	"github.com/pdiddy/scopuscite/pkg/types"
)

// --- test helpers ---

type fakeSource struct {
	authors   []string
	info      []types.AuthorRecord
	pubs      map[string][]string
	citations []types.PublicationRecord
	err       error

	gotQuery    scopus.JournalYearQuery
	gotPubIDs   []string
	gotCiteIDs  []string
	gotYears    types.YearRange
	gotCiteType types.CiteType
}

func (f *fakeSource) AuthorsByJournalYear(_ context.Context, q scopus.JournalYearQuery) ([]string, error) {
	f.gotQuery = q
	return f.authors, f.err
}

func (f *fakeSource) AuthorInfo(_ context.Context, ids []string) ([]types.AuthorRecord, error) {
	return f.info, nil
}

func (f *fakeSource) AuthorPublications(_ context.Context, ids []string) (map[string][]string, error) {
	f.gotPubIDs = ids
	out := make(map[string][]string)
	for _, id := range ids {
		out[id] = f.pubs[id]
	}
	return out, nil
}

func (f *fakeSource) PublicationInfo(_ context.Context, ids []string, years types.YearRange, ct types.CiteType) ([]types.PublicationRecord, error) {
	f.gotCiteIDs, f.gotYears, f.gotCiteType = ids, years, ct
	return f.citations, nil
}

type fakeClearer struct{ cleared []string }

func (f *fakeClearer) ClearOperation(_ context.Context, op string) (int64, error) {
	f.cleared = append(f.cleared, op)
	return 1, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		authors: []string{"a", "b"},
		info: []types.AuthorRecord{
			{ID: "a", Name: "A.", FirstPub: 1990, NPubs: 2},
			{ID: "b", Name: "B.", FirstPub: 2010, NPubs: 1},
		},
		pubs: map[string][]string{"a": {"p1", "p2"}, "b": {"p2"}},
		citations: []types.PublicationRecord{
			{ID: "p1", Year: 1999, Authors: []string{"a"}, CitesStartYear: 2000, CitesByYear: []int{1, 1}, NCites: 2},
			{ID: "p2", Year: 2011, Authors: []string{"a", "b"}, CitesStartYear: 2000, CitesByYear: []int{0, 3}, NCites: 3},
		},
	}
}

func testConfig(t *testing.T) types.DownloadConfig {
	return types.DownloadConfig{
		Name:      "annals_2016",
		Year:      2016,
		Journal:   "Annals of Mathematics",
		ISSN:      "0003486X",
		OutputDir: t.TempDir(),
		Years:     types.YearRange{Start: 2000, End: 2002},
	}
}

// --- Run ---

func TestRunWritesAllFiles(t *testing.T) {
	src := newFakeSource()
	cfg := testConfig(t)
	var out bytes.Buffer

	res, err := Run(context.Background(), src, nil, cfg, zerolog.Nop(), &out)
	require.NoError(t, err)

	assert.Equal(t, scopus.JournalYearQuery{Year: 2016, Journal: "Annals of Mathematics", ISSN: "0003486X"}, src.gotQuery)
	assert.Equal(t, []string{"p1", "p2"}, src.gotCiteIDs)
	assert.Equal(t, types.CiteAll, src.gotCiteType)
	assert.Equal(t, cfg.Years, src.gotYears)

	assert.Equal(t, 2, res.Authors)
	assert.Equal(t, 2, res.Selected)
	assert.Equal(t, 3, res.ReportedPubs)
	assert.Equal(t, 2, res.Publications)
	require.Len(t, res.Summaries, 2)
	assert.Equal(t, 5, res.Summaries[0].NCites)
	assert.Equal(t, []int{1, 4}, res.Summaries[0].CitesByYear)

	for _, p := range []string{res.Paths.Authors, res.Paths.Publications, res.Paths.NoCites, res.Paths.Export} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
	assert.Equal(t, export.NewPaths(cfg.OutputDir, "annals_2016"), res.Paths)

	saved, err := export.ReadTable[types.AggregatedAuthorRecord](res.Paths.Authors)
	require.NoError(t, err)
	assert.Equal(t, res.Summaries, saved)

	assert.Contains(t, out.String(), "Authors: 2 (3 publications reported)")
}

func TestRunFiltersByFirstPublication(t *testing.T) {
	src := newFakeSource()
	cfg := testConfig(t)
	cfg.FirstPubBefore = 1998

	res, err := Run(context.Background(), src, nil, cfg, zerolog.Nop(), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, src.gotPubIDs)
	assert.Equal(t, 2, res.Authors)
	assert.Equal(t, 1, res.Selected)
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "a", res.Summaries[0].ID)
}

func TestRunNoAuthors(t *testing.T) {
	src := newFakeSource()
	src.authors = nil

	_, err := Run(context.Background(), src, nil, testConfig(t), zerolog.Nop(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoAuthors)
}

func TestRunPropagatesSourceErrors(t *testing.T) {
	src := newFakeSource()
	src.err = scopus.ErrRateLimited

	_, err := Run(context.Background(), src, nil, testConfig(t), zerolog.Nop(), &bytes.Buffer{})
	assert.ErrorIs(t, err, scopus.ErrRateLimited)
}

func TestRunReloadClearsFlaggedStages(t *testing.T) {
	clr := &fakeClearer{}
	cfg := testConfig(t)
	cfg.Reload = types.ReloadFlags{AuthorList: true, PubInfo: true}

	_, err := Run(context.Background(), newFakeSource(), clr, cfg, zerolog.Nop(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{scopus.OpAuthorsByJournalYear, scopus.OpPublicationInfo}, clr.cleared)
}

func TestRunReloadNeedsCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reload.AuthorInfo = true

	_, err := Run(context.Background(), newFakeSource(), nil, cfg, zerolog.Nop(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*types.DownloadConfig)
	}{
		{"no year", func(c *types.DownloadConfig) { c.Year = 0 }},
		{"no journal or issn", func(c *types.DownloadConfig) { c.Journal, c.ISSN = "", " " }},
		{"empty range", func(c *types.DownloadConfig) { c.Years = types.YearRange{} }},
		{"bad cite type", func(c *types.DownloadConfig) { c.CiteType = "some" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(&cfg)
			src := newFakeSource()
			_, err := Run(context.Background(), src, nil, cfg, zerolog.Nop(), &bytes.Buffer{})
			assert.Error(t, err)
			assert.Zero(t, src.gotQuery.Year)
		})
	}
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "annals_of_mathematics_2016", DefaultName("Annals of Mathematics", "0003486X", 2016))
	assert.Equal(t, "0003486x_2016", DefaultName("", "0003486X", 2016))
	assert.Equal(t, "a_b_2001", DefaultName("A/B", "", 2001))
}

// --- Merge ---

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	write := func(run string, authors []types.AggregatedAuthorRecord, pubs []types.PublicationRecord) {
		p := export.NewPaths(dir, run)
		require.NoError(t, export.WriteTable(p.Authors, authors))
		require.NoError(t, export.WriteTable(p.Publications, pubs))
	}
	write("one", []types.AggregatedAuthorRecord{{ID: "a", Name: "first"}, {ID: "b"}}, []types.PublicationRecord{{ID: "p1"}})
	write("two", []types.AggregatedAuthorRecord{{ID: "a", Name: "second"}, {ID: "c"}}, []types.PublicationRecord{{ID: "p1"}, {ID: "p2"}})

	var out bytes.Buffer
	res, err := Merge(dir, "both", []string{"one", "two"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Authors)
	assert.Equal(t, 2, res.Publications)

	authors, err := export.ReadTable[types.AggregatedAuthorRecord](res.Paths.Authors)
	require.NoError(t, err)
	assert.Equal(t, "first", authors[0].Name)

	_, err = os.Stat(res.Paths.Export)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Merged 2 runs into both")
}

func TestMergeMissingRun(t *testing.T) {
	_, err := Merge(t.TempDir(), "x", []string{"absent"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = Merge(t.TempDir(), "x", nil, &bytes.Buffer{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoAuthors))
}
