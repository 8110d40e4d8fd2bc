// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download runs the journal-year pipeline: find every author who
// published in a journal in a given year, fetch their profiles, publications
// and citation overviews, aggregate per author, and write the tables.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scopuscite/internal/aggregate"
	"github.com/pdiddy/scopuscite/internal/export"
	"github.com/pdiddy/scopuscite/internal/scopus"
	"github.com/pdiddy/scopuscite/pkg/types"
)

// DefaultOutputDir is used when DownloadConfig.OutputDir is empty.
const DefaultOutputDir = "data/output"

// ErrNoAuthors is returned when the journal-year search finds nobody.
var ErrNoAuthors = errors.New("no authors found")

// Source is the part of *scopus.Client the pipeline needs.
type Source interface {
	AuthorsByJournalYear(ctx context.Context, q scopus.JournalYearQuery) ([]string, error)
	AuthorInfo(ctx context.Context, ids []string) ([]types.AuthorRecord, error)
	AuthorPublications(ctx context.Context, ids []string) (map[string][]string, error)
	PublicationInfo(ctx context.Context, ids []string, years types.YearRange, ct types.CiteType) ([]types.PublicationRecord, error)
}

// Clearer drops the cached responses of one operation. *cache.Cache
// implements it.
type Clearer interface {
	ClearOperation(ctx context.Context, operation string) (int64, error)
}

// Result summarizes one run.
type Result struct {
	Paths export.Paths

	// Authors is the number of authors found; Selected those that passed the
	// first-publication filter.
	Authors  int
	Selected int

	// ReportedPubs sums the document counts Scopus reports for the selection.
	ReportedPubs int

	// Publications is the number of distinct publications with citation data.
	Publications int

	Summaries []types.AggregatedAuthorRecord
}

// Run executes the pipeline for cfg, writing its files under cfg.OutputDir
// and progress lines to w. clr may be nil when no reload flag is set.
func Run(ctx context.Context, src Source, clr Clearer, cfg types.DownloadConfig, log zerolog.Logger, w io.Writer) (Result, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return Result{}, err
	}
	log = log.With().Str("run", cfg.Name).Logger()

	if err := reload(ctx, clr, cfg.Reload, log); err != nil {
		return Result{}, err
	}

	res := Result{Paths: export.NewPaths(cfg.OutputDir, cfg.Name)}

	q := scopus.JournalYearQuery{Year: cfg.Year, Journal: cfg.Journal, ISSN: cfg.ISSN}
	ids, err := src.AuthorsByJournalYear(ctx, q)
	if err != nil {
		return res, fmt.Errorf("listing authors: %w", err)
	}
	if len(ids) == 0 {
		return res, fmt.Errorf("%s: %w", q.Query(), ErrNoAuthors)
	}

	authors, err := src.AuthorInfo(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("fetching author info: %w", err)
	}
	if err := export.WriteCSVFile(res.Paths.NoCites, func(w io.Writer) error {
		return export.WriteAuthorsCSV(w, authors)
	}); err != nil {
		return res, err
	}
	res.Authors = len(authors)
	fmt.Fprintf(w, "Authors: %d (%d publications reported)\n", len(authors), aggregate.TotalPubs(authors))

	if cfg.FirstPubBefore > 0 {
		authors = aggregate.FilterAuthors(authors, aggregate.FirstPubNoLaterThan(cfg.FirstPubBefore))
		fmt.Fprintf(w, "Selected (first publication <= %d): %d\n", cfg.FirstPubBefore, len(authors))
	}
	res.Selected = len(authors)
	res.ReportedPubs = aggregate.TotalPubs(authors)

	byAuthor, err := src.AuthorPublications(ctx, aggregate.AuthorIDs(authors))
	if err != nil {
		return res, fmt.Errorf("listing publications: %w", err)
	}
	scopusIDs := scopus.UniquePublications(byAuthor)
	log.Info().Int("publications", len(scopusIDs)).Msg("publications listed")

	pubs, err := src.PublicationInfo(ctx, scopusIDs, cfg.Years, cfg.CiteType)
	if err != nil {
		return res, fmt.Errorf("fetching publication info: %w", err)
	}
	res.Publications = len(pubs)
	if err := export.WriteTable(res.Paths.Publications, pubs); err != nil {
		return res, err
	}

	res.Summaries = aggregate.Authors(authors, pubs, cfg.Years)
	if err := writeSummaries(res.Paths, res.Summaries); err != nil {
		return res, err
	}

	fmt.Fprintf(w, "Publications: %d of %d with citation data (%s, %s)\n",
		len(pubs), len(scopusIDs), cfg.Years, cfg.CiteType)
	fmt.Fprintf(w, "Wrote %s, %s, %s, %s\n",
		res.Paths.NoCites, res.Paths.Publications, res.Paths.Authors, res.Paths.Export)
	return res, nil
}

func writeSummaries(paths export.Paths, summaries []types.AggregatedAuthorRecord) error {
	if err := export.WriteTable(paths.Authors, summaries); err != nil {
		return err
	}
	return export.WriteCSVFile(paths.Export, func(w io.Writer) error {
		return export.WriteAggregatedCSV(w, summaries)
	})
}

// reload clears the cache entries behind every stage flagged in r.
func reload(ctx context.Context, clr Clearer, r types.ReloadFlags, log zerolog.Logger) error {
	stages := []struct {
		on bool
		op string
	}{
		{r.AuthorList, scopus.OpAuthorsByJournalYear},
		{r.AuthorInfo, scopus.OpAuthorInfo},
		{r.AuthorPub, scopus.OpAuthorPublications},
		{r.PubInfo, scopus.OpPublicationInfo},
	}
	for _, s := range stages {
		if !s.on {
			continue
		}
		if clr == nil {
			return fmt.Errorf("reloading %s: no cache to clear", s.op)
		}
		n, err := clr.ClearOperation(ctx, s.op)
		if err != nil {
			return fmt.Errorf("reloading %s: %w", s.op, err)
		}
		log.Info().Str("operation", s.op).Int64("removed", n).Msg("cache entries dropped for reload")
	}
	return nil
}

// normalize validates cfg and fills defaults.
func normalize(cfg types.DownloadConfig) (types.DownloadConfig, error) {
	if cfg.Year <= 0 {
		return cfg, fmt.Errorf("download: year is required")
	}
	cfg.Journal = strings.TrimSpace(cfg.Journal)
	cfg.ISSN = strings.TrimSpace(cfg.ISSN)
	if cfg.Journal == "" && cfg.ISSN == "" {
		return cfg, fmt.Errorf("download: journal or ISSN is required")
	}
	if err := cfg.Years.Validate(); err != nil {
		return cfg, fmt.Errorf("download: %w", err)
	}
	ct, err := types.ParseCiteType(string(cfg.CiteType))
	if err != nil {
		return cfg, fmt.Errorf("download: %w", err)
	}
	cfg.CiteType = ct
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName(cfg.Journal, cfg.ISSN, cfg.Year)
	}
	return cfg, nil
}

// DefaultName is the run name used when none is given: the journal (or
// ISSN) and the year, with characters unsafe in file names replaced.
func DefaultName(journal, issn string, year int) string {
	base := journal
	if base == "" {
		base = issn
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.ToLower(base))
	return clean + "_" + strconv.Itoa(year)
}
