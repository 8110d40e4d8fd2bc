// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scopuscite/internal/download"
	"github.com/pdiddy/scopuscite/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download and aggregate citation data for a journal year",
	Long: `Download finds every author who published in a journal in one year, fetches
their profiles, optionally keeps only those whose first publication is no
later than --first-pub-before, fetches all their publications with per-year
citation counts, and aggregates one citation summary per author.

Files written to --output-dir, prefixed with --name:
  <name>_no_cites.csv  author profiles as reported by Scopus
  <name>_pubs.yaml     publications with citation counts
  <name>_auth.yaml     per-author summaries
  <name>_export.csv    per-author summaries, one column per year

Cached responses are reused; the --reload-* flags drop the cache entries of
one stage first.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		f := cmd.Flags()
		cfg := types.DownloadConfig{}
		cfg.Name, _ = f.GetString("name")
		cfg.Year, _ = f.GetInt("year")
		cfg.Journal, _ = f.GetString("journal")
		cfg.ISSN, _ = f.GetString("issn")
		cfg.OutputDir, _ = f.GetString("output-dir")
		cfg.FirstPubBefore, _ = f.GetInt("first-pub-before")
		cfg.Reload.AuthorList, _ = f.GetBool("reload-author-list")
		cfg.Reload.AuthorInfo, _ = f.GetBool("reload-author-info")
		cfg.Reload.AuthorPub, _ = f.GetBool("reload-author-pub")
		cfg.Reload.PubInfo, _ = f.GetBool("reload-pub-info")

		cfg.Years, cfg.CiteType, err = citationFlags(cmd)
		if err != nil {
			return err
		}
		if cfg.Journal == "" && cfg.ISSN == "" {
			return fmt.Errorf("--journal or --issn is required")
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, a.Close()) }()

		_, err = download.Run(cmd.Context(), a.client, a.cache, cfg, a.log, cmd.OutOrStdout())
		return err
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge RUN...",
	Short: "Merge the output of several download runs",
	Long: `Merge joins the <run>_auth.yaml and <run>_pubs.yaml files of earlier
download runs into --name. Authors and publications that appear in more than
one run keep their first occurrence.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		dir, _ := cmd.Flags().GetString("output-dir")

		_, err := download.Merge(dir, name, args, cmd.OutOrStdout())
		return err
	},
}

func init() {
	f := downloadCmd.Flags()
	f.Int("year", 0, "publication year")
	f.String("journal", "", "journal title")
	f.String("issn", "", "journal ISSN")
	f.String("name", "", "output file prefix (default: <journal or issn>_<year>)")
	f.String("output-dir", download.DefaultOutputDir, "directory for output files")
	f.Int("first-pub-before", 0, "keep authors whose first publication is in this year or earlier (0 keeps all)")
	f.Bool("reload-author-list", false, "drop cached journal-year searches first")
	f.Bool("reload-author-info", false, "drop cached author profiles first")
	f.Bool("reload-author-pub", false, "drop cached author publication searches first")
	f.Bool("reload-pub-info", false, "drop cached citation overviews first")
	addCitationFlags(downloadCmd)
	downloadCmd.MarkFlagRequired("year")

	mergeCmd.Flags().String("name", "", "name of the merged run")
	mergeCmd.Flags().String("output-dir", download.DefaultOutputDir, "directory holding the run files")
	mergeCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(downloadCmd, mergeCmd)
}
