// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scopuscite/internal/export"
	"github.com/pdiddy/scopuscite/internal/scopus"
	"github.com/pdiddy/scopuscite/pkg/types"
)

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List the authors who published in a journal in a given year",
	Long: `Authors searches Scopus for every publication of a journal in one year and
prints the sorted ids of their authors. The journal is matched by title
(substrings match too: "Nature" also finds "Nature Physics"), by ISSN, or both.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		year, _ := cmd.Flags().GetInt("year")
		journal, _ := cmd.Flags().GetString("journal")
		issn, _ := cmd.Flags().GetString("issn")
		asJSON, _ := cmd.Flags().GetBool("json")

		if journal == "" && issn == "" {
			return fmt.Errorf("--journal or --issn is required")
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, a.Close()) }()

		ids, err := a.client.AuthorsByJournalYear(cmd.Context(), scopus.JournalYearQuery{Year: year, Journal: journal, ISSN: issn})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return export.FormatJSON(ids, w)
		}
		export.FormatIDs(ids, "authors", w)
		return nil
	},
}

var authorInfoCmd = &cobra.Command{
	Use:   "author-info AUTHOR_ID...",
	Short: "Fetch Scopus author profiles",
	Long: `Author-info retrieves the profile of each author id: name, current
affiliation, publication range, document and citation counts, coauthor count
and h-index. Merged (tombstoned) profiles are skipped. Ids may also be given
comma-separated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, a.Close()) }()

		authors, err := a.client.AuthorInfo(cmd.Context(), splitIDs(args))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return export.FormatJSON(authors, w)
		}
		export.FormatAuthors(authors, w)
		return nil
	},
}

var authorPubsCmd = &cobra.Command{
	Use:   "author-pubs AUTHOR_ID...",
	Short: "List the publications of Scopus authors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, a.Close()) }()

		byAuthor, err := a.client.AuthorPublications(cmd.Context(), splitIDs(args))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return export.FormatJSON(byAuthor, w)
		}
		export.FormatAuthorPublications(byAuthor, w)
		return nil
	},
}

var pubInfoCmd = &cobra.Command{
	Use:   "pub-info SCOPUS_ID...",
	Short: "Fetch per-year citation counts of publications",
	Long: `Pub-info retrieves the citation overview of each Scopus id for the years
--from to --to (inclusive). Citations before and after the range are reported
as pcc and lcc.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		asJSON, _ := cmd.Flags().GetBool("json")
		years, ct, err := citationFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, a.Close()) }()

		pubs, err := a.client.PublicationInfo(cmd.Context(), splitIDs(args), years, ct)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return export.FormatJSON(pubs, w)
		}
		export.FormatPublications(pubs, w)
		if n := a.client.NotFound(); n > 0 {
			fmt.Fprintf(w, "%d batches not found\n", n)
		}
		return nil
	},
}

// addCitationFlags registers the year range and cite type flags.
func addCitationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("from", 1960, "first year of per-year citation counts")
	cmd.Flags().Int("to", 2018, "last year of per-year citation counts (inclusive)")
	cmd.Flags().String("cite-type", "all", "citations to count: all, exclude-self, exclude-books")
}

func citationFlags(cmd *cobra.Command) (types.YearRange, types.CiteType, error) {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	ctFlag, _ := cmd.Flags().GetString("cite-type")

	years := types.YearRange{Start: from, End: to + 1}
	if err := years.Validate(); err != nil {
		return years, "", err
	}
	ct, err := types.ParseCiteType(ctFlag)
	return years, ct, err
}

// splitIDs accepts ids as separate arguments, comma-separated, or both.
func splitIDs(args []string) []string {
	var ids []string
	for _, arg := range args {
		for _, id := range strings.Split(arg, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func init() {
	authorsCmd.Flags().Int("year", 0, "publication year")
	authorsCmd.Flags().String("journal", "", "journal title")
	authorsCmd.Flags().String("issn", "", "journal ISSN")
	authorsCmd.Flags().Bool("json", false, "output results as JSON")
	authorsCmd.MarkFlagRequired("year")

	authorInfoCmd.Flags().Bool("json", false, "output results as JSON")
	authorPubsCmd.Flags().Bool("json", false, "output results as JSON")

	addCitationFlags(pubInfoCmd)
	pubInfoCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(authorsCmd, authorInfoCmd, authorPubsCmd, pubInfoCmd)
}
