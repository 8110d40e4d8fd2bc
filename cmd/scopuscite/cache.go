// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scopuscite/internal/export"
	"github.com/pdiddy/scopuscite/internal/scopus"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the cache file and its entries per operation",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, a.Close()) }()

		ctx := cmd.Context()
		stats, err := a.cache.Stats(ctx)
		if err != nil {
			return err
		}
		ops, err := a.cache.Operations(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return export.FormatJSON(map[string]any{"path": stats.Path, "entries": stats.Entries, "operations": ops}, w)
		}

		fmt.Fprintf(w, "Cache: %s\n", stats.Path)
		names := make([]string, 0, len(ops))
		for op := range ops {
			names = append(names, op)
		}
		sort.Strings(names)
		for _, op := range names {
			fmt.Fprintf(w, "  %-26s %8d\n", op, ops[op])
		}
		fmt.Fprintf(w, "%d entries\n", stats.Entries)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached responses",
	Long: `Clear removes every cached response, or with --operation only those of one
operation: ` + fmt.Sprint(scopus.Operations) + `.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		op, _ := cmd.Flags().GetString("operation")
		if op != "" && !knownOperation(op) {
			return fmt.Errorf("unknown operation %q", op)
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, a.Close()) }()

		var n int64
		if op == "" {
			n, err = a.cache.Clear(cmd.Context())
		} else {
			n, err = a.cache.ClearOperation(cmd.Context(), op)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
		return nil
	},
}

func knownOperation(op string) bool {
	for _, known := range scopus.Operations {
		if op == known {
			return true
		}
	}
	return false
}

func init() {
	cacheStatsCmd.Flags().Bool("json", false, "output as JSON")
	cacheClearCmd.Flags().String("operation", "", "only clear entries of this operation")

	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
