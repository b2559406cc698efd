/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/Seednode/guessr/feedback"
	"github.com/Seednode/guessr/index"
	"github.com/spf13/cobra"
)

func newCompareCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <guess> <answer>",
		Short: "Prints the feedback a guess would receive against an answer.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateGame(); err != nil {
				return err
			}

			e, err := loadEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			for _, name := range args {
				if _, ok := e.index.ResolveByName(name); !ok {
					return fmt.Errorf("unknown character: %q", name)
				}
			}

			rec := e.generator(feedback.NewRand(cfg.seed)).CompareNames(args[:1], args[1:])

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)

			return enc.Encode(rec)
		},
	}
}

func newSearchCmd(cfg *Config) *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Lists the characters whose names contain a keyword.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateGame(); err != nil {
				return err
			}

			e, err := loadEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			found, hasMore := e.index.Search(args[0], limit, offset)
			resp := newSearchResponse(found, hasMore)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)

				return enc.Encode(resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range resp.Results {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.PrimaryName, r.TranslatedName)
			}
			if hasMore {
				fmt.Fprintf(tw, "...\t(more results past offset %d)\n", offset+len(found))
			}

			return tw.Flush()
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlag)
	fs.IntVar(&limit, "limit", index.DefaultSearchLimit, "results per page (env: GUESSR_LIMIT)")
	fs.IntVar(&offset, "offset", 0, "results to skip (env: GUESSR_OFFSET)")
	fs.BoolVar(&asJSON, "json", false, "print results as JSON (env: GUESSR_JSON)")

	return cmd
}
