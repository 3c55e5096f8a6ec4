package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesearch/internal/render"
)

func newScanCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Rescan library sources and rebuild the indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := e.app.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			render.ScanSummary(cmd.OutOrStdout(), stats.Scan.Files, stats.Scan.Fallback,
				stats.Tracks, stats.LyricsFound, stats.LyricsRemoved, stats.Scan.Duration)
			return nil
		},
	}
}

func newSearchCmd(e *env) *cobra.Command {
	var (
		limit     int
		threshold float64
		score     bool
		paths     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tracks, e.g. 'robot artist:daft year:2005'",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := e.app.SearchOptions()
			opts.IncludeMatches = !paths
			opts.IncludeScore = score
			if cmd.Flags().Changed("limit") {
				opts.Limit = limit
			}
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = threshold
			}

			results := e.app.Tracks().Search(strings.Join(args, " "), opts)
			w := cmd.OutOrStdout()
			if paths {
				for _, r := range results {
					render.TrackPath(w, r.Track)
				}
				return nil
			}
			render.Tracks(w, results, score)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum score of fuzzy results (0-1, 0 uses the default)")
	cmd.Flags().BoolVarP(&score, "score", "s", false, "show scores")
	cmd.Flags().BoolVarP(&paths, "paths", "p", false, "print file paths only")
	return cmd
}

func newSuggestCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial>",
		Short: "Complete a partial title, artist or album",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			render.Suggestions(cmd.OutOrStdout(), e.app.Suggest(strings.Join(args, " ")))
			return nil
		},
	}
}

func newLyricsCmd(e *env) *cobra.Command {
	var score bool

	cmd := &cobra.Command{
		Use:   "lyrics <words>",
		Short: "Search lyric lines of indexed tracks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			render.LyricsResults(cmd.OutOrStdout(), e.app.SearchLyrics(strings.Join(args, " ")), score)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&score, "score", "s", false, "show scores")
	return cmd
}

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index sizes and stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := e.app.Stats(cmd.Context())
			if err != nil {
				return err
			}
			render.Stats(cmd.OutOrStdout(), stats.Tracks, stats.Lyrics, stats.Entries)
			return nil
		},
	}
}

func newWatchCmd(e *env) *cobra.Command {
	var rescan bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the indices up to date while library files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if rescan {
				if _, err := e.app.Refresh(ctx); err != nil {
					return err
				}
			}
			err := e.app.Watch(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&rescan, "rescan", false, "rescan the library before watching")
	return cmd
}
