package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
	"noticeboard/internal/notifications"
	"noticeboard/internal/pipeline"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <feed-path>",
		Short: "Parse a feed of scraped posts into the event catalog",
		Long: `Ingest reads one JSON feed file or a directory of feed files, parses each
caption into an event candidate, folds candidates into the deduplicated
catalog, and classifies the result. The feed path may point at a single
file or at a directory whose *.json files are ingested in name order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := pipeline.LoadPosts(args[0])
			if err != nil {
				return fmt.Errorf("load feed: %w", err)
			}
			if len(posts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Feed contains no posts; nothing to do.")
				return nil
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				runner := pipeline.NewRunner(cfg, store, notifications.NewService(cfg), logger)
				summary, err := runner.Run(cmd.Context(), posts)
				if err != nil {
					return err
				}
				printSummary(cmd, summary)
				return nil
			})
		},
	}
	return cmd
}

const summaryDurationUnit = 10 * time.Millisecond

func printSummary(cmd *cobra.Command, summary *pipeline.Summary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Ingest batch %s finished in %s\n\n", summary.BatchID, summary.Duration.Round(summaryDurationUnit))

	rows := [][]string{
		{"Posts processed", strconv.Itoa(summary.Processed)},
		{"Candidates recorded", strconv.Itoa(summary.CandidatesRecorded)},
		{"Events inserted", strconv.Itoa(summary.Inserted)},
		{"Events merged", strconv.Itoa(summary.Merged)},
		{"Events classified", strconv.Itoa(summary.Classified)},
		{"Skipped (too short)", strconv.Itoa(summary.SkippedShort)},
		{"Skipped (no date)", strconv.Itoa(summary.SkippedNoDate)},
		{"Skipped (stale)", strconv.Itoa(summary.SkippedStale)},
		{"Skipped (bad timestamp)", strconv.Itoa(summary.SkippedMalformed)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Metric", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))

	if len(summary.Categories) > 0 {
		fmt.Fprintln(out)
		printCategoryCounts(cmd, summary.Categories)
	}
}

func printCategoryCounts(cmd *cobra.Command, counts []catalog.CategoryCount) {
	rows := make([][]string, 0, len(counts))
	for _, count := range counts {
		rows = append(rows, []string{count.Category, strconv.Itoa(count.Count)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Category", "Events"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}
