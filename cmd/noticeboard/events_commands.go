package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Query the deduplicated event catalog",
	}
	cmd.AddCommand(newEventsListCommand(ctx))
	cmd.AddCommand(newEventsShowCommand(ctx))
	cmd.AddCommand(newEventsSummaryCommand(ctx))
	return cmd
}

type listFlags struct {
	upcoming bool
	past     bool
	today    bool
	tomorrow bool
	thisWeek bool
	category string
	keyword  string
}

func (f *listFlags) filter(now time.Time) (catalog.Filter, error) {
	windows := 0
	for _, set := range []bool{f.upcoming, f.past, f.today, f.tomorrow, f.thisWeek} {
		if set {
			windows++
		}
	}
	if windows > 1 {
		return catalog.Filter{}, fmt.Errorf("at most one of --upcoming, --past, --today, --tomorrow, --this-week may be set")
	}

	filter := catalog.Filter{Category: f.category, Keyword: f.keyword}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case f.upcoming:
		filter.From = &now
	case f.past:
		filter.To = &now
	case f.today:
		end := day.AddDate(0, 0, 1)
		filter.From = &day
		filter.To = &end
	case f.tomorrow:
		start := day.AddDate(0, 0, 1)
		end := day.AddDate(0, 0, 2)
		filter.From = &start
		filter.To = &end
	case f.thisWeek:
		end := day.AddDate(0, 0, 7)
		filter.From = &day
		filter.To = &end
	}
	return filter, nil
}

func newEventsListCommand(ctx *commandContext) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog events, optionally narrowed by time window or category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter(time.Now())
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				events, err := store.ListEvents(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No events match.")
					return nil
				}
				printEventTable(cmd, events)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&flags.upcoming, "upcoming", false, "Only events from now on")
	cmd.Flags().BoolVar(&flags.past, "past", false, "Only events before now")
	cmd.Flags().BoolVar(&flags.today, "today", false, "Only events happening today")
	cmd.Flags().BoolVar(&flags.tomorrow, "tomorrow", false, "Only events happening tomorrow")
	cmd.Flags().BoolVar(&flags.thisWeek, "this-week", false, "Only events in the next seven days")
	cmd.Flags().StringVar(&flags.category, "category", "", "Only events in this category")
	cmd.Flags().StringVar(&flags.keyword, "keyword", "", "Only events whose title or description contains this text")
	return cmd
}

func newEventsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one event in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid event id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				event, err := store.GetEvent(cmd.Context(), id)
				if err != nil {
					return err
				}
				printEventDetail(cmd, event)
				return nil
			})
		},
	}
}

func newEventsSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show catalog totals and the per-category breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				totals, err := store.TotalCounts(cmd.Context())
				if err != nil {
					return err
				}
				counts, err := store.CategoryCounts(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Catalog: %d events from %d candidates\n\n", totals.Events, totals.Candidates)
				if len(counts) == 0 {
					fmt.Fprintln(out, "No events classified yet.")
					return nil
				}
				printCategoryCounts(cmd, counts)
				return nil
			})
		},
	}
}

func printEventTable(cmd *cobra.Command, events []*catalog.Event) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, []string{
			strconv.FormatInt(event.ID, 10),
			event.OccursAt.Format("Mon 02 Jan 15:04"),
			event.Title,
			event.Location,
			event.Category,
		})
	}

	// Plain tab-separated rows when piped, for grep/cut friendliness.
	if !isTerminal(out) {
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
		return
	}

	fmt.Fprintln(out, renderTable(
		[]string{"ID", "When", "Title", "Location", "Category"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}

func printEventDetail(cmd *cobra.Command, event *catalog.Event) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Event #%d\n", event.ID)
	fmt.Fprintf(out, "  Title:    %s\n", event.Title)
	fmt.Fprintf(out, "  When:     %s\n", event.OccursAt.Format("Monday, 2 January 2006 at 15:04"))
	if event.Location != "" {
		fmt.Fprintf(out, "  Where:    %s\n", event.Location)
	}
	fmt.Fprintf(out, "  Category: %s\n", event.Category)
	if len(event.Sources) > 0 {
		fmt.Fprintf(out, "  Sources:  %s\n", event.SourceList())
	}
	if fragments := event.Fragments(); len(fragments) > 0 {
		fmt.Fprintln(out, "  Description:")
		for _, fragment := range fragments {
			fmt.Fprintf(out, "    - %s\n", fragment)
		}
	}
}
