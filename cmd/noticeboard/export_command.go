package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/spf13/cobra"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
)

// defaultEventDuration is used for DTEND because captions carry a start
// time only.
const defaultEventDuration = time.Hour

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		output string
		flags  listFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export catalog events as an iCalendar (.ics) feed",
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

				serialized := buildCalendar(events).Serialize()
				if output == "" || output == "-" {
					fmt.Fprint(cmd.OutOrStdout(), serialized)
					return nil
				}
				if err := os.WriteFile(output, []byte(serialized), 0o644); err != nil {
					return fmt.Errorf("write calendar: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events to %s\n", len(events), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&flags.upcoming, "upcoming", false, "Only events from now on")
	cmd.Flags().BoolVar(&flags.thisWeek, "this-week", false, "Only events in the next seven days")
	cmd.Flags().StringVar(&flags.category, "category", "", "Only events in this category")
	return cmd
}

func buildCalendar(events []*catalog.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//noticeboard//campus events//EN")

	now := time.Now().UTC()
	for _, event := range events {
		ve := cal.AddEvent(fmt.Sprintf("noticeboard-event-%d", event.ID))
		ve.SetDtStampTime(now)
		ve.SetStartAt(event.OccursAt)
		ve.SetEndAt(event.OccursAt.Add(defaultEventDuration))
		ve.SetSummary(event.Title)
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if description := calendarDescription(event); description != "" {
			ve.SetDescription(description)
		}
	}
	return cal
}

func calendarDescription(event *catalog.Event) string {
	parts := event.Fragments()
	if event.Category != "" && event.Category != catalog.CategoryOther {
		parts = append(parts, "Category: "+event.Category)
	}
	if len(event.Sources) > 0 {
		parts = append(parts, "Sources: "+event.SourceList())
	}
	return strings.Join(parts, "\n")
}
