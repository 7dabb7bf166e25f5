package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
	"noticeboard/internal/notifications"
	"noticeboard/internal/pipeline"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Re-run keyword classification across the whole catalog",
		Long: `Classify assigns every event a category from its title and description.
Ingest already classifies as it runs; this command exists to reclassify
an existing catalog after the keyword families change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				runner := pipeline.NewRunner(cfg, store, notifications.NewService(cfg), logger)
				classified, counts, err := runner.ClassifyAll(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Classified %d events\n", classified)
				if len(counts) > 0 {
					fmt.Fprintln(out)
					printCategoryCounts(cmd, counts)
				}
				return nil
			})
		},
	}
}
