package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
	"noticeboard/internal/logging"
	"noticeboard/internal/notifications"
	"noticeboard/internal/pipeline"
	"noticeboard/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog API server",
		Long: `Serve exposes the catalog over HTTP on paths.api_bind and keeps running
until interrupted. When notifications.digest_schedule is set, a cron
scheduler sends the daily digest of tomorrow's events on that schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				srv := server.New(cfg, store, logger)
				if srv == nil {
					return fmt.Errorf("paths.api_bind is not configured")
				}
				if err := srv.Start(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "API server listening on %s\n", srv.Addr())

				scheduler, err := startDigestSchedule(runCtx, cfg, store, logger)
				if err != nil {
					srv.Stop()
					return err
				}

				<-runCtx.Done()
				if scheduler != nil {
					<-scheduler.Stop().Done()
				}
				return nil
			})
		},
	}
}

// startDigestSchedule runs the daily digest on the configured cron
// expression. Returns nil when no schedule is configured.
func startDigestSchedule(ctx context.Context, cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*cron.Cron, error) {
	schedule := cfg.Notifications.DigestSchedule
	if schedule == "" {
		return nil, nil
	}

	notifier := notifications.NewService(cfg)
	log := logging.NewComponentLogger(logger, "digest")

	scheduler := cron.New()
	_, err := scheduler.AddFunc(schedule, func() {
		day := time.Now().AddDate(0, 0, 1)
		events, err := pipeline.DigestEvents(ctx, store, day)
		if err != nil {
			log.Error("digest query failed", logging.Error(err))
			return
		}
		if err := notifier.NotifyDigest(ctx, day, events); err != nil {
			log.Error("digest send failed", logging.Error(err))
			return
		}
		log.Info("digest sent",
			logging.String("day", day.Format("2006-01-02")),
			logging.Int("events", len(events)))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}

	scheduler.Start()
	log.Info("digest schedule active", logging.String("schedule", schedule))
	return scheduler, nil
}
