package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
	"noticeboard/internal/notifications"
	"noticeboard/internal/pipeline"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send ntfy notifications for the catalog",
	}
	cmd.AddCommand(newNotifyDigestCommand(ctx))
	cmd.AddCommand(newNotifyTestCommand(ctx))
	return cmd
}

func newNotifyDigestCommand(ctx *commandContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the daily digest of tomorrow's events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().AddDate(0, 0, 1)
			if date != "" {
				parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
				day = parsed
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if cfg.Notifications.NtfyTopic == "" {
					return fmt.Errorf("notifications.ntfy_topic is not configured")
				}
				events, err := pipeline.DigestEvents(cmd.Context(), store, day)
				if err != nil {
					return err
				}
				notifier := notifications.NewService(cfg)
				if err := notifier.NotifyDigest(cmd.Context(), day, events); err != nil {
					return fmt.Errorf("send digest: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Digest sent: %d events on %s\n", len(events), day.Format("2006-01-02"))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Digest day as YYYY-MM-DD (default tomorrow)")
	return cmd
}

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to verify the ntfy topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				return fmt.Errorf("notifications.ntfy_topic is not configured")
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to topic %q\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
}
