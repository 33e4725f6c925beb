package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/telegram"
	"github.com/cehokocof/telebio/internal/app"
	"github.com/cehokocof/telebio/internal/domain/bio"
	"github.com/cehokocof/telebio/internal/domain/updater"
)

var onceDryRun bool

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Update the bio a single time",
	Long: `Generate one bio with the configured provider and apply it.

With --dry-run the bio is only generated and printed, which works
without a Telegram session and is the quickest way to check your
phrases file or YandexGPT credentials.

Examples:
  telebio once             # Apply one bio update now
  telebio once --dry-run   # Preview the next bio without applying it`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().BoolVar(&onceDryRun, "dry-run", false, "Generate the bio but do not apply it")

	rootCmd.AddCommand(onceCmd)
}

func runOnce(_ *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(settings)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if onceDryRun {
		p, err := app.ProviderFactory(*settings, logger)(settings.Mode)
		if err != nil {
			return err
		}
		text, err := p.Next(ctx)
		if err != nil {
			return fmt.Errorf("generating bio: %w", err)
		}
		text = bio.Sanitize(text)
		if err := bio.Validate(text); err != nil {
			return fmt.Errorf("provider %s: %w", settings.Mode, err)
		}
		text, _ = bio.Truncate(text)
		fmt.Printf("Would set bio (%s): %s\n", settings.Mode, text)
		return nil
	}

	client, err := telegram.New(telegram.Config{
		APIID:       settings.APIID,
		APIHash:     settings.APIHash,
		SessionPath: settings.SessionPath(),
		Version:     version,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	err = client.Connect(ctx, func(ctx context.Context) error {
		up, err := updater.New(updater.Config{
			Interval: settings.UpdateInterval,
			Mode:     settings.Mode,
			Factory:  app.ProviderFactory(*settings, logger),
			Profile:  client,
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		text, err := up.UpdateNow(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Bio updated: %s\n", text)
		return nil
	})
	return sessionError(err, settings)
}
