package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/logging"
	"github.com/cehokocof/telebio/internal/adapters/telegram"
	"github.com/cehokocof/telebio/internal/domain/config"
	"github.com/cehokocof/telebio/internal/ports"
)

var (
	// Global flags
	flagDir     string
	flagEnv     string
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "telebio",
	Short: "Automatic Telegram bio updater",
	Long: `TeleBio rotates the bio of your Telegram account on a schedule.

Phrases come from a local list (data/phrases.json) or from YandexGPT.
While the daemon runs, a management bot and a local control socket let
you check status, switch modes, pause the schedule and force an update.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", ".", "working directory for session and data files")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "", "dotenv file (default: <dir>/.env)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: <dir>/telebio.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

// loadSettings resolves the configuration with the global flags applied.
func loadSettings() (*config.Settings, error) {
	return config.Load(config.Options{
		BaseDir:    flagDir,
		DotenvPath: flagEnv,
		FilePath:   flagConfig,
	})
}

// newLogger builds the console logger for long-running commands.
// --verbose wins over the configured level.
func newLogger(settings *config.Settings) ports.Logger {
	level := settings.LogLevel
	if flagVerbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(logging.WithLevel(level))
}

// sessionError maps a missing-session failure to a friendly message.
// Everything else passes through unchanged.
func sessionError(err error, settings *config.Settings) error {
	if errors.Is(err, telegram.ErrNotAuthorized) {
		return config.NewUserError(config.ErrCodeNotAuthorized, "No authorized Telegram session was found").
			WithContext(settings.SessionPath()).
			WithSuggestion("Run 'telebio login' once to sign in, then try again").
			WithUnderlying(err)
	}
	return err
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if flagVerbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
