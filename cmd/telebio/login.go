package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/telegram"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Telegram and store the session",
	Long: `Sign in to the Telegram account whose bio should be updated.

You will be asked for your phone number, the login code Telegram sends
you, and your two-factor password if one is set. The session is stored
next to your configuration and reused by every later command, so login
is needed only once per machine.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	// No logger here: log lines would interleave with the prompts.
	client, err := telegram.New(telegram.Config{
		APIID:       settings.APIID,
		APIHash:     settings.APIHash,
		SessionPath: settings.SessionPath(),
		Version:     version,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("Signing in to Telegram...")
	identity, err := client.Login(ctx, os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	name := identity.FirstName
	if identity.Username != "" {
		name += " (@" + identity.Username + ")"
	}
	fmt.Printf("Signed in as %s.\n", name)
	fmt.Printf("Session stored at %s\n", settings.SessionPath())
	fmt.Println("\nNext steps:")
	fmt.Println("  telebio once   - Try a single bio update")
	fmt.Println("  telebio run    - Start the daemon")
	return nil
}
