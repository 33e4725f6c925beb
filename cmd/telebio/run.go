package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
	"github.com/cehokocof/telebio/internal/app"
)

var runDetach bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bio updater daemon",
	Long: `Run the bio updater in the foreground.

The daemon updates your bio on the configured interval, serves the
management bot (when BOT_TOKEN is set) and answers status, pause and
update requests on a local control socket.

Use --detach to fork into the background instead; under systemd or in a
container, run without it.

Examples:
  telebio run              # Run in the foreground (Ctrl+C to stop)
  telebio run --detach     # Fork into the background
  telebio stop             # Stop a detached daemon`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runDetach, "detach", "d", false, "Run in the background")

	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	client := ipc.NewClient(ipc.ClientConfig{})
	if client.IsRunning() {
		return fmt.Errorf("telebio is already running (PID %d)", client.PID())
	}

	if runDetach {
		return detach()
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(settings)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = app.Run(ctx, app.Options{
		Settings: *settings,
		Version:  version,
		Logger:   logger,
	})
	return sessionError(err, settings)
}

// detach re-executes the binary in the background with the same
// configuration flags.
func detach() error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	// The child may outlive this shell, so pin the working directory.
	absDir, err := filepath.Abs(flagDir)
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	args := []string{"run", "--dir", absDir}
	if flagEnv != "" {
		args = append(args, "--env", flagEnv)
	}
	if flagConfig != "" {
		args = append(args, "--config", flagConfig)
	}

	// #nosec G204 -- arguments are validated flags from this CLI, not user-controlled input.
	cmd := exec.Command(execPath, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	cmd.SysProcAttr = daemonProcAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}

	fmt.Printf("telebio started (PID %d)\n", cmd.Process.Pid)
	fmt.Println("Check it with 'telebio status', stop it with 'telebio stop'.")

	_ = cmd.Process.Release()
	return nil
}
