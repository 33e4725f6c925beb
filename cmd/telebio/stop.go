package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
)

var stopForce bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Long: `Stop the daemon over the control socket.

A running update cycle is given time to finish. --force shortens the
grace period to five seconds.`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVar(&stopForce, "force", false, "Force immediate stop")

	rootCmd.AddCommand(stopCmd)
}

func runStop(_ *cobra.Command, _ []string) error {
	client := ipc.NewClient(ipc.ClientConfig{})

	if !client.IsRunning() {
		fmt.Println("telebio is not running.")
		return nil
	}

	fmt.Println("Stopping telebio...")

	timeout := 30 * time.Second
	if stopForce {
		timeout = 5 * time.Second
	}

	resp, err := client.Stop(stopForce, timeout)
	if err != nil {
		return fmt.Errorf("stopping daemon: %w", err)
	}

	if !resp.Success {
		return fmt.Errorf("daemon stop failed: %s", resp.Message)
	}

	fmt.Println("telebio stopped.")
	return nil
}
