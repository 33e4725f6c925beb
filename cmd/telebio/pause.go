package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause scheduled bio updates",
	Long: `Pause the update schedule of the running daemon.

The current bio stays in place and the daemon keeps running; it just
skips scheduled updates until you resume. 'telebio update' still works
while paused.`,
	RunE: runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume scheduled bio updates",
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runPause(_ *cobra.Command, _ []string) error {
	client := ipc.NewClient(ipc.ClientConfig{})

	resp, err := client.Pause()
	if err != nil {
		return err
	}

	if resp.Changed {
		fmt.Println("Scheduled updates paused. Resume with 'telebio resume'.")
	} else {
		fmt.Println("Already paused.")
	}
	return nil
}

func runResume(_ *cobra.Command, _ []string) error {
	client := ipc.NewClient(ipc.ClientConfig{})

	resp, err := client.Resume()
	if err != nil {
		return err
	}

	if resp.Changed {
		fmt.Println("Scheduled updates resumed.")
	} else {
		fmt.Println("Not paused.")
	}
	return nil
}
