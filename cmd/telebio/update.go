package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Apply a new bio immediately",
	Long: `Ask the running daemon to generate and apply a new bio right now,
outside the regular schedule. Works while the schedule is paused.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(_ *cobra.Command, _ []string) error {
	client := ipc.NewClient(ipc.ClientConfig{})

	fmt.Println("Updating bio...")
	resp, err := client.Update()
	if err != nil {
		return err
	}

	if !resp.Success {
		return fmt.Errorf("bio update failed: %s", resp.Error)
	}

	fmt.Printf("Bio updated: %s\n", resp.Bio)
	return nil
}
