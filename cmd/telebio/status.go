package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
	"github.com/cehokocof/telebio/internal/domain/updater"
)

var (
	statusJSON  bool
	statusWatch bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon status",
	Long: `Show what the running daemon is doing: current state, active
provider mode, the last applied bio and when the next update is due.

Examples:
  telebio status           # One-shot status
  telebio status --json    # Machine-readable output
  telebio status --watch   # Refresh every two seconds`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Continuously update status")

	rootCmd.AddCommand(statusCmd)
}

var titleCase = cases.Title(language.English)

func runStatus(_ *cobra.Command, _ []string) error {
	client := ipc.NewClient(ipc.ClientConfig{})

	if statusWatch {
		return watchStatus(client)
	}

	if !client.IsRunning() {
		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"running": false,
			})
		}
		fmt.Println("telebio is not running.")
		fmt.Println("")
		fmt.Println("Start it with:")
		fmt.Println("  telebio run")
		return nil
	}

	resp, err := client.Status()
	if err != nil {
		return fmt.Errorf("requesting status: %w", err)
	}

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"running":    true,
			"pid":        resp.PID,
			"version":    resp.Version,
			"botEnabled": resp.BotEnabled,
			"status":     resp.Status,
			"history":    resp.History,
		})
	}

	printStatus(resp)
	return nil
}

func printStatus(resp *ipc.StatusResponse) {
	st := resp.Status

	fmt.Printf("TeleBio Status\n")
	fmt.Println("──────────────")
	fmt.Printf("Running:  yes (PID %d)\n", resp.PID)
	fmt.Printf("Version:  %s\n", resp.Version)
	fmt.Printf("State:    %s\n", titleCase.String(string(st.State)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Mode:\t%s\n", st.Mode)
	_, _ = fmt.Fprintf(w, "Interval:\t%s\n", st.Interval)
	_, _ = fmt.Fprintf(w, "Uptime:\t%s\n", formatDuration(st.Uptime))
	_, _ = fmt.Fprintf(w, "Updates:\t%d (%d failed)\n", st.UpdateCount, st.ErrorCount)

	if st.LastBio != "" {
		_, _ = fmt.Fprintf(w, "Current Bio:\t%s\n", st.LastBio)
	}
	if !st.LastUpdateAt.IsZero() {
		_, _ = fmt.Fprintf(w, "Last Update:\t%s (%s ago)\n",
			st.LastUpdateAt.Format("2006-01-02 15:04:05"),
			formatDuration(time.Since(st.LastUpdateAt)))
	}
	if !st.NextUpdateAt.IsZero() {
		_, _ = fmt.Fprintf(w, "Next Update:\t%s (in %s)\n",
			st.NextUpdateAt.Format("2006-01-02 15:04:05"),
			formatDuration(time.Until(st.NextUpdateAt)))
	}
	if st.LastError != "" {
		_, _ = fmt.Fprintf(w, "Last Error:\t%s\n", st.LastError)
	}
	if resp.BotEnabled {
		_, _ = fmt.Fprintf(w, "Bot:\tenabled\n")
	} else {
		_, _ = fmt.Fprintf(w, "Bot:\tdisabled\n")
	}
	_ = w.Flush()

	if len(resp.History) > 0 {
		fmt.Println()
		fmt.Println("Recent:")
		shown := 0
		for i := len(resp.History) - 1; i >= 0 && shown < 3; i-- {
			entry := resp.History[i]
			fmt.Printf("  %s  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Bio)
			shown++
		}
	}
}

func watchStatus(client *ipc.Client) error {
	fmt.Println("Watching telebio status (Ctrl+C to stop)...")
	fmt.Println()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		// Clear screen (basic implementation)
		fmt.Print("\033[H\033[2J")

		if !client.IsRunning() {
			fmt.Println("telebio is not running.")
			fmt.Println("Waiting for the daemon to start...")
		} else {
			resp, err := client.Status()
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("TeleBio Status (updated %s)\n", time.Now().Format("15:04:05"))
				fmt.Println("────────────────────────────────")
				fmt.Printf("State:    %s\n", titleCase.String(string(resp.Status.State)))
				fmt.Printf("Mode:     %s\n", resp.Status.Mode)
				fmt.Printf("Updates:  %d (%d failed)\n", resp.Status.UpdateCount, resp.Status.ErrorCount)
				if resp.Status.LastBio != "" {
					fmt.Printf("Bio:      %s\n", resp.Status.LastBio)
				}
				if resp.Status.State == updater.StatePaused {
					fmt.Println("Schedule: paused")
				} else if !resp.Status.NextUpdateAt.IsZero() {
					fmt.Printf("Next:     in %s\n", formatDuration(time.Until(resp.Status.NextUpdateAt)))
				}
			}
		}

		<-ticker.C
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dd %dh", int(d.Hours())/24, int(d.Hours())%24)
}
