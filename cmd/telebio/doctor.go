package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
	"github.com/cehokocof/telebio/internal/deploy"
	"github.com/cehokocof/telebio/internal/domain/bio"
	"github.com/cehokocof/telebio/internal/domain/config"
	"github.com/cehokocof/telebio/internal/domain/provider"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the telebio setup",
	Long: `Check configuration, session, data files and the daemon, and point
out what is missing before it bites at runtime.

Examples:
  telebio doctor           # Human-readable report
  telebio doctor --json    # Machine-readable report`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok, warn or fail
	Detail string `json:"detail,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

func runDoctor(_ *cobra.Command, _ []string) error {
	var results []checkResult

	settings, err := loadSettings()
	if err != nil {
		results = append(results, checkResult{
			Name:   "configuration",
			Status: "fail",
			Detail: formatError(err),
		})
	} else {
		results = append(results, checkResult{
			Name:   "configuration",
			Status: "ok",
			Detail: fmt.Sprintf("mode %s, interval %s", settings.Mode, settings.UpdateInterval),
		})
		results = append(results, checkSession(settings))
		results = append(results, checkPhrases(settings))
		if settings.Mode == provider.ModeLLM {
			results = append(results, checkExamples(settings))
		}
		results = append(results, checkBot(settings))
	}

	results = append(results, checkDaemon())
	if unit := checkUnit(); unit != nil {
		results = append(results, *unit)
	}

	if doctorJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printChecks(results)
	}

	failed := 0
	for _, r := range results {
		if r.Status == "fail" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func printChecks(results []checkResult) {
	fmt.Println("Checking telebio setup...")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	clean := true
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Status, r.Name, r.Detail)
		if r.Status != "ok" {
			clean = false
		}
	}
	_ = w.Flush()

	for _, r := range results {
		if r.Status != "ok" && r.Hint != "" {
			fmt.Printf("\n%s: %s\n", r.Name, r.Hint)
		}
	}

	if clean {
		fmt.Println("\nEverything looks good.")
	}
}

func checkSession(settings *config.Settings) checkResult {
	path := settings.SessionPath()
	if _, err := os.Stat(path); err != nil {
		return checkResult{
			Name:   "session",
			Status: "fail",
			Detail: "no session file at " + path,
			Hint:   "Run 'telebio login' to sign in",
		}
	}
	return checkResult{Name: "session", Status: "ok", Detail: path}
}

func checkPhrases(settings *config.Settings) checkResult {
	path := settings.PhrasesPath()

	raw, err := os.ReadFile(path)
	if err != nil {
		return checkResult{
			Name:   "phrases",
			Status: "fail",
			Detail: err.Error(),
			Hint:   "Run 'telebio init' to create a starter phrases file",
		}
	}

	var phrases []string
	if err := json.Unmarshal(raw, &phrases); err != nil {
		return checkResult{
			Name:   "phrases",
			Status: "fail",
			Detail: path + " is not a JSON array of strings",
		}
	}
	if len(phrases) == 0 {
		return checkResult{
			Name:   "phrases",
			Status: "fail",
			Detail: path + " holds no phrases",
		}
	}

	over := 0
	for _, p := range phrases {
		if bio.Length(p) > bio.MaxLength {
			over++
		}
	}
	if over > 0 {
		return checkResult{
			Name:   "phrases",
			Status: "warn",
			Detail: fmt.Sprintf("%d phrases, %d exceed %d characters and will be truncated", len(phrases), over, bio.MaxLength),
		}
	}
	return checkResult{Name: "phrases", Status: "ok", Detail: fmt.Sprintf("%d phrases", len(phrases))}
}

func checkExamples(settings *config.Settings) checkResult {
	path := settings.ExamplesPath()

	raw, err := os.ReadFile(path)
	if err != nil {
		return checkResult{
			Name:   "examples",
			Status: "warn",
			Detail: "no examples file, llm prompts run without few-shot examples",
		}
	}

	var examples []string
	if err := json.Unmarshal(raw, &examples); err != nil {
		return checkResult{
			Name:   "examples",
			Status: "fail",
			Detail: path + " is not a JSON array of strings",
		}
	}
	return checkResult{Name: "examples", Status: "ok", Detail: fmt.Sprintf("%d examples", len(examples))}
}

func checkBot(settings *config.Settings) checkResult {
	if !settings.BotEnabled() {
		return checkResult{
			Name:   "bot",
			Status: "ok",
			Detail: "management bot disabled (BOT_TOKEN not set)",
		}
	}
	return checkResult{Name: "bot", Status: "ok", Detail: "management bot enabled"}
}

func checkDaemon() checkResult {
	client := ipc.NewClient(ipc.ClientConfig{})
	if client.IsRunning() {
		return checkResult{
			Name:   "daemon",
			Status: "ok",
			Detail: fmt.Sprintf("running (PID %d)", client.PID()),
		}
	}
	return checkResult{
		Name:   "daemon",
		Status: "warn",
		Detail: "not running",
		Hint:   "Start it with 'telebio run'",
	}
}

// checkUnit reports on the systemd unit when one is installed; a machine
// without the unit is not a finding.
func checkUnit() *checkResult {
	if runtime.GOOS != "linux" {
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	unitPath, err := deploy.UnitPath()
	if err != nil {
		return nil
	}

	state, err := deploy.InspectUnit(unitPath, execPath)
	if err != nil {
		return &checkResult{Name: "service", Status: "warn", Detail: err.Error()}
	}
	if !state.Installed {
		return nil
	}
	if !state.Current {
		return &checkResult{
			Name:   "service",
			Status: "warn",
			Detail: "unit starts " + state.ExecStart,
			Hint:   "Run 'telebio service install' to point it at this binary",
		}
	}
	return &checkResult{Name: "service", Status: "ok", Detail: "unit points at this binary"}
}
