package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
	"github.com/cehokocof/telebio/internal/deploy"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the systemd user service",
	Long: `Install telebio as a systemd user service so the daemon starts at
login and restarts after crashes.

The unit runs the current binary with the current --dir as its working
directory. After upgrading the binary to a new location, run install
again.`,
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and start the user service",
	RunE:  runServiceInstall,
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop and remove the user service",
	RunE:  runServiceUninstall,
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Inspect the installed unit",
	RunE:  runServiceStatus,
}

func init() {
	serviceCmd.AddCommand(serviceInstallCmd)
	serviceCmd.AddCommand(serviceUninstallCmd)
	serviceCmd.AddCommand(serviceStatusCmd)

	rootCmd.AddCommand(serviceCmd)
}

func runServiceInstall(_ *cobra.Command, _ []string) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("service install supports linux with systemd only")
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	workDir, err := filepath.Abs(flagDir)
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	unitDir, err := deploy.UnitDir()
	if err != nil {
		return err
	}
	unitPath := filepath.Join(unitDir, deploy.UnitName)
	content := deploy.RenderUnit(deploy.UnitConfig{
		ExecPath:   execPath,
		WorkingDir: workDir,
	})

	// #nosec G301 -- systemd user services must be readable by systemd.
	if err := os.MkdirAll(unitDir, 0o755); err != nil {
		return fmt.Errorf("creating systemd directory: %w", err)
	}
	// #nosec G306 -- systemd service files must be readable by systemd.
	if err := os.WriteFile(unitPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing service file: %w", err)
	}

	cmds := [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", "telebio"},
		{"systemctl", "--user", "start", "telebio"},
	}
	for _, cmdArgs := range cmds {
		// #nosec G204 -- command arguments are static and controlled.
		cmd := exec.Command(cmdArgs[0], cmdArgs[1:]...)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("running %v: %w", cmdArgs, err)
		}
	}

	fmt.Printf("Service installed: %s\n", unitPath)
	fmt.Println("telebio will start automatically at login.")
	return nil
}

func runServiceUninstall(_ *cobra.Command, _ []string) error {
	unitPath, err := deploy.UnitPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(unitPath); os.IsNotExist(err) {
		fmt.Println("Service is not installed.")
		return nil
	}

	// Stopping a unit that is not running is fine, so failures here
	// only matter for the file removal below.
	_ = exec.Command("systemctl", "--user", "disable", "--now", "telebio").Run()

	if err := os.Remove(unitPath); err != nil {
		return fmt.Errorf("removing service file: %w", err)
	}
	_ = exec.Command("systemctl", "--user", "daemon-reload").Run()

	fmt.Println("Service uninstalled.")
	return nil
}

func runServiceStatus(_ *cobra.Command, _ []string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	unitPath, err := deploy.UnitPath()
	if err != nil {
		return err
	}

	state, err := deploy.InspectUnit(unitPath, execPath)
	if err != nil {
		return err
	}

	if !state.Installed {
		fmt.Println("Service is not installed.")
		fmt.Println("")
		fmt.Println("Install it with:")
		fmt.Println("  telebio service install")
		return nil
	}

	fmt.Printf("Unit:        %s\n", state.Path)
	fmt.Printf("ExecStart:   %s\n", state.ExecStart)
	fmt.Printf("WorkingDir:  %s\n", state.WorkingDir)

	client := ipc.NewClient(ipc.ClientConfig{})
	if client.IsRunning() {
		fmt.Printf("Daemon:      running (PID %d)\n", client.PID())
	} else {
		fmt.Println("Daemon:      not running")
	}

	if !state.Current {
		fmt.Println("")
		fmt.Printf("Warning: the unit starts %s, not this binary.\n", state.ExecStart)
		fmt.Println("Run 'telebio service install' to point it at the current executable.")
	}
	return nil
}
