package deploy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// UnitName is the systemd user unit file name.
const UnitName = "telebio.service"

// UnitConfig carries the values substituted into the unit template.
type UnitConfig struct {
	ExecPath   string
	WorkingDir string
}

// RenderUnit produces the systemd user unit for running the daemon at
// login. "run" stays in the foreground, so systemd supervises it
// directly without a pid file.
func RenderUnit(cfg UnitConfig) string {
	return fmt.Sprintf(`[Unit]
Description=telebio auto bio updater
After=network-online.target

[Service]
Type=simple
ExecStart=%s run
WorkingDirectory=%s
Restart=on-failure
RestartSec=10

[Install]
WantedBy=default.target
`, cfg.ExecPath, cfg.WorkingDir)
}

// UnitDir returns the systemd user unit directory.
func UnitDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(configDir, "systemd", "user"), nil
}

// UnitPath returns the full path of the installed unit file.
func UnitPath() (string, error) {
	dir, err := UnitDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UnitName), nil
}

// UnitState describes an installed unit file.
type UnitState struct {
	Path       string
	Installed  bool
	ExecStart  string
	WorkingDir string

	// Current reports whether ExecStart still launches the executable
	// the state was inspected against. Stale units keep starting an old
	// binary after an upgrade moved the new one elsewhere.
	Current bool
}

// InspectUnit parses the unit file at path and compares its ExecStart
// against execPath. A missing file is not an error, Installed stays false.
func InspectUnit(path, execPath string) (UnitState, error) {
	state := UnitState{Path: path}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return state, nil
		}
		return state, fmt.Errorf("checking unit file: %w", err)
	}
	state.Installed = true

	cfg, err := ini.Load(path)
	if err != nil {
		return state, fmt.Errorf("parsing unit file: %w", err)
	}
	section, err := cfg.GetSection("Service")
	if err != nil {
		return state, fmt.Errorf("unit file %s has no [Service] section", path)
	}

	state.ExecStart = section.Key("ExecStart").String()
	state.WorkingDir = section.Key("WorkingDirectory").String()

	fields := strings.Fields(state.ExecStart)
	state.Current = len(fields) > 0 && fields[0] == execPath
	return state, nil
}
