// Package seed carries the starter files "telebio init" lays down in a
// fresh working directory.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed env.example
var envExample []byte

//go:embed phrases.json
var phrases []byte

//go:embed examples.json
var examples []byte

// File is one starter file with its path relative to the working
// directory.
type File struct {
	Path    string
	Content []byte
}

// Files lists the starter files in write order.
func Files() []File {
	return []File{
		{Path: ".env.example", Content: envExample},
		{Path: filepath.Join("data", "phrases.json"), Content: phrases},
		{Path: filepath.Join("data", "examples.json"), Content: examples},
	}
}

// Write lays the starter files down under dir. Existing files are kept
// unless force is set. It returns the relative paths actually written.
func Write(dir string, force bool) ([]string, error) {
	var written []string
	for _, f := range Files() {
		target := filepath.Join(dir, f.Path)
		if !force {
			if _, err := os.Stat(target); err == nil {
				continue
			}
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		// #nosec G306 -- starter files are meant to be edited by the user.
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", target, err)
		}
		written = append(written, f.Path)
	}
	return written, nil
}
