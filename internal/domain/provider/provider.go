// Package provider defines the bio source port and its selection modes.
//
// A Provider yields the next bio text on demand. Two implementations
// exist: list (phrases cycled from a local JSON file) and llm (YandexGPT
// generation). The rest of the application only sees this interface.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Provider yields bio texts, one per call.
type Provider interface {
	// Name identifies the provider ("list" or "llm").
	Name() string

	// Next returns the next bio text.
	Next(ctx context.Context) (string, error)
}

// Mode selects which provider implementation serves updates.
type Mode string

const (
	// ModeList cycles phrases from a local JSON file.
	ModeList Mode = "list"
	// ModeLLM generates phrases via the YandexGPT API.
	ModeLLM Mode = "llm"
)

// String returns the mode name as used in configuration and bot commands.
func (m Mode) String() string {
	return string(m)
}

// ParseMode converts a BIO_PROVIDER value or /set_mode argument to a Mode.
// Matching is case-insensitive; anything but list/llm is an error.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "list":
		return ModeList, nil
	case "llm":
		return ModeLLM, nil
	default:
		return "", fmt.Errorf("unknown provider mode %q: use 'list' or 'llm'", s)
	}
}

// Factory builds a provider for a mode. The updater resolves its provider
// through a Factory on every cycle, so a mode switch takes effect on the
// next update without restarting anything.
type Factory func(mode Mode) (Provider, error)
