// Package list implements the phrase-list bio provider.
//
// Phrases come from a JSON file holding an array of strings. They are
// served sequentially with wrap-around, so every phrase gets its turn
// before any repeats.
package list

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cehokocof/telebio/internal/domain/bio"
	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/ports"
)

var (
	// ErrNotFound indicates the phrases file does not exist.
	ErrNotFound = errors.New("phrases file not found")
	// ErrInvalidFormat indicates the file is not a JSON array of strings.
	ErrInvalidFormat = errors.New("phrases file must contain a JSON array of strings")
	// ErrEmptyList indicates the file parsed but holds no phrases.
	ErrEmptyList = errors.New("phrases file is empty")
)

// Config configures the list provider.
type Config struct {
	// Path to the JSON phrases file.
	Path string
	// Logger is optional; load warnings go here.
	Logger ports.Logger
}

// Provider cycles through phrases loaded from a JSON file.
type Provider struct {
	mu      sync.Mutex
	phrases []string
	index   int
}

// New loads the phrases file and builds a provider. Phrases longer than
// the Telegram bio limit are truncated at load, with a warning.
func New(cfg Config) (*Provider, error) {
	log := cfg.Logger
	if log == nil {
		log = ports.DiscardLogger
	}

	phrases, err := load(cfg.Path, log)
	if err != nil {
		return nil, err
	}

	log.Info(context.Background(), "phrases loaded",
		ports.F("count", len(phrases)), ports.F("path", cfg.Path))

	return &Provider{phrases: phrases}, nil
}

// Name identifies the provider mode.
func (p *Provider) Name() string {
	return provider.ModeList.String()
}

// Next returns the next phrase, cycling through the list.
func (p *Provider) Next(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.phrases) == 0 {
		return "", ErrEmptyList
	}

	phrase := p.phrases[p.index]
	p.index = (p.index + 1) % len(p.phrases)
	return phrase, nil
}

// Len reports how many phrases are loaded.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.phrases)
}

func load(path string, log ports.Logger) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading phrases file %s: %w", path, err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}

	phrases := make([]string, 0, len(raw))
	for _, phrase := range raw {
		if cut, truncated := bio.Truncate(phrase); truncated {
			log.Warn(context.Background(), "phrase truncated to bio limit",
				ports.F("limit", bio.MaxLength), ports.F("phrase", cut))
			phrase = cut
		}
		phrases = append(phrases, phrase)
	}

	if len(phrases) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyList, path)
	}

	return phrases, nil
}

// Ensure Provider satisfies the port.
var _ provider.Provider = (*Provider)(nil)
