// Package app wires the adapters and domain services into the running
// daemon.
package app

import (
	"fmt"

	"github.com/cehokocof/telebio/internal/domain/config"
	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/domain/provider/list"
	"github.com/cehokocof/telebio/internal/domain/provider/llm"
	"github.com/cehokocof/telebio/internal/ports"
)

// ProviderFactory builds the bio source for whichever mode is active
// when a cycle runs. Construction happens per cycle, so a mode switch or
// an edited phrases file takes effect on the next update without a
// restart.
func ProviderFactory(settings config.Settings, logger ports.Logger) provider.Factory {
	return func(mode provider.Mode) (provider.Provider, error) {
		switch mode {
		case provider.ModeList:
			return list.New(list.Config{
				Path:   settings.PhrasesPath(),
				Logger: logger,
			})
		case provider.ModeLLM:
			return llm.New(llm.Config{
				APIKey:       settings.Yandex.APIKey,
				FolderID:     settings.Yandex.FolderID,
				Model:        settings.Yandex.Model,
				Temperature:  settings.Yandex.Temperature,
				ExamplesPath: settings.ExamplesPath(),
				Logger:       logger,
			})
		default:
			return nil, fmt.Errorf("no provider for mode %q", mode)
		}
	}
}
