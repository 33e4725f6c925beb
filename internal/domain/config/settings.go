// Package config loads and validates TeleBio settings.
//
// Settings come from the process environment first, then a .env file,
// then an optional telebio.toml, then built-in defaults. Variable names
// are fixed; see .env.example for the full list.
package config

import (
	"path/filepath"
	"time"

	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/ports"
)

// Defaults for everything that is not a credential.
const (
	DefaultSessionName  = "telebio"
	DefaultInterval     = 60 * time.Minute
	DefaultPhrasesFile  = "data/phrases.json"
	DefaultExamplesFile = "data/examples.json"
	DefaultYandexModel  = "yandexgpt-lite/latest"
	DefaultTemperature  = 0.9
)

// Settings holds the resolved application configuration.
type Settings struct {
	// APIID and APIHash are the MTProto application credentials.
	APIID   int
	APIHash string

	// BotToken enables the management bot when non-empty.
	BotToken string

	// SessionName is the session file stem; the file lives under BaseDir
	// as "<name>.session.json".
	SessionName string

	// UpdateInterval is the pause between scheduled bio updates.
	UpdateInterval time.Duration

	// Mode selects the bio provider.
	Mode provider.Mode

	// PhrasesFile and ExamplesFile are data file paths, resolved against
	// BaseDir when relative.
	PhrasesFile  string
	ExamplesFile string

	// Yandex holds the YandexGPT credentials and tuning.
	Yandex YandexSettings

	// LogLevel is the minimum log level.
	LogLevel ports.Level

	// BaseDir anchors relative paths (default: working directory).
	BaseDir string
}

// YandexSettings configures the llm provider.
type YandexSettings struct {
	APIKey      string
	FolderID    string
	Model       string
	Temperature float64
}

// PhrasesPath resolves the phrases file against BaseDir.
func (s *Settings) PhrasesPath() string {
	return s.resolve(s.PhrasesFile)
}

// ExamplesPath resolves the examples file against BaseDir.
func (s *Settings) ExamplesPath() string {
	return s.resolve(s.ExamplesFile)
}

// SessionPath is the MTProto session file location.
func (s *Settings) SessionPath() string {
	return s.resolve(s.SessionName + ".session.json")
}

// BotEnabled reports whether the management bot should run.
func (s *Settings) BotEnabled() bool {
	return s.BotToken != ""
}

func (s *Settings) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.BaseDir == "" {
		return path
	}
	return filepath.Join(s.BaseDir, path)
}

// Validate re-checks the invariants Load establishes. It exists for
// settings built by hand (tests, future config sources).
func (s *Settings) Validate() error {
	if s.APIID == 0 {
		return NewUserError(ErrCodeEnvMissing, "Telegram api_id is not set").
			WithContext("TELEGRAM_API_ID").
			WithSuggestion("get credentials at https://my.telegram.org and set TELEGRAM_API_ID")
	}
	if s.APIHash == "" {
		return NewUserError(ErrCodeEnvMissing, "Telegram api_hash is not set").
			WithContext("TELEGRAM_API_HASH").
			WithSuggestion("get credentials at https://my.telegram.org and set TELEGRAM_API_HASH")
	}
	if s.UpdateInterval < time.Minute {
		return NewUserError(ErrCodeEnvInvalid, "update interval must be at least one minute").
			WithContext("UPDATE_INTERVAL_MINUTES")
	}
	if _, err := provider.ParseMode(s.Mode.String()); err != nil {
		return NewUserError(ErrCodeModeInvalid, err.Error()).
			WithContext("BIO_PROVIDER").
			WithSuggestion("use 'list' or 'llm'")
	}
	if s.Yandex.Temperature < 0 || s.Yandex.Temperature > 1 {
		return NewUserError(ErrCodeEnvInvalid, "temperature must be between 0.0 and 1.0").
			WithContext("YANDEX_TEMPERATURE")
	}
	if s.Mode == provider.ModeLLM {
		if s.Yandex.APIKey == "" {
			return NewUserError(ErrCodeEnvMissing, "llm mode requires a YandexGPT API key").
				WithContext("YANDEX_API_KEY").
				WithSuggestion("set YANDEX_API_KEY or switch BIO_PROVIDER to 'list'")
		}
		if s.Yandex.FolderID == "" {
			return NewUserError(ErrCodeEnvMissing, "llm mode requires a Yandex Cloud folder id").
				WithContext("YANDEX_FOLDER_ID").
				WithSuggestion("set YANDEX_FOLDER_ID or switch BIO_PROVIDER to 'list'")
		}
	}
	return nil
}
