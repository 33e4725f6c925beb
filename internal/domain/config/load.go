package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/ports"
)

// Options controls where Load looks for configuration.
type Options struct {
	// BaseDir anchors relative paths and default file locations
	// (default: ".").
	BaseDir string
	// DotenvPath overrides the .env location (default: BaseDir/.env).
	DotenvPath string
	// FilePath overrides the telebio.toml location
	// (default: BaseDir/telebio.toml).
	FilePath string
	// Lookup overrides environment access (default: os.LookupEnv).
	Lookup func(string) (string, bool)
}

// Load resolves Settings with precedence: environment, then .env file,
// then telebio.toml, then defaults. Empty environment values count as
// unset. Both files are optional.
func Load(opts Options) (*Settings, error) {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	if opts.DotenvPath == "" {
		opts.DotenvPath = filepath.Join(opts.BaseDir, ".env")
	}
	if opts.FilePath == "" {
		opts.FilePath = filepath.Join(opts.BaseDir, "telebio.toml")
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}

	dotenv, err := readDotenv(opts.DotenvPath)
	if err != nil {
		return nil, err
	}

	file, err := readConfigFile(opts.FilePath)
	if err != nil {
		return nil, err
	}

	env := func(key string) string {
		if v, ok := opts.Lookup(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	s := &Settings{BaseDir: opts.BaseDir}

	if s.APIID, err = resolveAPIID(env("TELEGRAM_API_ID"), file.Telegram.APIID); err != nil {
		return nil, err
	}

	s.APIHash = fallback(env("TELEGRAM_API_HASH"), file.Telegram.APIHash)
	if s.APIHash == "" {
		return nil, NewUserError(ErrCodeEnvMissing, "required environment variable TELEGRAM_API_HASH is not set").
			WithContext("TELEGRAM_API_HASH").
			WithSuggestion("get credentials at https://my.telegram.org and add them to your .env file")
	}

	s.BotToken = fallback(env("BOT_TOKEN"), file.Telegram.BotToken)
	s.SessionName = fallback(env("SESSION_NAME"), file.Telegram.SessionName, DefaultSessionName)

	if s.UpdateInterval, err = resolveInterval(env("UPDATE_INTERVAL_MINUTES"), file.Updater.IntervalMinutes); err != nil {
		return nil, err
	}

	rawMode := fallback(env("BIO_PROVIDER"), file.Updater.Provider, provider.ModeList.String())
	mode, err := provider.ParseMode(rawMode)
	if err != nil {
		return nil, NewUserError(ErrCodeModeInvalid, err.Error()).
			WithContext("BIO_PROVIDER").
			WithSuggestion("use 'list' or 'llm'")
	}
	s.Mode = mode

	s.PhrasesFile = fallback(env("PHRASES_FILE"), file.Updater.PhrasesFile, DefaultPhrasesFile)
	s.ExamplesFile = fallback(env("EXAMPLES_FILE"), file.Updater.ExamplesFile, DefaultExamplesFile)

	s.Yandex.APIKey = fallback(env("YANDEX_API_KEY"), file.Yandex.APIKey)
	s.Yandex.FolderID = fallback(env("YANDEX_FOLDER_ID"), file.Yandex.FolderID)
	s.Yandex.Model = fallback(env("YANDEX_MODEL"), file.Yandex.Model, DefaultYandexModel)

	if s.Yandex.Temperature, err = resolveTemperature(env("YANDEX_TEMPERATURE"), file.Yandex.Temperature); err != nil {
		return nil, err
	}

	rawLevel := fallback(env("LOG_LEVEL"), file.Log.Level, "INFO")
	level, err := ports.ParseLevel(rawLevel)
	if err != nil {
		return nil, NewUserError(ErrCodeEnvInvalid, err.Error()).
			WithContext("LOG_LEVEL").
			WithSuggestion("use DEBUG, INFO, WARN or ERROR")
	}
	s.LogLevel = level

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// fallback returns the first non-empty value.
func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveAPIID(raw string, fromFile int) (int, error) {
	if raw == "" {
		if fromFile != 0 {
			return fromFile, nil
		}
		return 0, NewUserError(ErrCodeEnvMissing, "required environment variable TELEGRAM_API_ID is not set").
			WithContext("TELEGRAM_API_ID").
			WithSuggestion("get credentials at https://my.telegram.org and add them to your .env file")
	}

	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewUserError(ErrCodeEnvInvalid, "TELEGRAM_API_ID must be an integer").
			WithContext("TELEGRAM_API_ID").
			WithUnderlying(err)
	}
	return id, nil
}

func resolveInterval(raw string, fromFile int) (time.Duration, error) {
	minutes := 60
	switch {
	case raw != "":
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, NewUserError(ErrCodeEnvInvalid, "UPDATE_INTERVAL_MINUTES must be a positive integer").
				WithContext("UPDATE_INTERVAL_MINUTES").
				WithUnderlying(err)
		}
		minutes = parsed
	case fromFile != 0:
		minutes = fromFile
	}

	if minutes < 1 {
		return 0, NewUserError(ErrCodeEnvInvalid, "UPDATE_INTERVAL_MINUTES must be a positive integer").
			WithContext("UPDATE_INTERVAL_MINUTES")
	}
	return time.Duration(minutes) * time.Minute, nil
}

func resolveTemperature(raw string, fromFile float64) (float64, error) {
	if raw == "" {
		// A zero file temperature counts as unset; an explicit zero must
		// come through YANDEX_TEMPERATURE.
		if fromFile != 0 {
			return fromFile, nil
		}
		return DefaultTemperature, nil
	}

	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, NewUserError(ErrCodeEnvInvalid, "YANDEX_TEMPERATURE must be a number between 0.0 and 1.0").
			WithContext("YANDEX_TEMPERATURE").
			WithUnderlying(err)
	}
	return temp, nil
}

// readDotenv parses a .env file into a map without touching the process
// environment. A missing file is fine.
func readDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, NewUserError(ErrCodeFileInvalid, "cannot parse .env file").
			WithContext(path).
			WithUnderlying(err)
	}
	return values, nil
}

// fileConfig mirrors telebio.toml. Every key is optional; the
// environment always wins.
type fileConfig struct {
	Telegram struct {
		APIID       int    `toml:"api_id"`
		APIHash     string `toml:"api_hash"`
		BotToken    string `toml:"bot_token"`
		SessionName string `toml:"session_name"`
	} `toml:"telegram"`
	Updater struct {
		IntervalMinutes int    `toml:"interval_minutes"`
		Provider        string `toml:"provider"`
		PhrasesFile     string `toml:"phrases_file"`
		ExamplesFile    string `toml:"examples_file"`
	} `toml:"updater"`
	Yandex struct {
		APIKey      string  `toml:"api_key"`
		FolderID    string  `toml:"folder_id"`
		Model       string  `toml:"model"`
		Temperature float64 `toml:"temperature"`
	} `toml:"yandex"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, NewUserError(ErrCodeFileInvalid, "cannot parse config file").
			WithContext(path).
			WithUnderlying(err)
	}

	return fc, nil
}
