package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cehokocof/telebio/internal/adapters/telegram"
	"github.com/cehokocof/telebio/internal/domain/config"
)

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestRootCommand_UseLine(t *testing.T) {
	assert.Equal(t, "telebio", rootCmd.Use)
}

func TestRootCommand_Short(t *testing.T) {
	assert.Equal(t, "Automatic Telegram bio updater", rootCmd.Short)
}

func TestRootCommand_HasPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	t.Run("dir flag exists", func(t *testing.T) {
		flag := flags.Lookup("dir")
		require.NotNil(t, flag)
		assert.Equal(t, ".", flag.DefValue)
	})

	t.Run("env flag exists", func(t *testing.T) {
		flag := flags.Lookup("env")
		require.NotNil(t, flag)
		assert.Empty(t, flag.DefValue)
	})

	t.Run("config flag exists", func(t *testing.T) {
		flag := flags.Lookup("config")
		require.NotNil(t, flag)
		assert.Empty(t, flag.DefValue)
	})

	t.Run("verbose flag exists", func(t *testing.T) {
		flag := flags.Lookup("verbose")
		require.NotNil(t, flag)
		assert.Equal(t, "false", flag.DefValue)
		assert.Equal(t, "v", flag.Shorthand)
	})
}

func TestRootCommand_HasAllSubcommands(t *testing.T) {
	subcommands := rootCmd.Commands()
	names := make([]string, len(subcommands))
	for i, cmd := range subcommands {
		names[i] = cmd.Name()
	}

	expected := []string{
		"deploy",
		"doctor",
		"init",
		"login",
		"once",
		"pause",
		"resume",
		"run",
		"service",
		"status",
		"stop",
		"update",
		"version",
	}

	for _, exp := range expected {
		assert.Contains(t, names, exp, "root command should have %s subcommand", exp)
	}
}

func TestDeployCommand_HasSubcommands(t *testing.T) {
	subcommands := deployCmd.Commands()
	names := make([]string, len(subcommands))
	for i, cmd := range subcommands {
		names[i] = cmd.Name()
	}

	expected := []string{"dockerfile", "compose", "all"}
	for _, exp := range expected {
		assert.Contains(t, names, exp, "deploy command should have %s subcommand", exp)
	}
}

func TestServiceCommand_HasSubcommands(t *testing.T) {
	subcommands := serviceCmd.Commands()
	names := make([]string, len(subcommands))
	for i, cmd := range subcommands {
		names[i] = cmd.Name()
	}

	expected := []string{"install", "uninstall", "status"}
	for _, exp := range expected {
		assert.Contains(t, names, exp, "service command should have %s subcommand", exp)
	}
}

func TestVersionCommand_Output(t *testing.T) {
	originalVersion := version
	originalCommit := commit
	originalDate := date

	version = "1.0.0"
	commit = "abc123"
	date = "2026-01-01"

	defer func() {
		version = originalVersion
		commit = originalCommit
		date = originalDate
	}()

	rootCmd.SetArgs([]string{"version"})
	output := captureStdout(t, func() {
		err := rootCmd.Execute()
		require.NoError(t, err)
	})
	rootCmd.SetArgs([]string{})

	assert.Contains(t, output, "telebio 1.0.0")
	assert.Contains(t, output, "commit: abc123")
	assert.Contains(t, output, "built:  2026-01-01")
}

func TestAllCommands_HelpWorks(t *testing.T) {
	commands := []string{
		"--help",
		"run --help",
		"login --help",
		"once --help",
		"status --help",
		"pause --help",
		"resume --help",
		"update --help",
		"stop --help",
		"init --help",
		"deploy --help",
		"service --help",
		"doctor --help",
		"version --help",
	}

	for _, cmdArgs := range commands {
		t.Run(cmdArgs, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)

			args := []string{}
			for _, arg := range bytes.Fields([]byte(cmdArgs)) {
				args = append(args, string(arg))
			}
			rootCmd.SetArgs(args)
			err := rootCmd.Execute()
			assert.NoError(t, err)
			assert.NotEmpty(t, out.String())

			rootCmd.SetArgs([]string{})
		})
	}
}

func TestFormatError_PlainError(t *testing.T) {
	assert.Equal(t, "boom", formatError(errors.New("boom")))
}

func TestFormatError_UserError(t *testing.T) {
	err := config.NewUserError(config.ErrCodeEnvMissing, "api_id is not set").
		WithContext("TELEGRAM_API_ID").
		WithSuggestion("set TELEGRAM_API_ID").
		WithUnderlying(errors.New("strconv failure"))

	originalVerbose := flagVerbose
	defer func() { flagVerbose = originalVerbose }()

	flagVerbose = false
	msg := formatError(err)
	assert.Contains(t, msg, "api_id is not set")
	assert.Contains(t, msg, "(at TELEGRAM_API_ID)")
	assert.Contains(t, msg, "Suggestion: set TELEGRAM_API_ID")
	assert.NotContains(t, msg, "strconv failure")

	flagVerbose = true
	msg = formatError(err)
	assert.Contains(t, msg, "Technical details: strconv failure")
}

func TestPrintErrorTo(t *testing.T) {
	var out bytes.Buffer
	printErrorTo(&out, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", out.String())
}

func TestSessionError_MapsNotAuthorized(t *testing.T) {
	settings := &config.Settings{BaseDir: "/srv/telebio", SessionName: "telebio"}

	err := sessionError(telegram.ErrNotAuthorized, settings)

	var userErr *config.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, config.ErrCodeNotAuthorized, userErr.Code)
	assert.Contains(t, userErr.Context, "telebio.session.json")
	assert.Contains(t, userErr.Suggestion, "telebio login")
	assert.ErrorIs(t, err, telegram.ErrNotAuthorized)
}

func TestSessionError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, sessionError(plain, &config.Settings{}))

	assert.NoError(t, sessionError(nil, &config.Settings{}))
}
