package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cehokocof/telebio/internal/domain/provider"
)

func TestParseMode_KnownModes(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]provider.Mode{
		"list":  provider.ModeList,
		"llm":   provider.ModeLLM,
		"LIST":  provider.ModeList,
		"Llm":   provider.ModeLLM,
		" list": provider.ModeList,
	} {
		got, err := provider.ParseMode(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestParseMode_UnknownMode(t *testing.T) {
	t.Parallel()

	_, err := provider.ParseMode("database")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
	assert.Contains(t, err.Error(), "'list' or 'llm'")
}

func TestParseMode_Empty(t *testing.T) {
	t.Parallel()

	_, err := provider.ParseMode("")
	require.Error(t, err)
}
