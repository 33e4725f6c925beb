package bio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cehokocof/telebio/internal/domain/bio"
)

func TestTruncate_ShortTextUnchanged(t *testing.T) {
	t.Parallel()

	text, cut := bio.Truncate("живу на проценты от лайков")
	assert.Equal(t, "живу на проценты от лайков", text)
	assert.False(t, cut)
}

func TestTruncate_CountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	// 70 Cyrillic characters are 140 bytes; they must survive untouched.
	exact := strings.Repeat("ж", bio.MaxLength)
	text, cut := bio.Truncate(exact)
	assert.Equal(t, exact, text)
	assert.False(t, cut)

	long := exact + "х"
	text, cut = bio.Truncate(long)
	assert.True(t, cut)
	assert.Equal(t, bio.MaxLength, bio.Length(text))
	assert.Equal(t, exact, text)
}

func TestSanitize_CollapsesLineBreaks(t *testing.T) {
	t.Parallel()

	got := bio.Sanitize("  первая строка\nвторая строка\r\n  третья  ")
	assert.Equal(t, "первая строка вторая строка третья", got)
}

func TestSanitize_PlainTextUntouched(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "котики и блокчейн", bio.Sanitize("котики и блокчейн"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, bio.Validate("ok"))
	assert.ErrorIs(t, bio.Validate(""), bio.ErrEmpty)
	assert.ErrorIs(t, bio.Validate("   \n\t"), bio.ErrEmpty)
}
