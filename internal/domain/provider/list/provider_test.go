package list_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cehokocof/telebio/internal/domain/bio"
	"github.com/cehokocof/telebio/internal/domain/provider/list"
)

func writePhrases(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phrases.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_LoadsPhrases(t *testing.T) {
	t.Parallel()

	path := writePhrases(t, `["один", "два", "три"]`)
	p, err := list.New(list.Config{Path: path})
	require.NoError(t, err)

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "list", p.Name())
}

func TestNext_SequentialWithWrapAround(t *testing.T) {
	t.Parallel()

	path := writePhrases(t, `["a", "b", "c"]`)
	p, err := list.New(list.Config{Path: path})
	require.NoError(t, err)

	ctx := context.Background()
	var got []string
	for i := 0; i < 4; i++ {
		phrase, err := p.Next(ctx)
		require.NoError(t, err)
		got = append(got, phrase)
	}

	assert.Equal(t, []string{"a", "b", "c", "a"}, got)
}

func TestNew_FileNotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := list.New(list.Config{Path: filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorIs(t, err, list.ErrNotFound)
}

func TestNew_InvalidJSON_ReturnsError(t *testing.T) {
	t.Parallel()

	path := writePhrases(t, `{"not": "an array"`)
	_, err := list.New(list.Config{Path: path})
	require.ErrorIs(t, err, list.ErrInvalidFormat)
}

func TestNew_NotAnArrayOfStrings_ReturnsError(t *testing.T) {
	t.Parallel()

	for name, content := range map[string]string{
		"object":       `{"a": 1}`,
		"mixed array":  `["ok", 42]`,
		"number array": `[1, 2, 3]`,
	} {
		path := writePhrases(t, content)
		_, err := list.New(list.Config{Path: path})
		assert.ErrorIs(t, err, list.ErrInvalidFormat, name)
	}
}

func TestNew_EmptyArray_ReturnsError(t *testing.T) {
	t.Parallel()

	path := writePhrases(t, `[]`)
	_, err := list.New(list.Config{Path: path})
	require.ErrorIs(t, err, list.ErrEmptyList)
}

func TestNew_TruncatesLongPhrases(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("я", bio.MaxLength+15)
	path := writePhrases(t, `["`+long+`"]`)

	p, err := list.New(list.Config{Path: path})
	require.NoError(t, err)

	phrase, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bio.MaxLength, bio.Length(phrase))
}

func TestNext_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	path := writePhrases(t, `["a", "b", "c", "d", "e"]`)
	p, err := list.New(list.Config{Path: path})
	require.NoError(t, err)

	ctx := context.Background()
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 25; j++ {
				_, err := p.Next(ctx)
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
