package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cehokocof/telebio/internal/domain/bio"
)

func validConfig(endpoint string) Config {
	return Config{
		APIKey:      "key-123",
		FolderID:    "folder-abc",
		Temperature: 0.9,
		Endpoint:    endpoint,
	}
}

func completionJSON(text string) string {
	return `{"result":{"alternatives":[{"message":{"role":"assistant","text":` +
		mustJSON(text) + `},"status":"ALTERNATIVE_STATUS_FINAL"}],"modelVersion":"23.10"}}`
}

func mustJSON(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := validConfig("")
	require.NoError(t, cfg.Validate())

	cfg = validConfig("")
	cfg.APIKey = ""
	assert.ErrorIs(t, cfg.Validate(), ErrEmptyAPIKey)

	cfg = validConfig("")
	cfg.FolderID = "  "
	assert.ErrorIs(t, cfg.Validate(), ErrEmptyFolderID)

	cfg = validConfig("")
	cfg.Temperature = 1.5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTemperature)

	cfg = validConfig("")
	cfg.Temperature = -0.1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTemperature)
}

func TestNew_InvalidConfig_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := New(Config{FolderID: "folder"})
	require.ErrorIs(t, err, ErrEmptyAPIKey)
}

func TestNext_SendsCompletionRequest(t *testing.T) {
	t.Parallel()

	var captured completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Api-Key key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "folder-abc", r.Header.Get("x-folder-id"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("живу в холодильнике у кота")))
	}))
	defer server.Close()

	p, err := New(validConfig(server.URL))
	require.NoError(t, err)

	text, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "живу в холодильнике у кота", text)

	assert.Equal(t, "gpt://folder-abc/yandexgpt-lite/latest", captured.ModelURI)
	assert.False(t, captured.CompletionOptions.Stream)
	assert.InDelta(t, 0.9, captured.CompletionOptions.Temperature, 0.0001)
	assert.Equal(t, maxTokens, captured.CompletionOptions.MaxTokens)

	// No examples file: system prompt plus the single user turn.
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, userTurn, captured.Messages[1].Text)
}

func TestNext_FewShotPairsFromExamplesFile(t *testing.T) {
	t.Parallel()

	examplesPath := filepath.Join(t.TempDir(), "examples.json")
	require.NoError(t, os.WriteFile(examplesPath,
		[]byte(`["пингвин в аренду", "борщ на блокчейне"]`), 0o644))

	var captured completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(completionJSON("ok")))
	}))
	defer server.Close()

	cfg := validConfig(server.URL)
	cfg.ExamplesPath = examplesPath
	p, err := New(cfg)
	require.NoError(t, err)

	_, err = p.Next(context.Background())
	require.NoError(t, err)

	// system + (user, assistant) per example + final user turn.
	require.Len(t, captured.Messages, 6)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "пингвин в аренду", captured.Messages[2].Text)
	assert.Equal(t, "борщ на блокчейне", captured.Messages[4].Text)
	assert.Equal(t, userTurn, captured.Messages[5].Text)
}

func TestNew_CapsExamplesAtTwenty(t *testing.T) {
	t.Parallel()

	entries := make([]string, 30)
	for i := range entries {
		entries[i] = "пример"
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)

	examplesPath := filepath.Join(t.TempDir(), "examples.json")
	require.NoError(t, os.WriteFile(examplesPath, data, 0o644))

	cfg := validConfig("http://unused.invalid")
	cfg.ExamplesPath = examplesPath
	p, err := New(cfg)
	require.NoError(t, err)

	req := p.buildRequest()
	// system + 20 pairs + final user turn.
	assert.Len(t, req.Messages, 42)
}

func TestNew_MissingExamplesFile_Proceeds(t *testing.T) {
	t.Parallel()

	cfg := validConfig("http://unused.invalid")
	cfg.ExamplesPath = filepath.Join(t.TempDir(), "absent.json")
	p, err := New(cfg)
	require.NoError(t, err)
	assert.Empty(t, p.examples)
}

func TestNew_InvalidExamplesFile_ReturnsError(t *testing.T) {
	t.Parallel()

	examplesPath := filepath.Join(t.TempDir(), "examples.json")
	require.NoError(t, os.WriteFile(examplesPath, []byte(`{"oops": true}`), 0o644))

	cfg := validConfig("http://unused.invalid")
	cfg.ExamplesPath = examplesPath
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidExamples)
}

func TestNext_ErrorStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadRequest, ErrRequestFailed},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"details that must not leak"}`))
		}))

		p, err := New(validConfig(server.URL))
		require.NoError(t, err)

		_, err = p.Next(context.Background())
		require.ErrorIs(t, err, tc.wantErr, "status %d", tc.status)
		assert.NotContains(t, err.Error(), "must not leak", "status %d", tc.status)

		server.Close()
	}
}

func TestNext_NoAlternatives_ReturnsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"alternatives":[],"modelVersion":"23.10"}}`))
	}))
	defer server.Close()

	p, err := New(validConfig(server.URL))
	require.NoError(t, err)

	_, err = p.Next(context.Background())
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNext_BlankText_ReturnsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionJSON("   \n  ")))
	}))
	defer server.Close()

	p, err := New(validConfig(server.URL))
	require.NoError(t, err)

	_, err = p.Next(context.Background())
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNext_TruncatesLongCompletion(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ю", bio.MaxLength+40)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionJSON(long)))
	}))
	defer server.Close()

	p, err := New(validConfig(server.URL))
	require.NoError(t, err)

	text, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bio.MaxLength, bio.Length(text))
}

func TestNext_TrimsSurroundingWhitespace(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionJSON("\n  фраза с полями  \n")))
	}))
	defer server.Close()

	p, err := New(validConfig(server.URL))
	require.NoError(t, err)

	text, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "фраза с полями", text)
}

func TestProvider_Name(t *testing.T) {
	t.Parallel()

	p, err := New(validConfig("http://unused.invalid"))
	require.NoError(t, err)
	assert.Equal(t, "llm", p.Name())
}
