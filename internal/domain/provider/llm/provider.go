// Package llm implements the YandexGPT bio provider.
//
// It calls the Foundation Models text generation REST API
// (POST /foundationModels/v1/completion) with a fixed system prompt and
// few-shot examples loaded from a local JSON file, and returns the
// generated phrase as the next bio.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cehokocof/telebio/internal/domain/bio"
	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/ports"
)

// Client errors.
var (
	ErrEmptyAPIKey        = errors.New("yandex api key is empty")
	ErrEmptyFolderID      = errors.New("yandex folder id is empty")
	ErrInvalidTemperature = errors.New("temperature must be between 0.0 and 1.0")
	ErrNetworkError       = errors.New("network error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("rate limited")
	ErrServerError        = errors.New("server error")
	ErrRequestFailed      = errors.New("completion request failed")
	ErrEmptyCompletion    = errors.New("empty completion")
)

// DefaultEndpoint is the Foundation Models completion endpoint.
const DefaultEndpoint = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

// DefaultModel is the model segment of the modelUri.
const DefaultModel = "yandexgpt-lite/latest"

// maxTokens caps the completion length; a bio never needs more.
const maxTokens = 100

const systemPrompt = "Role: Ты — генератор случайных абсурдных фактов и сюрреалистичного юмора.\n" +
	"Task: Придумай странную, смешную фразу для био.\n" +
	"Constraints:\n" +
	"1. Длина: до 60 символов.\n" +
	"2. Тон: хаотичный, непредсказуемый, абсурдный.\n" +
	"3. Сочетай несочетаемое (еду и технологии, животных и политику, космос и быт).\n" +
	"4. Выводи ТОЛЬКО текст."

// userTurn is the request phrase used for every user turn, including the
// few-shot pairs.
const userTurn = "Придумай фразу для био."

// Config configures the YandexGPT provider.
type Config struct {
	// APIKey authenticates against the API ("Api-Key" scheme).
	APIKey string
	// FolderID is the Yandex Cloud folder, sent as x-folder-id and baked
	// into the modelUri.
	FolderID string
	// Model is the model segment of the modelUri (default: yandexgpt-lite/latest).
	Model string
	// Temperature controls sampling randomness, in [0,1]. Zero is a
	// valid explicit choice; the configured default lives in Settings.
	Temperature float64
	// ExamplesPath points at the few-shot examples JSON file; optional.
	ExamplesPath string
	// Endpoint overrides the completion URL (tests).
	Endpoint string
	// Timeout is the HTTP request timeout (default: 60s).
	Timeout time.Duration
	// UserAgent is the User-Agent header value.
	UserAgent string
	// Logger is optional.
	Logger ports.Logger
}

// Validate checks that required credentials are present and parameters
// are in range.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrEmptyAPIKey
	}
	if strings.TrimSpace(c.FolderID) == "" {
		return ErrEmptyFolderID
	}
	if c.Temperature < 0.0 || c.Temperature > 1.0 {
		return fmt.Errorf("%w: got %g", ErrInvalidTemperature, c.Temperature)
	}
	return nil
}

// Provider generates bio text via the YandexGPT API.
type Provider struct {
	config     Config
	modelURI   string
	examples   []string
	httpClient *http.Client
	log        ports.Logger
}

// New validates the configuration, loads few-shot examples and builds a
// provider. A missing examples file is tolerated; a malformed one is not.
func New(cfg Config) (*Provider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "telebio/1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = ports.DiscardLogger
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	examples, err := loadExamples(cfg.ExamplesPath, cfg.Logger)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config:   cfg,
		modelURI: fmt.Sprintf("gpt://%s/%s", cfg.FolderID, cfg.Model),
		examples: examples,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: cfg.Logger,
	}

	p.log.Info(context.Background(), "yandexgpt provider initialised",
		ports.F("model", p.modelURI), ports.F("examples", len(examples)))

	return p, nil
}

// Name identifies the provider mode.
func (p *Provider) Name() string {
	return provider.ModeLLM.String()
}

// Next calls the completion API and returns the generated phrase.
func (p *Provider) Next(ctx context.Context) (string, error) {
	body, err := json.Marshal(p.buildRequest())
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: request creation failed", ErrNetworkError)
	}

	req.Header.Set("Authorization", "Api-Key "+p.config.APIKey)
	req.Header.Set("x-folder-id", p.config.FolderID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.config.UserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed", ErrNetworkError)
	}
	defer func() { _ = resp.Body.Close() }()

	// Status errors never include the response body; it may echo prompt
	// or credential material.
	switch resp.StatusCode {
	case http.StatusOK:
		// Continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return "", fmt.Errorf("%w: status %d", ErrServerError, resp.StatusCode)
	default:
		return "", fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}

	text, err := extractText(decoded)
	if err != nil {
		return "", err
	}

	if cut, truncated := bio.Truncate(text); truncated {
		p.log.Warn(ctx, "generated bio exceeds limit, truncating",
			ports.F("length", bio.Length(text)), ports.F("limit", bio.MaxLength))
		text = cut
	}

	p.log.Info(ctx, "yandexgpt generated bio", ports.F("bio", text))
	return text, nil
}

// buildRequest assembles the system prompt, the few-shot user/assistant
// pairs and the final user turn.
func (p *Provider) buildRequest() completionRequest {
	messages := make([]message, 0, 2*len(p.examples)+2)
	messages = append(messages, message{Role: "system", Text: systemPrompt})

	for _, example := range p.examples {
		messages = append(messages,
			message{Role: "user", Text: userTurn},
			message{Role: "assistant", Text: example},
		)
	}

	messages = append(messages, message{Role: "user", Text: userTurn})

	return completionRequest{
		ModelURI: p.modelURI,
		CompletionOptions: completionOptions{
			Stream:      false,
			Temperature: p.config.Temperature,
			MaxTokens:   maxTokens,
		},
		Messages: messages,
	}
}

func extractText(resp completionResponse) (string, error) {
	alts := resp.Result.Alternatives
	if len(alts) == 0 {
		return "", fmt.Errorf("%w: no alternatives in response", ErrEmptyCompletion)
	}

	text := strings.TrimSpace(alts[0].Message.Text)
	if text == "" {
		return "", fmt.Errorf("%w: blank text in response", ErrEmptyCompletion)
	}

	return text, nil
}

// completionRequest is the API request payload.
type completionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []message         `json:"messages"`
}

type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

type message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// completionResponse is the API response payload, reduced to the fields
// the provider reads.
type completionResponse struct {
	Result struct {
		Alternatives []struct {
			Message message `json:"message"`
			Status  string  `json:"status"`
		} `json:"alternatives"`
		ModelVersion string `json:"modelVersion"`
	} `json:"result"`
}

// Ensure Provider satisfies the port.
var _ provider.Provider = (*Provider)(nil)
