package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenRouter chat-completion endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	// DefaultModel is used when no model is configured.
	DefaultModel = "meta-llama/llama-3.3-70b-instruct:free"

	requestTimeout = 30 * time.Second
)

// ChatResult carries the full upstream response body alongside the
// extracted assistant text.  Raw is persisted for diagnostics.
type ChatResult struct {
	Raw     string
	Content string
}

// Client is the gateway to the external chat-completion service.  It
// makes exactly one attempt per call; retry policy, if any, belongs to
// the caller and is intentionally absent here.
type Client struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client with the bounded default timeout.  Empty
// model or baseURL fall back to the package defaults.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// RequestChatCompletion sends one system+user message pair upstream
// and returns the raw body plus extracted content.  Failure modes:
// missing credential and transport/status failures yield
// *UnavailableError; a successful response without text content
// yields *InvalidResponseError.
func (c *Client) RequestChatCompletion(
	ctx context.Context,
	systemMessage, userMessage string,
	temperature float64,
	maxTokens int,
) (ChatResult, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return ChatResult{}, &UnavailableError{Message: "OPENROUTER_API_KEY is missing"}
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return ChatResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return ChatResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ChatResult{}, &UnavailableError{Message: "chat completion request failed due to a connection error"}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChatResult{}, &UnavailableError{Message: "reading chat completion response failed"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ChatResult{}, &UnavailableError{
			Message:    "chat completion returned a non-success status code",
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ChatResult{}, &InvalidResponseError{
			Message: "AI response content is missing or invalid",
			Fields:  []string{"content"},
		}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return ChatResult{}, &InvalidResponseError{
			Message: "AI response content is missing or invalid",
			Fields:  []string{"content"},
		}
	}

	return ChatResult{Raw: string(raw), Content: parsed.Choices[0].Message.Content}, nil
}
