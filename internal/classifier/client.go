// Package classifier asks a DeepSeek-compatible chat-completions API
// whether a live comment is requesting one of the cataloged products.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stagehand/internal/catalog"
)

const (
	defaultBaseURL     = "https://api.deepseek.com"
	defaultModel       = "deepseek-chat"
	jsonResponseType   = "json_object"
	defaultHTTPTimeout = 15 * time.Second
)

// Client wraps the chat completion API used for intent analysis.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the classifier client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a classifier client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Enabled reports whether the client has credentials to call the API.
// A disabled client means the caller should fall back to fuzzy matching
// on the raw comment text.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Classify asks the model whether the comment requests a product from
// the catalog. Transport and HTTP failures return an error; a response
// that arrives but cannot be understood yields IntentUnparseable.
func (c *Client) Classify(ctx context.Context, comment string, cat *catalog.Catalog) (Result, error) {
	var empty Result
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Result{Intent: IntentNone}, nil
	}
	if !c.Enabled() {
		return empty, errors.New("classify: api key required")
	}
	if cat == nil || cat.Len() == 0 {
		return Result{Intent: IntentNone}, nil
	}

	request := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(cat)},
			{Role: "user", Content: comment},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	endpoint, err := url.JoinPath(c.baseURL, "/chat/completions")
	if err != nil {
		return empty, fmt.Errorf("classify: build url: %w", err)
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return empty, fmt.Errorf("classify: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, fmt.Errorf("classify: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("classify: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("classify: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("classify: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return empty, fmt.Errorf("classify: decode response: %w", err)
	}
	if completion.Error != nil {
		return empty, fmt.Errorf("classify: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return empty, errors.New("classify: empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return empty, errors.New("classify: empty content")
	}

	var payload struct {
		Intent      string `json:"intent"`
		ProductName string `json:"product_name"`
	}
	if err := decodeModelJSON(content, &payload); err != nil {
		return Result{Intent: IntentUnparseable}, nil
	}
	result := Result{
		Intent:        parseIntent(payload.Intent),
		ProductPhrase: strings.TrimSpace(payload.ProductName),
	}
	if result.Intent == IntentProductRequest && result.ProductPhrase == "" {
		result.Intent = IntentUnparseable
	}
	return result, nil
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
