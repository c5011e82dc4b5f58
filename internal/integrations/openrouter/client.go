package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"listing-writer/internal/domain"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "tngtech/deepseek-r1t2-chimera:free"

	defaultTimeout = 90 * time.Second
	maxErrorBody   = 4096
	maxBody        = 1 << 20
)

// chatRequest is the request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature *float64             `json:"temperature,omitempty"`
	MaxTokens   *int                 `json:"max_tokens,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompletionOptions are the sampling settings for one request. A zero
// MaxTokens leaves the limit to the provider.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Client is a focused OpenAI-compatible chat completions client for OpenRouter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	model      string
	referer    string
	title      string

	apiKey    string
	configErr error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAttribution sets the HTTP-Referer and X-Title headers OpenRouter uses
// to attribute traffic to an app.
func WithAttribution(referer, title string) Option {
	return func(c *Client) {
		c.referer = strings.TrimSpace(referer)
		c.title = strings.TrimSpace(title)
	}
}

// NewClient creates a Client bound to one credential and model. A blank key
// does not fail construction: the client is created unconfigured and every
// Complete call returns a *ConfigurationError without any network traffic.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("openrouter: model must not be empty")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		model:      model,
		apiKey:     strings.TrimSpace(apiKey),
	}
	if c.apiKey == "" {
		c.configErr = &ConfigurationError{Reason: "OPENROUTER_API_KEY is not configured"}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Configured reports whether the client holds a credential.
func (c *Client) Configured() error {
	return c.configErr
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// Complete sends one conversation and returns the trimmed text of the first
// choice.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage, opts CompletionOptions) (string, error) {
	if c.configErr != nil {
		return "", c.configErr
	}

	temperature := opts.Temperature
	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: &temperature,
	}
	if opts.MaxTokens > 0 {
		maxTokens := opts.MaxTokens
		payload.MaxTokens = &maxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openrouter: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("openrouter: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if decErr := json.Unmarshal(raw, &resp); decErr != nil {
		return "", &EmptyResponseError{Raw: raw, Err: fmt.Errorf("decode response: %w", decErr)}
	}
	if len(resp.Choices) == 0 {
		return "", &EmptyResponseError{Raw: raw, Err: errors.New("no choices in response")}
	}
	msg := resp.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &EmptyResponseError{Raw: raw}
	}
	content := domain.TrimText(*msg.Content)
	if content == "" {
		return "", &EmptyResponseError{Raw: raw}
	}
	return content, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, &TransportError{URL: url, Err: doErr}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &TransportError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxBody+1))
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("read response body: %w", err)}
	}
	if len(buf) > maxBody {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, maxBody)}
	}
	return buf, nil
}
