package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultXAIBaseURL is the OpenAI-compatible endpoint of xAI.
const DefaultXAIBaseURL = "https://api.x.ai/v1"

// maxResponseSize caps how much of a provider reply is read.
const maxResponseSize = 4 << 20

// ChatGenerator talks to any OpenAI-compatible /chat/completions endpoint
// (xAI Grok by default). The prompt is sent as the only user message.
type ChatGenerator struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewChatGenerator creates a generator. Empty baseURL and model select xAI
// and ModelGrok4; a non-positive timeout means 60s.
func NewChatGenerator(apiKey, baseURL, model string, timeout time.Duration) *ChatGenerator {
	if baseURL == "" {
		baseURL = DefaultXAIBaseURL
	}
	if model == "" {
		model = ModelGrok4
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatGenerator{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Name implements TextGenerator.
func (c *ChatGenerator) Name() string { return "xai" }

// Model returns the model ID in use.
func (c *ChatGenerator) Model() string { return c.model }

// Generate implements TextGenerator.
func (c *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("chat completion: api key is empty")
	}
	body, err := json.Marshal(chatCompletionRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat completion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Debug().
		Str("model", c.model).
		Int("prompt_length", len(prompt)).
		Msg("Starting chat completion call for review draft")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("chat completion: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Code: resp.StatusCode}
		var apiErr chatErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil {
			statusErr.Message = apiErr.Error.Message
		}
		return "", statusErr
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("chat completion: decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := completion.Choices[0].Message.Content
	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Chat completion response received for review draft")
	return text, nil
}
