// Package oracle is the HTTP client for the content-safety and reply
// generation models behind a chat-completions style API. One attempt per
// call, no retries; callers own the fail-open / fallback policy.
package oracle

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
)

// ErrEmptyCompletion is returned when the API answers 200 with no choices.
var ErrEmptyCompletion = errors.New("oracle: empty completion")

// Turn is one {role, content} element of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	guardModel string
	chatModel  string
}

func New(baseURL, apiKey, guardModel, chatModel string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		guardModel: guardModel,
		chatModel:  chatModel,
	}
}

type completionRequest struct {
	Model       string  `json:"model"`
	Messages    []Turn  `json:"messages"`
	Temperature float64 `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Turn `json:"message"`
	} `json:"choices"`
}

// Classify asks the guard model for a verdict on a single message. The model
// replies with a string prefixed "unsafe" or "safe"; true means unsafe. Any
// transport or decode failure is returned as an error for the caller's fail
// policy to absorb.
func (c *Client) Classify(ctx context.Context, text string) (bool, error) {
	verdict, err := c.complete(ctx, completionRequest{
		Model:    c.guardModel,
		Messages: []Turn{{Role: "user", Content: text}},
	})
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(verdict)), "unsafe"), nil
}

// Generate produces a chatbot reply from the given conversation turns.
func (c *Client) Generate(ctx context.Context, turns []Turn) (string, error) {
	reply, err := c.complete(ctx, completionRequest{
		Model:       c.chatModel,
		Messages:    turns,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *Client) complete(ctx context.Context, reqBody completionRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("oracle: %s returned %d: %s", reqBody.Model, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("oracle: decoding response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
