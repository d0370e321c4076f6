package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTClient talks to the platform bot API with a bot token.
type RESTClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewRESTClient(baseURL, token string) *RESTClient {
	return &RESTClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}
}

func (c *RESTClient) TimeoutMember(ctx context.Context, userID string, d time.Duration, reason string) error {
	return c.do(ctx, http.MethodPatch, "/members/"+userID, map[string]interface{}{
		"timeout_seconds": int(d.Seconds()),
		"reason":          reason,
	})
}

func (c *RESTClient) KickMember(ctx context.Context, userID, reason string) error {
	return c.do(ctx, http.MethodDelete, "/members/"+userID+"?reason="+url.QueryEscape(reason), nil)
}

func (c *RESTClient) BanMember(ctx context.Context, userID, reason string) error {
	return c.do(ctx, http.MethodPut, "/bans/"+userID, map[string]interface{}{
		"reason": reason,
	})
}

func (c *RESTClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/channels/"+channelID+"/messages/"+messageID, nil)
}

func (c *RESTClient) SendDirectMessage(ctx context.Context, userID, text string) error {
	return c.do(ctx, http.MethodPost, "/users/"+userID+"/messages", map[string]interface{}{
		"content": text,
	})
}

func (c *RESTClient) SendChannelMessage(ctx context.Context, channelID, text string) error {
	return c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", map[string]interface{}{
		"content": text,
	})
}

func (c *RESTClient) do(ctx context.Context, method, path string, body map[string]interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
