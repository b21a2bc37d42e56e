// Package rest is a small client for the glowmart REST API, covering the
// calls the chat UI needs to bootstrap (chat lists, history, unread counts).
// The backend returns either raw JSON arrays or Spring-style paginated
// envelopes depending on the endpoint, so responses are normalized through
// Items / PageOf rather than decoded directly.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenSource provides the bearer token for API requests.
type TokenSource interface {
	Token() string
}

type Config struct {
	// BaseURL is the API root, e.g. "https://shop.example.com/api".
	BaseURL string
	Session TokenSource
	Timeout time.Duration
	Logger  *zap.Logger
}

type Client struct {
	base    string
	session TokenSource
	http    *http.Client
	log     *zap.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		session: cfg.Session,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     cfg.Logger,
	}
}

// Get performs a GET and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST with a JSON body and returns the raw response body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		c.log.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("api %s %s: %d %s", method, path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
