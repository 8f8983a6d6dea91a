package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client introspects bearer tokens against the identity collaborator.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(introspectURL string) *Client {
	return &Client{
		url:  introspectURL,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

type IntrospectResult struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (c *Client) Introspect(ctx context.Context, accessToken string) (*IntrospectResult, error) {
	body, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("introspect request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("introspect: unexpected status %d", resp.StatusCode)
	}

	var out IntrospectResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
