// Package bot plays a session over the REST API until it clears the levels.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/service"
)

// Client talks to one session of a running server
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string {
	return c.sessionID
}

// UseSession points the client at an existing session
func (c *Client) UseSession(id string) {
	c.sessionID = id
}

// CreateSession starts a new session on configID and plays it from now on.
// An empty configID selects the server default.
func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	var session service.SessionInfo
	body := map[string]string{"config_id": configID}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

// State fetches the current snapshot
func (c *Client) State(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.path("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

// Move submits one step
func (c *Client) Move(ctx context.Context, dir engine.Direction) (*service.MoveResult, error) {
	var result service.MoveResult
	body := map[string]string{"direction": dir.String()}
	if err := c.do(ctx, http.MethodPost, c.path("/move"), body, &result); err != nil {
		return nil, fmt.Errorf("move %s: %w", dir, err)
	}
	return &result, nil
}

// Restart starts the session over after a game over
func (c *Client) Restart(ctx context.Context) (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, c.path("/restart"), nil, &resp); err != nil {
		return nil, fmt.Errorf("restart: %w", err)
	}
	return resp.State, nil
}

func (c *Client) path(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s: %s", resp.Status, msg)
		}
		return fmt.Errorf("API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
