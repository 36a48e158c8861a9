package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/foxandgeese/game/service"
)

// Client talks to the REST API of a running server
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a REST client for baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateSession starts a session on a mission, the default one when empty
func (c *Client) CreateSession(ctx context.Context, missionID string) (*service.SessionInfo, error) {
	body := map[string]string{}
	if missionID != "" {
		body["mission_id"] = missionID
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &info, nil
}

// Play plays one round per move
func (c *Client) Play(ctx context.Context, sessionID string, moves []string) (*service.PlayResult, error) {
	var result service.PlayResult
	path := fmt.Sprintf("/api/sessions/%s/play", sessionID)
	if err := c.do(ctx, http.MethodPost, path, map[string][]string{"moves": moves}, &result); err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	return &result, nil
}

// DeleteSession removes a session
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID, nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
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

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s - %s", resp.Status, errResp.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, string(data))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
