package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the ServeSpot notification REST API. It covers only
// what the feed needs: the history fetch and the two mark-read calls.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client with a fixed request timeout.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// History fetches the caller's stored notifications, newest first.
func (c *Client) History(ctx context.Context) ([]Notification, error) {
	var body struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &body); err != nil {
		return nil, fmt.Errorf("notify.History: %w", err)
	}
	return body.Notifications, nil
}

// UnreadCount fetches the server-side badge count.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var body struct {
		Unread int64 `json:"unread"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/unread-count", nil, &body); err != nil {
		return 0, fmt.Errorf("notify.UnreadCount: %w", err)
	}
	return body.Unread, nil
}

// MarkRead marks one notification as read.
func (c *Client) MarkRead(ctx context.Context, notificationID string) error {
	path := "/api/notifications/" + notificationID + "/read"
	if err := c.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("notify.MarkRead: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification for the caller as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPut, "/api/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("notify.MarkAllRead: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
