package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/service"
)

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api request failed: %d", e.Status)
	}
	return fmt.Sprintf("api request failed: %d %s: %s", e.Status, e.Code, e.Message)
}

func IsSessionNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == "session_not_found"
}

func IsInvalidAction(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == "invalid_action"
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil)
}

func (c *Client) Catalog(ctx context.Context) ([]domain.OptimizationAction, error) {
	var out []domain.OptimizationAction
	if err := c.do(ctx, http.MethodGet, "/catalog", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) NewSession(ctx context.Context) (*service.SessionView, error) {
	var out service.SessionView
	if err := c.do(ctx, http.MethodPost, "/sessions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Snapshot(ctx context.Context, sessionID string) (*recommendation.Snapshot, error) {
	var out recommendation.Snapshot
	if err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Apply(ctx context.Context, sessionID, actionID string) (*recommendation.Snapshot, error) {
	var out recommendation.Snapshot
	path := "/sessions/" + url.PathEscape(sessionID) + "/actions/" + url.PathEscape(actionID) + "/apply"
	if err := c.do(ctx, http.MethodPost, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Telemetry(ctx context.Context, sessionID string) (*service.TelemetryView, error) {
	var out service.TelemetryView
	if err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID)+"/telemetry", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
