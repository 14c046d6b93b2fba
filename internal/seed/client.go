package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/balance"
	"github.com/okian/squad/internal/domain/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("squad api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to the squad HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return resp.StatusCode, apiErr
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// CreatePlayer registers a player with default skills.
func (c *Client) CreatePlayer(ctx context.Context, name, email string) (model.Player, error) {
	var p model.Player
	_, err := c.do(ctx, http.MethodPost, "/players", map[string]string{"name": name, "email": email}, &p)
	return p, err
}

// GetPlayer fetches one player.
func (c *Client) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	var p model.Player
	_, err := c.do(ctx, http.MethodGet, "/players/"+id, nil, &p)
	return p, err
}

// SubmitRating posts a rating and reports whether the server saw it before.
func (c *Client) SubmitRating(ctx context.Context, playerID, ratingID string, skills model.Skills) (bool, error) {
	var receipt service.RatingReceipt
	_, err := c.do(ctx, http.MethodPost, "/players/"+playerID+"/ratings", map[string]any{
		"rating_id": ratingID,
		"skills":    skills,
	}, &receipt)
	return receipt.Duplicate, err
}

// CreateTeam saves a named team.
func (c *Client) CreateTeam(ctx context.Context, name string, playerIDs []string) (model.Team, error) {
	var t model.Team
	_, err := c.do(ctx, http.MethodPost, "/teams", map[string]any{"name": name, "player_ids": playerIDs}, &t)
	return t, err
}

// Balance splits the given players.
func (c *Client) Balance(ctx context.Context, playerIDs []string) (balance.Result, error) {
	var res balance.Result
	_, err := c.do(ctx, http.MethodPost, "/balance", map[string]any{"player_ids": playerIDs}, &res)
	return res, err
}

// Side is one side of a simulated match.
type Side struct {
	TeamID    string   `json:"team_id,omitempty"`
	PlayerIDs []string `json:"player_ids,omitempty"`
}

// Simulate plays one match.
func (c *Client) Simulate(ctx context.Context, a, b Side) (service.SimulateOutput, error) {
	var out service.SimulateOutput
	_, err := c.do(ctx, http.MethodPost, "/simulate", map[string]Side{"team_a": a, "team_b": b}, &out)
	return out, err
}
