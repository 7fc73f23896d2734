// Package ballotapi is a client for the ballot HTTP API.
package ballotapi

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

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

type Client struct {
	Token   string
	BaseURL string
	Client  *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		Token:   token,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type Nominee struct {
	PickKey       string `json:"pick_key"`
	PrimaryLine   string `json:"primary_line"`
	SecondaryLine string `json:"secondary_line"`
}

type Category struct {
	Name     string    `json:"name"`
	Nominees []Nominee `json:"nominees"`
}

type Catalog struct {
	Ceremony struct {
		Name string `json:"ceremony"`
		Year int    `json:"year"`
	} `json:"ceremony"`
	TotalCategories int        `json:"total_categories"`
	Categories      []Category `json:"categories"`
}

type ballotResp struct {
	Ballot *model.Ballot `json:"ballot"`
}

// APIError is a non-2xx response. It unwraps to the matching model error.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ballot api %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ballot api status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return model.ErrUnauthenticated
	case http.StatusForbidden:
		return model.ErrUnauthorized
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrConflict
	case http.StatusBadRequest:
		return model.ErrInvalidInput
	case http.StatusLocked:
		return model.ErrLocked
	}
	return nil
}

func (c *Client) Catalog(ctx context.Context) (Catalog, error) {
	var out Catalog
	err := c.do(ctx, http.MethodGet, "/catalog", nil, &out)
	return out, err
}

// MyBallot returns nil when the caller has no ballot yet.
func (c *Client) MyBallot(ctx context.Context) (*model.Ballot, error) {
	var out ballotResp
	if err := c.do(ctx, http.MethodGet, "/ballot", nil, &out); err != nil {
		return nil, err
	}
	return out.Ballot, nil
}

// Load returns the server-side picks; an absent ballot has no picks.
func (c *Client) Load(ctx context.Context) (model.Picks, error) {
	b, err := c.MyBallot(ctx)
	if err != nil {
		return nil, err
	}
	if b == nil || b.Picks == nil {
		return model.Picks{}, nil
	}
	return b.Picks, nil
}

func (c *Client) Save(ctx context.Context, category, pickKey string) error {
	body := map[string]string{"category": category, "pick_key": pickKey}
	return c.do(ctx, http.MethodPut, "/ballot/picks", body, nil)
}

func (c *Client) Submit(ctx context.Context) (model.Ballot, error) {
	var out ballotResp
	if err := c.do(ctx, http.MethodPost, "/ballot/submit", nil, &out); err != nil {
		return model.Ballot{}, err
	}
	if out.Ballot == nil {
		return model.Ballot{}, fmt.Errorf("submit returned no ballot")
	}
	return *out.Ballot, nil
}

func (c *Client) Leaderboard(ctx context.Context) (model.Leaderboard, error) {
	var out model.Leaderboard
	err := c.do(ctx, http.MethodGet, "/leaderboard", nil, &out)
	return out, err
}

func (c *Client) GroupLeaderboard(ctx context.Context, groupID string) (model.Leaderboard, error) {
	var out model.Leaderboard
	err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(groupID)+"/leaderboard", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env struct {
			Error *APIError `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&env) == nil && env.Error != nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
