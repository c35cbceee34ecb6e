package pollapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"kamen/domain"
)

const maxBodySize = 1 << 20

// Opts configures the poll service client.
type Opts struct {
	// Timeout applies to each request; zero means none.
	Timeout time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("poll service returned %d", e.Code)
	}
	return fmt.Sprintf("poll service returned %d: %s", e.Code, e.Message)
}

// Client talks to the poll service: GET lists polls, POST records a vote.
// Both go to the same URL.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(rawURL string, opts Opts) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse poll service url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("poll service url %q: scheme must be http or https", rawURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{url: u.String(), http: hc}, nil
}

func (c *Client) ListPolls(ctx context.Context) ([]domain.Poll, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var list domain.PollList
	if err := c.do(req, &list); err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return list.Polls, nil
}

// Vote posts {poll_id, option_id}. A decoded answer with success: false is
// returned together with domain.ErrVoteRejected.
func (c *Client) Vote(ctx context.Context, v domain.VoteRequest) (*domain.VoteResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vote: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, body)
	if err != nil {
		return nil, err
	}

	var res domain.VoteResult
	if err := c.do(req, &res); err != nil {
		return nil, fmt.Errorf("failed to vote in poll %d: %w", v.PollID, err)
	}
	if !res.Success {
		return &res, fmt.Errorf("poll %d option %d: %w", v.PollID, v.OptionID, domain.ErrVoteRejected)
	}
	return &res, nil
}

func (c *Client) newRequest(ctx context.Context, method string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url, r)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxBodySize {
		return errors.New("response body too large")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			se.Message = body.Error
		}
		return se
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
