package votesim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/podclips/internal/domain/model"
)

// client talks to the podclips HTTP API.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	return &client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *client) do(ctx context.Context, method, path string, body any, header http.Header) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// health succeeds when /healthz answers 200.
func (c *client) health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// clips pages through GET /api/clips in natural order.
func (c *client) clips(ctx context.Context) (map[string]model.Clip, error) {
	out := make(map[string]model.Clip)
	for skip := 0; ; skip += pageSize {
		q := url.Values{}
		q.Set("sort_by", "natural")
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(pageSize))

		var page []model.Clip
		if err := c.getJSON(ctx, "/api/clips?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		for _, clip := range page {
			out[clip.ID] = clip
		}
		if len(page) < pageSize {
			return out, nil
		}
	}
}

func (c *client) stats(ctx context.Context) (stats, error) {
	var st stats
	err := c.getJSON(ctx, "/api/stats", &st)
	return st, err
}

// vote posts one vote and returns the response status code.
func (c *client) vote(ctx context.Context, v Vote) (int, error) {
	header := http.Header{}
	header.Set("X-Voter-ID", v.Voter)
	resp, err := c.do(ctx, http.MethodPost,
		"/api/clips/"+url.PathEscape(v.ClipID)+"/vote",
		map[string]string{"vote_type": v.VoteType.String()},
		header,
	)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
