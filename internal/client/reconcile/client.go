// Package reconcile drains the pending mutation queue against the remote
// reconciliation endpoint. Nothing leaves the queue until the server has
// confirmed that specific entry, so every network failure mode degrades to
// "retry the whole batch later".
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avelichka/lectern/internal/common"
	"github.com/avelichka/lectern/internal/syncmsg"
)

// Client submits mutation batches to the server's /sync endpoint.
//
// The embedded http.Client carries a hard timeout: a sync pass may
// suspend on the round-trip but never blocks indefinitely. A timed-out
// call is a full-batch failure, which is safe because removal from the
// queue only ever follows a confirmed per-record success.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient returns a client for the reconciliation endpoint at baseURL,
// authenticating with the given bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
	}
}

// Submit sends one batch in a single POST /sync call and decodes the
// per-record results. The whole batch travels in one request so the
// server can run a single authorization pass and round-trip overhead
// stays bounded.
func (c *Client) Submit(ctx context.Context, batch []syncmsg.Mutation) (*syncmsg.BatchResponse, error) {
	body, err := json.Marshal(syncmsg.BatchRequest{Records: batch})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.ErrUnauthorized
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync request failed: %s; body: %s", resp.Status, string(b))
	}

	var out syncmsg.BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode sync response: %w", err)
	}
	return &out, nil
}
