/*
Package transport is the client side of the snapshot server contract: read
the full document and write the full document.

Both calls speak the server's standard envelope {code, message, data}. A
non-success envelope is returned as an *errs.CustomError carrying the
server's code, so callers can tell a rejected document from a dead server.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
)

const (
	// PathDatabase serves the full document.
	PathDatabase = "/api/database"

	// PathSave accepts a full document.
	PathSave = "/api/save"

	// maxResponseBytes caps how much of a response is read.
	maxResponseBytes = 64 << 20
)

// envelope mirrors resp.JSONResponse with a raw payload.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client talks to one snapshot server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch reads the full document. Collections absent from the document are
// nil in the result.
func (c *Client) Fetch(ctx context.Context) (model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathDatabase, nil)
	if err != nil {
		return model.Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	env, err := c.do(req)
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return model.Snapshot{}, fmt.Errorf("server returned an empty document")
	}

	var snap model.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return snap, nil
}

// Push overwrites the server document with snap.
func (c *Client) Push(ctx context.Context, snap model.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathSave, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) (envelope, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("unexpected response (HTTP %d): %w", res.StatusCode, err)
	}

	if res.StatusCode != http.StatusOK || env.Code != 0 {
		return envelope{}, &errs.CustomError{Code: env.Code, Message: env.Message, Status: res.StatusCode}
	}
	return env, nil
}
