// Package api executes authenticated requests against the hosted
// thermostat service and classifies failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request issued by the client.
const DefaultTimeout = 15 * time.Second

// Client issues authenticated requests against the remote service. It has
// no state beyond its configuration; every failure surfaces synchronously
// to the caller and there are no automatic retries.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New builds a client for the given base URL and bearer key. A
// non-positive timeout falls back to DefaultTimeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Get executes a GET against path and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post marshals body as JSON, executes a POST against path, and returns
// the raw response body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Message: "encoding request body", Err: err}
	}
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "building request", Err: err}
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "reading response", Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatus(resp.StatusCode, body)
	}
	return body, nil
}

// classifyStatus maps a non-2xx response to the error taxonomy. Bodies of
// generic failures are probed for an {"error": "..."} message.
func classifyStatus(status int, body []byte) *Error {
	switch status {
	case http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, Status: status, Message: "unauthorized"}
	case http.StatusForbidden:
		return &Error{Kind: KindForbidden, Status: status, Message: "forbidden"}
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &Error{Kind: KindServer, Status: status, Message: payload.Error}
	}
	return &Error{
		Kind:    KindServer,
		Status:  status,
		Message: fmt.Sprintf("request failed with status code %d", status),
	}
}
