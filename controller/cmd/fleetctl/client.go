package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestError wraps a non-2xx response from the Controller's API, carrying
// the envelope's error code and message so callers can decide an exit code.
type RequestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (status %d, code %s)", e.Message, e.Status, e.Code)
}

// Client is a thin HTTP client for the Controller's /api/v1 surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client targeting addr (e.g. "http://127.0.0.1:8080").
func NewClient(addr string) *Client {
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("fleetctl: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("fleetctl: failed to build request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fleetctl: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fleetctl: failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &envelope)
		return &RequestError{Status: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("fleetctl: failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("fleetctl: failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) get(path string, out any) error              { return c.do(http.MethodGet, path, nil, out) }
func (c *Client) put(path string, body, out any) error         { return c.do(http.MethodPut, path, body, out) }
func (c *Client) post(path string, body, out any) error        { return c.do(http.MethodPost, path, body, out) }
func (c *Client) delete(path string) error                     { return c.do(http.MethodDelete, path, nil, nil) }
func resourcePath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/api/v1/" + strings.Join(escaped, "/")
}
