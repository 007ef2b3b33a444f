package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	mirage "github.com/Paranoid-AF/mirage"
)

// maxErrorBody caps how much of an error response is quoted in messages.
const maxErrorBody = 512

// Client submits completion requests to a llama.cpp-style /completion endpoint.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a client for the given endpoint. A zero timeout leaves
// the request bounded only by the caller's context.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Complete sends req and returns the envelope's content string, which is
// itself JSON text still to be decoded.
func (c *Client) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", mirage.WrapError(mirage.EINTERNAL, err, "encode completion request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", mirage.WrapError(mirage.EUNAVAILABLE, err, "build request for %s", c.endpoint)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", mirage.WrapError(mirage.EUNAVAILABLE, err, "completion service unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", mirage.WrapError(mirage.EUNAVAILABLE, err, "read completion response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", mirage.Errorf(mirage.EUNAVAILABLE, "completion service error (status %d): %s", resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	return decodeEnvelope(body)
}

// decodeEnvelope extracts the content string from {"content": "<json text>"}.
// A content value that is already structured JSON is rejected: the service
// always sends it as an escaped string.
func decodeEnvelope(body []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", mirage.WrapError(mirage.EMALFORMED, err, "completion response is not a JSON object")
	}

	raw, ok := envelope["content"]
	if !ok || string(raw) == "null" {
		return "", mirage.Errorf(mirage.EMALFORMED, "completion response has no content")
	}

	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		return "", mirage.WrapError(mirage.EMALFORMED, err, "completion content is not a string")
	}
	return content, nil
}

// truncate shortens s to at most max bytes without splitting a character.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
