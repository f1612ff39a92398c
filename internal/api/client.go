// Package api is the typed client for the storefront backend. All business
// logic (pricing, stock, auth) lives behind these endpoints; this package
// only shapes requests and classifies failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind int

const (
	KindNetwork Kind = iota
	KindAuth
	KindValidation
	KindNotFound
	KindServer
)

// Error is the classified failure for any backend call. StatusCode 0 means
// the request never produced a response (connectivity, timeout).
type Error struct {
	StatusCode int
	Message    string
	Fields     []string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

// Kind buckets the error for the manager's failure handling.
func (e *Error) Kind() Kind {
	switch {
	case e.StatusCode == 0:
		return KindNetwork
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return KindAuth
	case e.StatusCode == http.StatusNotFound:
		return KindNotFound
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

// Client talks to the storefront backend. Requests are keyed by explicit
// user IDs in the path; there is no session cookie.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// errorBody is the backend's error envelope. Validation failures carry
// field-level messages in errors.
type errorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &Error{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) *Error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	msg := body.Message
	if len(body.Errors) > 0 {
		joined := strings.Join(body.Errors, "; ")
		if msg == "" {
			msg = joined
		} else {
			msg = msg + ": " + joined
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &Error{StatusCode: resp.StatusCode, Message: msg, Fields: body.Errors}
}
