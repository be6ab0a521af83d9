// Package api is the service layer over the mytree REST backend. Each
// method wraps a single HTTP call; there are no retries, no caching and no
// client-side timeout beyond the caller's context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

const userAgent = "mytree-cli/0.1"

// Client calls the backend rooted at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New returns a Client for baseURL. A nil httpClient uses a client without
// a timeout; a nil logger discards output.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: httpClient,
		Logger:     logger,
	}
}

// Error is returned for every non-success response.
type Error struct {
	Method  string
	Path    string
	Status  int
	Body    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is maps 404 responses onto types.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == types.ErrNotFound && e.Status == http.StatusNotFound
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// newError builds the user-facing message: a structured "message" or
// "error" field wins, otherwise the raw body text, otherwise the status.
func newError(method, path string, resp *http.Response, body []byte) *Error {
	text := strings.TrimSpace(string(body))
	e := &Error{Method: method, Path: path, Status: resp.StatusCode, Body: text}

	var structured struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &structured) == nil {
		switch {
		case structured.Message != "":
			e.Message = structured.Message
		case structured.Error != "":
			e.Message = structured.Error
		case structured.Detail != "":
			e.Message = structured.Detail
		}
	}
	if e.Message == "" {
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		e.Message = fmt.Sprintf("Error %d: %s", resp.StatusCode, text)
	}
	return e
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// do sends one request and decodes a success body into out when out is
// non-nil. 204 responses leave out untouched.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Debug("request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	c.Logger.Debug("request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(method, path, resp, data)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, m *Multipart, out any) error {
	contentType, body, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode %s %s form: %w", method, path, err)
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}
