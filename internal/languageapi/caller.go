package languageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Caller invokes a named backend function and returns its raw JSON payload.
type Caller interface {
	Call(ctx context.Context, name string, data any) (json.RawMessage, error)
}

// CallError is a non-2xx answer from the backend. Message carries the
// server's "error" field when it sent one.
type CallError struct {
	Name       string
	StatusCode int
	Message    string
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("languageapi: %s returned status %d", e.Name, e.StatusCode)
	}
	return fmt.Sprintf("languageapi: %s returned status %d: %s", e.Name, e.StatusCode, e.Message)
}

// HTTPCaller posts {"data": ...} to {baseURL}/{name}. It sets no timeout of
// its own; pass one with WithHTTPClient.
type HTTPCaller struct {
	baseURL    string
	callerID   string
	httpClient *http.Client
}

type CallerOption func(*HTTPCaller)

func WithHTTPClient(c *http.Client) CallerOption {
	return func(h *HTTPCaller) {
		if c != nil {
			h.httpClient = c
		}
	}
}

// WithCallerID sets the X-User-Id header used for per-device usage counts.
func WithCallerID(id string) CallerOption {
	return func(h *HTTPCaller) {
		h.callerID = strings.TrimSpace(id)
	}
}

func NewHTTPCaller(baseURL string, opts ...CallerOption) (*HTTPCaller, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("languageapi: base url must not be empty")
	}
	h := &HTTPCaller{
		baseURL:    base,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HTTPCaller) Call(ctx context.Context, name string, data any) (json.RawMessage, error) {
	body, err := json.Marshal(struct {
		Data any `json:"data"`
	}{Data: data})
	if err != nil {
		return nil, fmt.Errorf("languageapi: marshal %s request: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("languageapi: create %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.callerID != "" {
		req.Header.Set("X-User-Id", h.callerID)
	}

	res, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languageapi: %s request failed: %w", name, err)
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("languageapi: read %s response: %w", name, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(buf, &payload)
		return nil, &CallError{Name: name, StatusCode: res.StatusCode, Message: payload.Error}
	}
	return buf, nil
}
