package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/metrics"
	"whatsapp-boost/pkg/logger"
)

const maxResponseBytes = 1 << 20

var (
	// ErrUnauthorized is returned when the backend rejects the bearer token (HTTP 401)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse is returned when a response does not match the endpoint schema
	ErrMalformedResponse = errors.New("malformed backend response")
)

// Error is a failure reported by the backend through its envelope
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (status %d)", e.Status)
	}
	return e.Message
}

// Message extracts a user-presentable message from err
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return ""
}

// envelope is the response wrapper shared by every endpoint.
// success may be omitted on 2xx responses; an explicit false is a rejection.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is the single gateway to the boosting backend.
// It holds no session state: callers pass the bearer token per request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new backend API client
func NewClient(cfg *config.BackendConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: log,
	}
}

// get performs an authenticated GET and decodes data into out
func (c *Client) get(ctx context.Context, token, path string, out any) error {
	return c.do(ctx, token, http.MethodGet, path, nil, out)
}

// post performs a POST with an Idempotency-Key and decodes data into out
func (c *Client) post(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPost, path, body, out)
}

// do performs the actual HTTP request and decodes the envelope
func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "whatsapp-boost/1.0")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", requestID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	endpoint := endpointLabel(method, path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	metrics.RecordBackendRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		c.logger.Warn("Backend response is not a JSON envelope",
			"endpoint", endpoint,
			"request_id", requestID,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("%w: %s", ErrMalformedResponse, endpoint)
	}

	if resp.StatusCode >= 400 || (env.Success != nil && !*env.Success) {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		c.logger.Warn("Backend response has no data",
			"endpoint", endpoint,
			"request_id", requestID,
		)
		return fmt.Errorf("%w: %s: missing data", ErrMalformedResponse, endpoint)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		c.logger.Warn("Backend response data does not match schema",
			"endpoint", endpoint,
			"request_id", requestID,
			"error", err,
		)
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, endpoint, err)
	}

	return nil
}

// endpointLabel collapses identifiers out of a path so metric labels stay bounded
func endpointLabel(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if i > 0 && looksLikeID(part) {
			parts[i] = ":id"
		}
	}
	return method + " /" + strings.Join(parts, "/")
}

func looksLikeID(segment string) bool {
	if segment == "" {
		return false
	}
	if _, err := uuid.Parse(segment); err == nil {
		return true
	}
	for _, r := range segment {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return len(segment) > 20
}
