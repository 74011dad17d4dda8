// Package apiclient is the typed HTTP gateway to the catalog backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means the request goes out without Authorization.
type TokenSource interface {
	Token() string
}

// Client talks JSON to the backend rooted at baseURL.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// New creates a Client with its own http.Client bounded by timeout.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, tokens, logger)
}

// NewWithHTTPClient creates a Client around an existing http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		tokens:  tokens,
		logger:  logger,
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one JSON call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}

	// Public requests never carry the bearer token (login).
	Public bool
}

// File is a binary payload sent as a multipart form part.
type File struct {
	Name string
	Body io.Reader
}

// Path joins escaped segments into an absolute request path.
func Path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Get issues an authenticated GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// Do sends req and decodes a 2xx body into out. An empty body leaves out untouched.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req.Path, req.Query), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return c.send(httpReq, !req.Public, out)
}

// Upload posts file as the multipart part named field.
func (c *Client) Upload(ctx context.Context, path, field string, file File, out interface{}) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile(field, file.Name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return fmt.Errorf("read upload %s: %w", file.Name, err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	return c.send(httpReq, true, out)
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) send(req *http.Request, withAuth bool, out interface{}) error {
	if withAuth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"requestID", requestID,
			"error", err,
		)
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"requestID", requestID,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, errorMessage(data))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a failure body, best effort.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Error
}
