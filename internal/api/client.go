package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/model"
	"github.com/existflow/snipvault/internal/tokenstore"
	"github.com/google/uuid"
)

// userAgent identifies the client in backend logs
const userAgent = "snipvault-cli/1.0"

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Read() (string, bool)
}

var _ TokenSource = tokenstore.Holder(nil)

// Client calls the snippet service REST API. It never retries, caches or
// queues; every failure is returned to the caller as *Error.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	log        *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a client rooted at baseURL (e.g. http://host:8000/api).
// tokens is consulted on every request.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.WithFields(logger.F("component", "api")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	return c.do(ctx, "register", http.MethodPost, "/auth/register", body, nil)
}

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var resp LoginResponse
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", body, &resp)
	return resp, err
}

// CurrentUser returns the user the token belongs to
func (c *Client) CurrentUser(ctx context.Context) (model.UserInfo, error) {
	var user model.UserInfo
	err := c.do(ctx, "get current user", http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

// CreateSnippet creates a snippet and returns it as stored by the server
func (c *Client) CreateSnippet(ctx context.Context, in model.SnippetInput) (model.Snippet, error) {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	var s model.Snippet
	err := c.do(ctx, "create snippet", http.MethodPost, "/snippets", in, &s)
	return s, err
}

// ListSnippets returns the caller's snippets in server order
func (c *Client) ListSnippets(ctx context.Context) ([]model.Snippet, error) {
	var list []model.Snippet
	err := c.do(ctx, "list snippets", http.MethodGet, "/snippets", nil, &list)
	return nonNil(list), err
}

// ListPublicSnippets returns every public snippet
func (c *Client) ListPublicSnippets(ctx context.Context) ([]model.Snippet, error) {
	var list []model.Snippet
	err := c.do(ctx, "list public snippets", http.MethodGet, "/snippets/public", nil, &list)
	return nonNil(list), err
}

// GetSnippet fetches one snippet
func (c *Client) GetSnippet(ctx context.Context, id int64) (model.Snippet, error) {
	var s model.Snippet
	err := c.do(ctx, "get snippet", http.MethodGet, snippetPath(id), nil, &s)
	return s, err
}

// UpdateSnippet applies patch and returns the updated snippet
func (c *Client) UpdateSnippet(ctx context.Context, id int64, patch model.SnippetPatch) (model.Snippet, error) {
	var s model.Snippet
	err := c.do(ctx, "update snippet", http.MethodPut, snippetPath(id), patch, &s)
	return s, err
}

// DeleteSnippet deletes a snippet
func (c *Client) DeleteSnippet(ctx context.Context, id int64) error {
	return c.do(ctx, "delete snippet", http.MethodDelete, snippetPath(id), nil, nil)
}

// ListTags returns every known tag
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := c.do(ctx, "list tags", http.MethodGet, "/tags", nil, &tags)
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, err
}

func snippetPath(id int64) string {
	return "/snippets/" + url.PathEscape(fmt.Sprint(id))
}

func nonNil(list []model.Snippet) []model.Snippet {
	if list == nil {
		return []model.Snippet{}
	}
	return list
}

// do sends one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Read(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.log.Debug("HTTP Request",
		logger.F("method", method),
		logger.F("url", reqURL),
		logger.F("requestID", requestID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("HTTP request failed",
			logger.F("error", err),
			logger.F("url", reqURL),
			logger.F("requestID", requestID))
		return &Error{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.log.Debug("HTTP Response",
		logger.F("status", resp.StatusCode),
		logger.F("requestID", requestID),
		logger.F("duration", time.Since(start).String()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		apiErr := &Error{Op: op, Status: resp.StatusCode, Detail: parseDetail(respBody)}
		c.log.Warn("API call failed",
			logger.F("op", op),
			logger.F("status", resp.StatusCode),
			logger.F("detail", apiErr.Detail),
			logger.F("requestID", requestID))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
