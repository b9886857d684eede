// Package api is the single choke point between the stores and the remote
// task service. It attaches the bearer token, prefixes every path, logs each
// exchange and turns authentication rejections into session expiry.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasker/internal/config"
	"tasker/internal/model"
	"tasker/internal/session"
)

const (
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Options 客户端配置
// Options configures a Client
type Options struct {
	BaseURL         string
	Prefix          string
	Timeout         time.Duration
	WithCredentials bool
	Logger          *slog.Logger
	// Now stamps tasks whose record lacks a timestamp. Defaults to time.Now.
	Now func() time.Time
	// HTTPClient overrides the transport; Timeout and WithCredentials are ignored when set.
	HTTPClient *http.Client
}

// OptionsFromConfig maps the api section of the config onto Options.
func OptionsFromConfig(cfg config.APIConfig, logger *slog.Logger) Options {
	return Options{
		BaseURL:         cfg.BaseURL,
		Prefix:          cfg.Prefix,
		Timeout:         time.Duration(cfg.TimeoutMS) * time.Millisecond,
		WithCredentials: cfg.WithCredentials,
		Logger:          logger,
	}
}

type Client struct {
	baseURL    *url.URL
	prefix     string
	httpClient *http.Client
	session    *session.Context
	logger     *slog.Logger
	now        func() time.Time
}

func New(opts Options, sess *session.Context) (*Client, error) {
	if sess == nil {
		return nil, fmt.Errorf("api client requires a session context")
	}
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
		if opts.WithCredentials {
			jar, err := cookiejar.New(nil)
			if err != nil {
				return nil, fmt.Errorf("create cookie jar: %w", err)
			}
			httpClient.Jar = jar
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:    base,
		prefix:     config.NormalizePrefix(opts.Prefix),
		httpClient: httpClient,
		session:    sess,
		logger:     logger,
		now:        now,
	}, nil
}

// ResolvePath prepends the API prefix unless path already starts with it.
func (c *Client) ResolvePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if c.prefix == "" || path == c.prefix || strings.HasPrefix(path, c.prefix+"/") {
		return path
	}
	return c.prefix + path
}

func (c *Client) Register(ctx context.Context, user model.Credentials) error {
	return c.do(ctx, http.MethodPost, "/register", user, nil)
}

// Login returns the access token issued for credentials.
func (c *Client) Login(ctx context.Context, credentials model.Credentials) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", credentials, &out); err != nil {
		return "", err
	}
	token := strings.TrimSpace(out.AccessToken)
	if token == "" {
		return "", &Error{Method: http.MethodPost, Path: c.ResolvePath("/login"), Status: http.StatusOK,
			Category: CategoryDecode, Err: fmt.Errorf("response has no access_token")}
	}
	return token, nil
}

// ListTasks returns the caller's tasks in canonical form.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var records []taskRecord
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &records); err != nil {
		return nil, err
	}
	return normalizeTasks(records, c.now(), c.logger), nil
}

// CreateTask returns the server-assigned id of the new task.
func (c *Client) CreateTask(ctx context.Context, task model.TaskInput) (int64, error) {
	var out struct {
		ID *int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", task, &out); err != nil {
		return 0, err
	}
	if out.ID == nil {
		return 0, &Error{Method: http.MethodPost, Path: c.ResolvePath("/tasks"), Status: http.StatusCreated,
			Category: CategoryDecode, Err: fmt.Errorf("response has no id")}
	}
	return *out.ID, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, task model.TaskUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), task, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	path = c.ResolvePath(path)
	requestID := uuid.NewString()
	fail := func(status int, category Category, message string, err error) error {
		return &Error{Method: method, Path: path, Status: status, Category: category, Message: message, Err: err}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fail(0, CategoryTransport, "", fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fail(0, CategoryTransport, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(requestIDHeader, requestID)
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Info("request", "id", requestID, "method", method, "path", path, "body", in)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", "id", requestID, "method", method, "path", path, "err", err)
		return fail(0, CategoryTransport, "", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger.Info("response",
		"id", requestID,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
		"body", strings.TrimSpace(string(data)),
	)
	if readErr != nil {
		return fail(resp.StatusCode, CategoryTransport, "", fmt.Errorf("read response: %w", readErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := errorMessage(data)
		category := classify(resp.StatusCode, message)
		c.logger.Warn("api error", "id", requestID, "path", path, "status", resp.StatusCode, "category", string(category), "error", message)
		if category == CategoryUnauthenticated {
			c.session.Expire()
		}
		return fail(resp.StatusCode, category, message, nil)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, CategoryDecode, "", fmt.Errorf("parse response: %w", err))
	}
	return nil
}

func errorMessage(data []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if len(payload.Error) > 0 {
		var s string
		if err := json.Unmarshal(payload.Error, &s); err == nil {
			return strings.TrimSpace(s)
		}
		// 非字符串 error 字段（如对象）原样返回 / Non-string error field is kept verbatim
		return strings.TrimSpace(string(payload.Error))
	}
	return strings.TrimSpace(payload.Message)
}
