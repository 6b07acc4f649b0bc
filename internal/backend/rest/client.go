// Package rest implements the service.Service interface over the to-do REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"todo/internal/config"
	"todo/internal/credentials"
	"todo/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 1 << 20

	userAgent = "todo-cli"
)

// Client implements service.Service against the REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	creds   credentials.Provider
	log     *slog.Logger
}

// New creates a client for cfg.APIURL. The bearer credential is read from
// creds on every authenticated request and cleared when the server answers 401.
func New(ctx context.Context, cfg *config.Config, creds credentials.Provider, log *slog.Logger) (*Client, error) {
	httpClient, _, err := htransport.NewClient(ctx,
		option.WithoutAuthentication(),
		option.WithEndpoint(cfg.APIURL),
		option.WithUserAgent(userAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return NewWithHTTPClient(cfg.APIURL, httpClient, creds, log), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, creds credentials.Provider, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		creds:   creds,
		log:     log,
	}
}

// ListLists returns every list with its tasks.
func (c *Client) ListLists(ctx context.Context) ([]service.TodoList, error) {
	var lists []service.TodoList
	if err := c.do(ctx, http.MethodGet, "/to-do-lists", nil, &lists, true); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateList creates a list.
func (c *Client) CreateList(ctx context.Context, name string) (service.TodoList, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: name}

	var created service.TodoList
	if err := c.do(ctx, http.MethodPost, "/to-do-lists", body, &created, true); err != nil {
		return service.TodoList{}, err
	}
	return created, nil
}

// DeleteList deletes a list by id.
func (c *Client) DeleteList(ctx context.Context, listID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/to-do-lists/%d", listID), nil, nil, true)
}

// CreateTask creates a task in a list.
func (c *Client) CreateTask(ctx context.Context, listID int64, description string) (service.Task, error) {
	body := struct {
		Description string `json:"description"`
		ListID      int64  `json:"to_do_list_id"`
	}{Description: description, ListID: listID}

	var created service.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", body, &created, true); err != nil {
		return service.Task{}, err
	}
	return created, nil
}

// SetTaskCompleted sets a task's completion flag.
func (c *Client) SetTaskCompleted(ctx context.Context, taskID int64, completed bool) error {
	body := struct {
		IsCompleted bool `json:"is_completed"`
	}{IsCompleted: completed}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), body, nil, true)
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, taskID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), nil, nil, true)
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", body, &resp, false); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("login response has no token")
	}
	if err := c.creds.SetToken(credentials.FromBearer(resp.Token)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req service.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/register", req, nil, false)
}

// do sends one JSON request. When auth is set the stored bearer token is
// attached and a 401 clears it.
func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	if auth {
		if err := c.authorize(req); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "request_id", requestID, "err", err)
		return &service.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request", "op", op, "status", resp.StatusCode, "request_id", requestID)

	if auth && resp.StatusCode == http.StatusUnauthorized {
		if err := c.creds.Clear(); err != nil {
			c.log.Warn("failed to clear credential", "err", err)
		}
		return service.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: invalid response: %w", op, err)
	}
	return nil
}

// authorize attaches the stored token unless it is missing or known to
// have expired. Without one the server decides, and a 401 clears state.
func (c *Client) authorize(req *http.Request) error {
	tok, err := c.creds.Token()
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}
	if tok.Valid() {
		tok.SetAuthHeader(req)
	}
	return nil
}

// decodeError turns a non-2xx response into an APIError.
func decodeError(resp *http.Response) error {
	apiErr := &service.APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(bytes.TrimSpace(data)) > 0 {
		_ = json.Unmarshal(data, apiErr)
	}
	if apiErr.Message == "" && len(apiErr.Errors) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
	}
	return apiErr
}
