// Package client is a typed HTTP client for the task API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/idilsaglam/todo/internal/model"
)

// APIPath is the task resource path relative to the base URL.
const APIPath = "/api/todos"

// MaxResponseSize bounds response body reads.
const MaxResponseSize int64 = 8 << 20

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// Client talks to one server.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// List returns every task in server order.
func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, nil, http.StatusOK, &tasks); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return tasks, nil
}

// Create adds a task and returns the server's record.
func (c *Client) Create(ctx context.Context, text string) (model.Task, error) {
	var task model.Task
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, body, http.StatusCreated, &task); err != nil {
		return model.Task{}, fmt.Errorf("create: %w", err)
	}
	return task, nil
}

// SetCompleted sets the completion flag of task id.
func (c *Client) SetCompleted(ctx context.Context, id int64, completed bool) (model.Task, error) {
	var task model.Task
	body := map[string]any{"id": id, "completed": completed}
	if err := c.do(ctx, http.MethodPut, body, http.StatusOK, &task); err != nil {
		return model.Task{}, fmt.Errorf("update %d: %w", id, err)
	}
	return task, nil
}

// Delete removes task id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	body := map[string]int64{"id": id}
	if err := c.do(ctx, http.MethodDelete, body, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+APIPath, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != want {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return &Error{Status: status, Message: body.Message}
	}
	return &Error{Status: status, Message: strings.TrimSpace(string(data))}
}
