// Package client talks to the job API over HTTP/JSON.
//
// Usage:
//
//	c := client.New("http://localhost:8080/api", client.WithToken(token))
//	jobs, err := c.ListJobs(ctx)
//	err = c.UpdateOrder(ctx, changes)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
)

var ErrNotFound = errors.New("client: not found")

// APIError is a non-2xx answer from the job API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("job api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	token   string
	userID  string
	http    *http.Client
	logger  *slog.Logger
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListJobs returns every job of the user. The API answers with one array per
// status; a flat array is accepted too.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "job", nil, &raw); err != nil {
		return nil, err
	}
	return decodeJobs(raw)
}

func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodGet, "job/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) CreateJob(ctx context.Context, req dtos.JobCreationRequest) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodPost, "job", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) EditJob(ctx context.Context, id string, patch dtos.JobPatch) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodPatch, "job/"+url.PathEscape(id), patch, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "job/"+url.PathEscape(id), nil, nil)
}

// UpdateOrder saves new placements for a batch of jobs in one request.
func (c *Client) UpdateOrder(ctx context.Context, changes []dtos.OrderChange) error {
	return c.do(ctx, http.MethodPatch, "job/order", dtos.OrderUpdateRequest{Jobs: changes}, nil)
}

// ExtractJob asks the API to turn a pasted posting into a job draft.
func (c *Client) ExtractJob(ctx context.Context, rawHTML, link string) (*dtos.JobDraft, error) {
	var resp struct {
		Success bool          `json:"success"`
		Data    dtos.JobDraft `json:"data"`
	}
	req := dtos.JobExtractionRequest{RawHTML: rawHTML, URL: link}
	if err := c.do(ctx, http.MethodPost, "job/extract", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("job api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Error != "":
			msg = body.Error
		case body.Message != "":
			msg = body.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

func decodeJobs(raw json.RawMessage) ([]models.Job, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var parts [][]models.Job
	if err := json.Unmarshal(trimmed, &parts); err == nil {
		if len(parts) > models.NumStatuses {
			return nil, fmt.Errorf("decode jobs: %d partitions", len(parts))
		}
		var flat []models.Job
		for s, p := range parts {
			for _, j := range p {
				j.Status = models.Status(s)
				flat = append(flat, j)
			}
		}
		return flat, nil
	}

	var flat []models.Job
	if err := json.Unmarshal(trimmed, &flat); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return flat, nil
}
