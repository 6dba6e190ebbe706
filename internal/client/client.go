// Package client is a typed HTTP client for the logbook API.
//
// Every call takes a context so the caller controls deadlines and
// cancellation; the underlying http.Client carries a transport-level timeout
// as a backstop. Errors are returned, never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wicaksana/logbook/internal/model"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound reports that the target record does not exist on the server.
var ErrNotFound = errors.New("record not found")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// List fetches all records, ordered by date descending.
func (c *Client) List(ctx context.Context) ([]model.BackupRecord, error) {
	var records []model.BackupRecord
	if err := c.do(ctx, http.MethodGet, "/api/backups", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Create persists a new record; the server assigns the identifier and the
// derived month.
func (c *Client) Create(ctx context.Context, in model.RecordInput) (*model.BackupRecord, error) {
	var rec model.BackupRecord
	if err := c.do(ctx, http.MethodPost, "/api/backups", in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update replaces the four mutable fields of the record with the given id.
func (c *Client) Update(ctx context.Context, id string, in model.RecordInput) (*model.BackupRecord, error) {
	var rec model.BackupRecord
	if err := c.do(ctx, http.MethodPut, "/api/backups/"+id, in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/backups/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
