// Package remote provides the typed REST client for the PawTrail backend.
// It is the only component that talks to the network. Each operation either
// returns a decoded success payload or fails with an error classified as
// retryable (transport failure, timeout, 5xx) or permanent (4xx); retry
// policy itself belongs to the sync engine.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hylee/pawtrail/internal/actions"
	"github.com/hylee/pawtrail/internal/models"
)

// Error is a failed remote call. StatusCode is zero for transport-level
// failures that never produced a response.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth another attempt. Transport
// failures and server errors are; client errors (4xx) are rejections that
// will fail the same way every time.
func (e *Error) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// Retryable classifies an arbitrary error from this package. Unknown errors
// are treated as retryable so a transient oddity is not dropped permanently.
func Retryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}

// Config holds remote client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the PawTrail backend REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend client.
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MarkPetLost reports a pet missing and returns the updated pet.
func (c *Client) MarkPetLost(ctx context.Context, key string, req actions.MarkPetLost) (*models.Pet, error) {
	var pet models.Pet
	path := fmt.Sprintf("/api/pets/%s/lost", url.PathEscape(req.PetID))
	if err := c.do(ctx, "mark pet lost", http.MethodPost, path, key, req, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// MarkPetFound reports a missing pet as found and returns the updated pet.
func (c *Client) MarkPetFound(ctx context.Context, key string, req actions.MarkPetFound) (*models.Pet, error) {
	var pet models.Pet
	path := fmt.Sprintf("/api/pets/%s/found", url.PathEscape(req.PetID))
	if err := c.do(ctx, "mark pet found", http.MethodPost, path, key, req, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// ReportSighting logs a sighting and returns the pet it attaches to.
func (c *Client) ReportSighting(ctx context.Context, key string, req actions.ReportSighting) (*models.Pet, error) {
	var pet models.Pet
	path := fmt.Sprintf("/api/pets/%s/sightings", url.PathEscape(req.PetID))
	if err := c.do(ctx, "report sighting", http.MethodPost, path, key, req, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// CreateAlert creates an alert and returns the authoritative record.
func (c *Client) CreateAlert(ctx context.Context, key string, req actions.CreateAlert) (*models.Alert, error) {
	var alert models.Alert
	if err := c.do(ctx, "create alert", http.MethodPost, "/api/alerts", key, req, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// UpdatePet updates a pet profile and returns the updated pet.
func (c *Client) UpdatePet(ctx context.Context, key string, req actions.UpdatePet) (*models.Pet, error) {
	var pet models.Pet
	path := fmt.Sprintf("/api/pets/%s", url.PathEscape(req.PetID))
	if err := c.do(ctx, "update pet", http.MethodPut, path, key, req, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// ListPets fetches the authoritative pet list.
func (c *Client) ListPets(ctx context.Context) ([]*models.Pet, error) {
	var pets []*models.Pet
	if err := c.do(ctx, "list pets", http.MethodGet, "/api/pets", "", nil, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

// ListAlerts fetches the authoritative alert list.
func (c *Client) ListAlerts(ctx context.Context) ([]*models.Alert, error) {
	var alerts []*models.Alert
	if err := c.do(ctx, "list alerts", http.MethodGet, "/api/alerts", "", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListSuccessStories fetches the authoritative success story list.
func (c *Client) ListSuccessStories(ctx context.Context) ([]*models.SuccessStory, error) {
	var stories []*models.SuccessStory
	if err := c.do(ctx, "list success stories", http.MethodGet, "/api/success-stories", "", nil, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// do executes one request. key, when set, is sent as the Idempotency-Key
// header so the backend can deduplicate at-least-once replays.
func (c *Client) do(ctx context.Context, op, method, path, key string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
