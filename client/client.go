// Package client is a typed Go consumer of the dispatch API, for dashboards
// and tooling that poll the service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/emergencyai/dispatch-api/models"
	"github.com/emergencyai/dispatch-api/storage"
)

// ErrUnreachable wraps transport-level failures so callers can tell a down
// service apart from an API rejection.
var ErrUnreachable = errors.New("dispatch API unreachable")

// APIError carries a non-2xx response envelope back to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dispatch API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to a running dispatch API instance.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New returns a client for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewBuffer(buf)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "failed to decode response body")
}

// Login authenticates and stores the session token on the client for
// subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginData, error) {
	var resp struct {
		models.Response
		Data models.LoginData `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.LoginData{}, err
	}
	c.Token = resp.Data.Token
	return resp.Data, nil
}

// Logout revokes the session token and clears it from the client.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.Token = ""
	return nil
}

// Verify checks that the stored token is still accepted.
func (c *Client) Verify(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/auth/verify", nil, nil)
}

// Dashboard returns the static dashboard snapshot verbatim.
func (c *Client) Dashboard(ctx context.Context) (json.RawMessage, error) {
	var resp models.RawResponse
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Stats returns the current stats pulse.
func (c *Client) Stats(ctx context.Context) (models.DashboardStats, error) {
	var resp struct {
		models.Response
		Data models.DashboardStats `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &resp)
	return resp.Data, err
}

// Incidents lists all incidents.
func (c *Client) Incidents(ctx context.Context) ([]storage.Record, error) {
	var resp struct {
		models.ListResponse
		Data []storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/api/incidents", nil, &resp)
	return resp.Data, err
}

// Incident fetches a single incident by ID.
func (c *Client) Incident(ctx context.Context, id int) (storage.Record, error) {
	var resp struct {
		models.Response
		Data storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/incidents/%d", id), nil, &resp)
	return resp.Data, err
}

// CreateIncident reports a new incident and returns the stored record.
func (c *Client) CreateIncident(ctx context.Context, incident storage.Record) (storage.Record, error) {
	var resp struct {
		models.Response
		Data storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/api/incidents", incident, &resp)
	return resp.Data, err
}

// UpdateIncident applies a partial update to an incident.
func (c *Client) UpdateIncident(ctx context.Context, id int, fields storage.Record) (storage.Record, error) {
	var resp struct {
		models.Response
		Data storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/incidents/%d", id), fields, &resp)
	return resp.Data, err
}

// DeleteIncident removes an incident.
func (c *Client) DeleteIncident(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/incidents/%d", id), nil, nil)
}

// Hospitals lists all hospitals.
func (c *Client) Hospitals(ctx context.Context) ([]storage.Record, error) {
	var resp struct {
		models.ListResponse
		Data []storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/api/hospitals", nil, &resp)
	return resp.Data, err
}

// AvailableHospitals lists hospitals currently accepting patients.
func (c *Client) AvailableHospitals(ctx context.Context) ([]storage.Record, error) {
	var resp struct {
		models.ListResponse
		Data []storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/api/hospitals/available", nil, &resp)
	return resp.Data, err
}

// Hospital fetches a single hospital by ID.
func (c *Client) Hospital(ctx context.Context, id int) (storage.Record, error) {
	var resp struct {
		models.Response
		Data storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/hospitals/%d", id), nil, &resp)
	return resp.Data, err
}

// UpdateHospital applies a partial update to a hospital.
func (c *Client) UpdateHospital(ctx context.Context, id int, fields storage.Record) (storage.Record, error) {
	var resp struct {
		models.Response
		Data storage.Record `json:"data"`
	}
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/hospitals/%d", id), fields, &resp)
	return resp.Data, err
}
