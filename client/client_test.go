package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergencyai/dispatch-api/client"
	"github.com/emergencyai/dispatch-api/models"
	"github.com/emergencyai/dispatch-api/storage"
)

func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginStoresToken(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success": true, "message": "Login successful", "data": {"token": "tok-123", "user": {"email": "anand", "name": "Anand", "role": "admin"}}}`))
		},
	})

	c := client.New(srv.URL)
	data, err := c.Login(context.Background(), "anand", "123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", data.Token)
	assert.Equal(t, "admin", data.User.Role)
	assert.Equal(t, "tok-123", c.Token)
}

func TestClient_SendsBearerToken(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/incidents": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			w.Write([]byte(`{"success": true, "data": [{"id": 101}], "count": 1}`))
		},
	})

	c := client.New(srv.URL)
	c.Token = "tok-123"
	incidents, err := c.Incidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	id, ok := storage.RecordID(incidents[0])
	assert.True(t, ok)
	assert.Equal(t, 101, id)
}

func TestClient_APIError(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/incidents/999": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success": false, "message": "Incident not found"}`))
		},
	})

	c := client.New(srv.URL)
	_, err := c.Incident(context.Background(), 999)
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Incident not found", apiErr.Message)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := client.New(srv.URL)
	_, err := c.Incidents(context.Background())
	assert.ErrorIs(t, err, client.ErrUnreachable)
}

func TestClient_LogoutClearsToken(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/auth/logout": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": true, "message": "Logout successful"}`))
		},
	})

	c := client.New(srv.URL)
	c.Token = "tok-123"
	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Token)
}

func TestClient_UpdateIncident(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/incidents/101": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "PATCH", r.Method)
			w.Write([]byte(`{"success": true, "message": "Incident updated successfully", "data": {"id": 101, "status": "Dispatched"}}`))
		},
	})

	c := client.New(srv.URL)
	rec, err := c.UpdateIncident(context.Background(), 101, storage.Record{"status": "Dispatched"})
	require.NoError(t, err)
	assert.Equal(t, "Dispatched", rec["status"])
}

func TestClient_Poll(t *testing.T) {
	var calls int32
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/dashboard/stats": func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte(`{"success": true, "data": {"activeAmbulances": 14, "pendingIncidents": 3, "availableHospitals": 6, "avgResponseTime": "7m 2s", "timestamp": "2025-08-12T14:00:00Z"}}`))
		},
	})

	c := client.New(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan models.DashboardStats, 8)
	done := make(chan error, 1)
	go func() {
		done <- c.Poll(ctx, 10*time.Millisecond, func(s models.DashboardStats) {
			got <- s
		})
	}()

	select {
	case s := <-got:
		assert.Equal(t, 14, s.ActiveAmbulances)
		assert.Equal(t, "7m 2s", s.AvgResponseTime)
	case <-time.After(2 * time.Second):
		t.Fatal("poller never delivered a stats pulse")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
