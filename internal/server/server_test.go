package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/config"
)

func newTestServer(t *testing.T) *Server {
	return newTestServerWithGrace(t, 50*time.Millisecond)
}

func newTestServerWithGrace(t *testing.T, grace time.Duration) *Server {
	t.Helper()

	s := NewWithConfig(&config.Config{
		Addr:        ":0",
		GracePeriod: grace,
		StaticDir:   t.TempDir(),
	})
	s.RegisterRoutes()
	t.Cleanup(s.Close)
	return s
}

func TestCreateRoomEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/create-room", nil)
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["roomId"])

	// The room is immediately joinable.
	_, err := s.Store().Get(body["roomId"])
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Store().Len())
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
