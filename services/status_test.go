package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusServerCounters(t *testing.T) {
	ss := NewStatusServer("dex-meetup-service", "0.1.0")
	ss.IncrementReceived()
	ss.IncrementReceived()
	ss.IncrementServed()
	ss.IncrementFailed()

	rec := httptest.NewRecorder()
	ss.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Service string                 `json:"service"`
		Metrics map[string]interface{} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "dex-meetup-service", body.Service)
	assert.EqualValues(t, 2, body.Metrics["suggestions_received"])
	assert.EqualValues(t, 1, body.Metrics["suggestions_served"])
	assert.EqualValues(t, 1, body.Metrics["suggestions_failed"])
}

func TestStatusServerHealth(t *testing.T) {
	ss := NewStatusServer("svc", "dev")

	rec := httptest.NewRecorder()
	ss.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "status")
}
