package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distanceServiceForTest(handler http.HandlerFunc) (*DistanceService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := NewDistanceService("test-key")
	svc.baseURL = server.URL
	return svc, server
}

func TestDistanceLookup(t *testing.T) {
	svc, server := distanceServiceForTest(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Nouakchott", r.URL.Query().Get("origins"))
		assert.Equal(t, "Nouadhibou", r.URL.Query().Get("destinations"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"distance": {"text": "471 km"},
				"duration": {"text": "6 hours 2 mins"}
			}]}]
		}`))
	})
	defer server.Close()

	result, err := svc.Distance(context.Background(), "Nouakchott", "Nouadhibou")
	require.NoError(t, err)
	assert.Equal(t, "471 km", result.Distance)
	assert.Equal(t, "6 hours 2 mins", result.Duration)
}

func TestDistanceRequiresBothAddresses(t *testing.T) {
	svc := NewDistanceService("test-key")

	_, err := svc.Distance(context.Background(), "", "Nouadhibou")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Distance(context.Background(), "Nouakchott", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDistanceNoRoute(t *testing.T) {
	svc, server := distanceServiceForTest(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]
		}`))
	})
	defer server.Close()

	_, err := svc.Distance(context.Background(), "Nouakchott", "Honolulu")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDistanceUpstreamError(t *testing.T) {
	svc, server := distanceServiceForTest(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid"}`))
	})
	defer server.Close()

	_, err := svc.Distance(context.Background(), "Nouakchott", "Nouadhibou")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is invalid")
}
