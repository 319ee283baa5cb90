package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestHealthEndpoint(t *testing.T) {
	is := is.New(t)

	r := New("temporal-resampler")
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	is.NoErr(err)
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusNoContent)
}

func TestCORSPreflight(t *testing.T) {
	is := is.New(t)

	r := New("temporal-resampler")
	r.Post("/api/v0/temporal/resample", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/v0/temporal/resample", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	is.True(w.Header().Get("Access-Control-Allow-Origin") != "") // preflight should be allowed
}
