package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diwise/temporal-resampler/internal/pkg/application/resampler"
	ngsierrors "github.com/diwise/temporal-resampler/pkg/ngsild/errors"
	"github.com/diwise/temporal-resampler/pkg/ngsild/types/temporal"
	"github.com/diwise/temporal-resampler/pkg/properties/value"
	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"
)

func TestResampleEntity(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample?interval=30s", "", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code
	is.Equal(resp.Header.Get("Content-Type"), "application/ld+json")
	is.True(strings.Contains(body, `"id":"urn:ngsi-ld:Vehicle:B9211"`))

	is.Equal(len(app.ResampleCalls()), 1)
	is.Equal(app.ResampleCalls()[0].Tenant, "default")
	is.Equal(app.ResampleCalls()[0].Interval, 30*time.Second)
	is.Equal(len(app.ResampleCalls()[0].Entity.Attributes["speed"]), 2)
}

func TestResampleEntityWithoutIntervalUsesDefault(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample", "", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code
	is.Equal(app.ResampleCalls()[0].Interval, time.Duration(0))
}

func TestResampleEntityWithInvalidInterval(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample?interval=often", "", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
	is.True(strings.Contains(body, "BadRequestData"))
	is.Equal(len(app.ResampleCalls()), 0)
}

func TestResampleEntityWithBadDataReturnsInvalidRequest(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample", "", strings.NewReader("this is not my json"))

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
	is.Equal(resp.Header.Get("Content-Type"), ngsierrors.ProblemReportContentType)
	is.True(strings.Contains(body, "InvalidRequest"))
}

func TestResampleEntityWithWrongContentTypeReturnsUnsupportedMediaType(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/api/v0/temporal/resample", strings.NewReader(entityJSON))
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusUnsupportedMediaType) // Check status code
}

func TestResampleEntityReportsKindMismatch(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.ResampleFunc = func(context.Context, string, *temporal.EntityTemporal, time.Duration) (*temporal.EntityTemporal, error) {
		return nil, fmt.Errorf("property %q: %w", "speed", value.KindMismatchError{Expected: value.KindReal, Actual: value.KindString})
	}

	resp, body := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample?interval=30s", "", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
	is.True(strings.Contains(body, "BadRequestData"))
	is.True(strings.Contains(body, `kind mismatch: expected real, got string`))
}

func TestResampleEntityForUnknownTenant(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.ResampleFunc = func(_ context.Context, tenant string, _ *temporal.EntityTemporal, _ time.Duration) (*temporal.EntityTemporal, error) {
		return nil, ngsierrors.NewUnknownTenantError(tenant)
	}

	resp, body := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample", "other", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusNotFound) // Check status code
	is.True(strings.Contains(body, "NonexistentTenant"))
	is.Equal(resp.Header.Get("NGSILD-Tenant"), "other")
}

func TestResampleEntityCanHandleInternalError(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.ResampleFunc = func(context.Context, string, *temporal.EntityTemporal, time.Duration) (*temporal.EntityTemporal, error) {
		return nil, fmt.Errorf("some unknown error")
	}

	resp, _ := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample", "", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusInternalServerError) // Check status code
}

func TestResampleEntityIsDeniedByPolicy(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "POST", "/api/v0/temporal/resample", "secret", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusUnauthorized) // Check status code
	is.True(strings.Contains(body, "UnauthorizedRequest"))
	is.Equal(len(app.ResampleCalls()), 0)
}

func TestValueAt(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "POST", "/api/v0/temporal/at?timeAt=2018-08-01T12:04:30Z", "", strings.NewReader(entityJSON))

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code
	is.Equal(len(app.ValueAtCalls()), 1)
	is.True(app.ValueAtCalls()[0].When.Equal(time.Date(2018, 8, 1, 12, 4, 30, 0, time.UTC)))
}

func TestValueAtRequiresTimeAt(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "POST", "/api/v0/temporal/at", "", strings.NewReader(entityJSON))
	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code

	resp, _ = newTestRequest(is, ts, "POST", "/api/v0/temporal/at?timeAt=yesterday", "", strings.NewReader(entityJSON))
	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code

	is.Equal(len(app.ValueAtCalls()), 0)
}

func TestResampleStoredEntity(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "GET", "/api/v0/temporal/entities/urn:ngsi-ld:Vehicle:B9211?timeAt=2018-08-01T12:03:00Z&endTimeAt=2018-08-01T12:05:00Z&interval=1m", "", nil)

	is.Equal(resp.StatusCode, http.StatusOK) // Check status code
	is.True(strings.Contains(body, `"type":"Vehicle"`))

	call := app.ResampleStoredCalls()[0]
	is.Equal(call.EntityID, "urn:ngsi-ld:Vehicle:B9211")
	is.True(call.From.Equal(time.Date(2018, 8, 1, 12, 3, 0, 0, time.UTC)))
	is.True(call.To.Equal(time.Date(2018, 8, 1, 12, 5, 0, 0, time.UTC)))
	is.Equal(call.Interval, time.Minute)
}

func TestResampleStoredEntityWithoutStorage(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.ResampleStoredFunc = func(context.Context, string, string, time.Time, time.Time, time.Duration) (*temporal.EntityTemporal, error) {
		return nil, ngsierrors.NewNotImplementedError("no temporal storage has been configured")
	}

	resp, _ := newTestRequest(is, ts, "GET", "/api/v0/temporal/entities/urn:ngsi-ld:Vehicle:B9211?timeAt=2018-08-01T12:03:00Z", "", nil)

	is.Equal(resp.StatusCode, http.StatusNotImplemented) // Check status code
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path, tenant string, body io.Reader) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	req.Header.Add("Content-Type", "application/ld+json")
	if tenant != "" {
		req.Header.Add("NGSILD-Tenant", tenant)
	}

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err) // failed to read response body

	return resp, string(respBody)
}

func setupTest(t *testing.T) (*is.I, *httptest.Server, *resampler.ResamplerMock) {
	is := is.New(t)
	r := chi.NewRouter()
	ts := httptest.NewServer(r)

	echo := func(e *temporal.EntityTemporal) (*temporal.EntityTemporal, error) {
		return &temporal.EntityTemporal{ID: e.ID, Type: e.Type}, nil
	}

	app := &resampler.ResamplerMock{
		ResampleFunc: func(_ context.Context, _ string, e *temporal.EntityTemporal, _ time.Duration) (*temporal.EntityTemporal, error) {
			return echo(e)
		},
		ValueAtFunc: func(_ context.Context, _ string, e *temporal.EntityTemporal, _ time.Time) (*temporal.EntityTemporal, error) {
			return echo(e)
		},
		ResampleStoredFunc: func(_ context.Context, _ string, entityID string, _, _ time.Time, _ time.Duration) (*temporal.EntityTemporal, error) {
			return &temporal.EntityTemporal{ID: entityID, Type: "Vehicle"}, nil
		},
	}

	err := RegisterHandlers(context.Background(), r, strings.NewReader(policies), app)
	is.NoErr(err)

	return is, ts, app
}

const policies string = `
package example.authz

default allow = false

allow = response {
	input.tenant != "secret"
	response := {"tenants": [input.tenant]}
}
`

const entityJSON string = `{
	"id": "urn:ngsi-ld:Vehicle:B9211",
	"type": "Vehicle",
	"speed": [
		{"type": "Property", "value": 120, "observedAt": "2018-08-01T12:03:00Z"},
		{"type": "Property", "value": 80, "observedAt": "2018-08-01T12:04:00Z"}
	],
	"@context": ["https://uri.etsi.org/ngsi-ld/v1/ngsi-ld-core-context.jsonld"]
}`
