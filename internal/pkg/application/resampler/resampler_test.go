package resampler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	ngsierrors "github.com/diwise/temporal-resampler/pkg/ngsild/errors"
	"github.com/diwise/temporal-resampler/pkg/ngsild/types/properties"
	"github.com/diwise/temporal-resampler/pkg/ngsild/types/temporal"
	"github.com/diwise/temporal-resampler/pkg/properties/value"
	"github.com/diwise/temporal-resampler/pkg/trajectory"
	"github.com/matryer/is"
)

func TestResampleUsesConfiguredInterval(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	result, err := app.Resample(context.Background(), "default", vehicle(is), 0)
	is.NoErr(err)

	is.Equal(result.ID, "urn:ngsi-ld:Vehicle:B9211")
	is.Equal(result.Type, "Vehicle")
	is.Equal(speeds(is, result), []float64{120, 100, 80})
}

func TestResampleWithExplicitInterval(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	result, err := app.Resample(context.Background(), "default", vehicle(is), 20*time.Second)
	is.NoErr(err)
	is.Equal(len(result.Attributes["speed"]), 4)
	is.Equal(len(result.Attributes["status"]), 4)
}

func TestResampleUnknownTenant(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	_, err := app.Resample(context.Background(), "nosuchtenant", vehicle(is), 0)
	is.True(errors.Is(err, ngsierrors.ErrUnknownTenant))
}

func TestResampleUnconfiguredTypeRequiresInterval(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	e := vehicle(is)
	e.Type = "Bus"

	_, err := app.Resample(context.Background(), "default", e, 0)
	is.True(errors.Is(err, ngsierrors.ErrBadRequest))

	result, err := app.Resample(context.Background(), "default", e, 30*time.Second)
	is.NoErr(err)
	is.Equal(speeds(is, result), []float64{120, 100, 80})
}

func TestResampleReportsKindMismatch(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	e, err := temporal.NewFromJSON([]byte(`{
		"id": "urn:ngsi-ld:Bus:1", "type": "Bus",
		"speed": [
			{"type": "Property", "value": 120, "observedAt": "2018-08-01T12:03:00Z"},
			{"type": "Property", "value": "fast", "observedAt": "2018-08-01T12:04:00Z"}
		]
	}`))
	is.NoErr(err)

	_, err = app.Resample(context.Background(), "default", e, 20*time.Second)
	is.True(errors.Is(err, value.ErrKindMismatch))
	is.True(IsContractViolation(err))
}

func TestValueAtReportsIntegersOutOfRange(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	e, err := temporal.NewFromJSON([]byte(`{
		"id": "urn:ngsi-ld:Vehicle:B9211", "type": "Vehicle",
		"gear": [
			{"type": "Property", "value": 0, "observedAt": "2018-08-01T12:03:00Z"},
			{"type": "Property", "value": 4611686018427387904, "observedAt": "2018-08-01T12:04:00Z"}
		]
	}`))
	is.NoErr(err)

	_, err = app.ValueAt(context.Background(), "default", e, time.Date(2018, 8, 1, 12, 6, 0, 0, time.UTC))
	is.True(errors.Is(err, value.ErrOutOfRange))
	is.True(IsContractViolation(err))
}

func TestResampleRejectsValuesOfTheWrongDeclaredKind(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	e, err := temporal.NewFromJSON([]byte(`{
		"id": "urn:ngsi-ld:Vehicle:B9211", "type": "Vehicle",
		"speed": {"type": "Property", "value": "fast", "observedAt": "2018-08-01T12:03:00Z"}
	}`))
	is.NoErr(err)

	_, err = app.Resample(context.Background(), "default", e, 0)
	is.True(errors.Is(err, ngsierrors.ErrBadRequest))
}

func TestValueAtExtrapolates(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	result, err := app.ValueAt(context.Background(), "default", vehicle(is), at(90))
	is.NoErr(err)
	is.Equal(speeds(is, result), []float64{60})

	result, err = app.ValueAt(context.Background(), "default", vehicle(is), at(15))
	is.NoErr(err)
	is.Equal(speeds(is, result), []float64{110})
}

func TestResampleStoredWithoutStorage(t *testing.T) {
	is, app := setupResamplerTest(t, nil)

	_, err := app.ResampleStored(context.Background(), "default", "urn:ngsi-ld:Vehicle:B9211", at(0), at(60), 0)
	is.True(errors.Is(err, ngsierrors.ErrNotImplemented))
}

func TestResampleStored(t *testing.T) {
	history := historyFunc(func(ctx context.Context, entityID string, from, to time.Time, schema trajectory.Schema) ([]trajectory.Observation, error) {
		if schema.KindOf("speed") != value.KindReal {
			return nil, errors.New("unexpected schema")
		}
		return []trajectory.Observation{
			{Name: "speed", ObservedAt: at(0), Value: value.Real(120)},
			{Name: "speed", ObservedAt: at(60), Value: value.Real(80)},
		}, nil
	})

	is, app := setupResamplerTest(t, history)

	result, err := app.ResampleStored(context.Background(), "default", "urn:ngsi-ld:Vehicle:B9211", at(0), at(60), 0)
	is.NoErr(err)
	is.Equal(result.Type, "Vehicle")
	is.Equal(speeds(is, result), []float64{120, 100, 80})

	_, err = app.ResampleStored(context.Background(), "default", "urn:ngsi-ld:Device:B9211", at(0), at(60), 0)
	is.True(errors.Is(err, ngsierrors.ErrNotFound))

	_, err = app.ResampleStored(context.Background(), "default", "urn:ngsi-ld:Vehicle:B9211", at(60), at(0), 0)
	is.True(errors.Is(err, ngsierrors.ErrBadRequest))
}

func TestResampleStoredWithoutHistory(t *testing.T) {
	history := historyFunc(func(context.Context, string, time.Time, time.Time, trajectory.Schema) ([]trajectory.Observation, error) {
		return nil, nil
	})

	is, app := setupResamplerTest(t, history)

	_, err := app.ResampleStored(context.Background(), "default", "urn:ngsi-ld:Vehicle:B9211", at(0), at(60), 0)
	is.True(errors.Is(err, ngsierrors.ErrNotFound))
}

type historyFunc func(ctx context.Context, entityID string, from, to time.Time, schema trajectory.Schema) ([]trajectory.Observation, error)

func (f historyFunc) History(ctx context.Context, entityID string, from, to time.Time, schema trajectory.Schema) ([]trajectory.Observation, error) {
	return f(ctx, entityID, from, to, schema)
}

func setupResamplerTest(t *testing.T, history HistoryReader) (*is.I, Resampler) {
	is := is.New(t)

	cfg, err := LoadConfiguration(bytes.NewBufferString(configFile))
	is.NoErr(err)

	app, err := New(*cfg, history)
	is.NoErr(err)

	return is, app
}

func vehicle(is *is.I) *temporal.EntityTemporal {
	e, err := temporal.NewFromJSON([]byte(`{
		"id": "urn:ngsi-ld:Vehicle:B9211",
		"type": "Vehicle",
		"speed": [
			{"type": "Property", "value": 120, "observedAt": "2018-08-01T12:03:00Z"},
			{"type": "Property", "value": 80, "observedAt": "2018-08-01T12:04:00Z"}
		],
		"status": [
			{"type": "Property", "value": "moving", "observedAt": "2018-08-01T12:03:00Z"},
			{"type": "Property", "value": "braking", "observedAt": "2018-08-01T12:04:00Z"}
		]
	}`))
	is.NoErr(err)
	return e
}

func speeds(is *is.I, e *temporal.EntityTemporal) []float64 {
	result := []float64{}
	for _, p := range e.Attributes["speed"] {
		np, ok := p.(*properties.NumberProperty)
		is.True(ok) // speed should be a number property
		result = append(result, np.Val)
	}
	return result
}

func at(seconds int) time.Time {
	return time.Date(2018, 8, 1, 12, 3, 0, 0, time.UTC).Add(time.Duration(seconds) * time.Second)
}
