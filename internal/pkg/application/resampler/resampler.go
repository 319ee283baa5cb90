package resampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	ngsierrors "github.com/diwise/temporal-resampler/pkg/ngsild/errors"
	"github.com/diwise/temporal-resampler/pkg/ngsild/types/temporal"
	"github.com/diwise/temporal-resampler/pkg/properties/value"
	"github.com/diwise/temporal-resampler/pkg/trajectory"
)

//go:generate moq -rm -out resampler_mock.go . Resampler

type Resampler interface {
	// Resample returns the temporal entity with its attribute instances resampled at a
	// fixed interval. A zero interval selects the configured interval of the entity type.
	Resample(ctx context.Context, tenant string, entity *temporal.EntityTemporal, interval time.Duration) (*temporal.EntityTemporal, error)
	// ValueAt returns the temporal entity with a single instance per attribute, observed
	// at when. Values outside of the observed time range are extrapolated.
	ValueAt(ctx context.Context, tenant string, entity *temporal.EntityTemporal, when time.Time) (*temporal.EntityTemporal, error)
	// ResampleStored reads the stored history of an entity between from and to and
	// resamples it.
	ResampleStored(ctx context.Context, tenant, entityID string, from, to time.Time, interval time.Duration) (*temporal.EntityTemporal, error)
}

// HistoryReader reads the attribute history of stored entities
type HistoryReader interface {
	History(ctx context.Context, entityID string, from, to time.Time, schema trajectory.Schema) ([]trajectory.Observation, error)
}

type resamplerApp struct {
	tenants map[string][]*entityType
	history HistoryReader
}

// New creates a Resampler from the configuration. The history reader is optional, without
// it stored entities can not be resampled.
func New(cfg Config, history HistoryReader) (Resampler, error) {
	app := &resamplerApp{
		tenants: make(map[string][]*entityType),
		history: history,
	}

	for _, tenant := range cfg.Tenants {
		types := []*entityType{}

		for _, info := range tenant.EntityTypes {
			et, err := info.compile()
			if err != nil {
				return nil, fmt.Errorf("tenant %s: %w", tenant.ID, err)
			}
			types = append(types, et)
		}

		app.tenants[tenant.ID] = types
	}

	return app, nil
}

func (app *resamplerApp) Resample(ctx context.Context, tenant string, entity *temporal.EntityTemporal, interval time.Duration) (*temporal.EntityTemporal, error) {
	et, err := app.typeOf(tenant, entity.Type)
	if err != nil {
		return nil, err
	}

	interval, err = et.intervalOr(interval)
	if err != nil {
		return nil, err
	}

	tr, err := entity.Trajectory(et.schema)
	if err != nil {
		return nil, ngsierrors.NewBadRequestDataError(err.Error())
	}

	resampled, err := tr.Resample(interval)
	if err != nil {
		return nil, err
	}

	logging.GetFromContext(ctx).Debug("resampled entity", "entity_id", entity.ID, "points", tr.Len(), "resampled", resampled.Len())

	return temporal.FromTrajectory(entity.Type, entity.Context, resampled)
}

func (app *resamplerApp) ValueAt(ctx context.Context, tenant string, entity *temporal.EntityTemporal, when time.Time) (*temporal.EntityTemporal, error) {
	et, err := app.typeOf(tenant, entity.Type)
	if err != nil {
		return nil, err
	}

	tr, err := entity.Trajectory(et.schema)
	if err != nil {
		return nil, ngsierrors.NewBadRequestDataError(err.Error())
	}

	p, err := tr.Predict(when)
	if err != nil {
		return nil, err
	}

	return temporal.FromTrajectory(entity.Type, entity.Context, trajectory.New(entity.ID, p))
}

func (app *resamplerApp) ResampleStored(ctx context.Context, tenant, entityID string, from, to time.Time, interval time.Duration) (*temporal.EntityTemporal, error) {
	types, ok := app.tenants[tenant]
	if !ok {
		return nil, ngsierrors.NewUnknownTenantError(tenant)
	}

	if app.history == nil {
		return nil, ngsierrors.NewNotImplementedError("no temporal storage has been configured")
	}

	if to.Before(from) {
		return nil, ngsierrors.NewBadRequestDataError(fmt.Sprintf("endTimeAt %s is before timeAt %s", to.Format(time.RFC3339), from.Format(time.RFC3339)))
	}

	var et *entityType
	for _, t := range types {
		if t.matches(entityID) {
			et = t
			break
		}
	}

	if et == nil {
		return nil, ngsierrors.NewNotFoundError(fmt.Sprintf("no entity type configured for entity %s", entityID))
	}

	interval, err := et.intervalOr(interval)
	if err != nil {
		return nil, err
	}

	observations, err := app.history.History(ctx, entityID, from, to, et.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", entityID, err)
	}

	if len(observations) == 0 {
		return nil, ngsierrors.NewNotFoundError(fmt.Sprintf("no history found for entity %s", entityID))
	}

	tr := trajectory.FromObservations(entityID, et.schema, observations...)

	resampled, err := tr.Resample(interval)
	if err != nil {
		return nil, err
	}

	logging.GetFromContext(ctx).Debug("resampled stored entity", "entity_id", entityID, "observations", len(observations), "resampled", resampled.Len())

	return temporal.FromTrajectory(et.name, nil, resampled)
}

// typeOf returns the configuration of an entity type. Types that have not been configured
// are accepted with an empty schema and no default interval.
func (app *resamplerApp) typeOf(tenant, typeName string) (*entityType, error) {
	types, ok := app.tenants[tenant]
	if !ok {
		return nil, ngsierrors.NewUnknownTenantError(tenant)
	}

	for _, et := range types {
		if et.name == typeName {
			return et, nil
		}
	}

	return &entityType{name: typeName, schema: trajectory.Schema{}}, nil
}

func (et *entityType) intervalOr(interval time.Duration) (time.Duration, error) {
	if interval < 0 {
		return 0, fmt.Errorf("%w: %s", trajectory.ErrInvalidInterval, interval)
	}

	if interval == 0 {
		interval = et.interval
	}

	if interval == 0 {
		return 0, ngsierrors.NewBadRequestDataError(fmt.Sprintf("no interval given and none configured for type %s", et.name))
	}

	return interval, nil
}

// IsContractViolation reports whether err was caused by values or intervals that can not
// be combined, as opposed to a failure of the service itself
func IsContractViolation(err error) bool {
	return errors.Is(err, trajectory.ErrInvalidInterval) ||
		errors.Is(err, trajectory.ErrTooFewPoints) ||
		errors.Is(err, trajectory.ErrEmptyTrajectory) ||
		errors.Is(err, value.ErrKindMismatch) ||
		errors.Is(err, value.ErrUnsupportedKind) ||
		errors.Is(err, value.ErrInvalidInterpolant) ||
		errors.Is(err, value.ErrOutOfRange)
}
