package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/diwise/temporal-resampler/internal/pkg/application/resampler"
	"github.com/diwise/temporal-resampler/internal/pkg/presentation/api/auth"
	ngsierrors "github.com/diwise/temporal-resampler/pkg/ngsild/errors"
	"github.com/diwise/temporal-resampler/pkg/ngsild/types/temporal"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("temporal-resampler/api/temporal")

// NewResampleHandler handles POST requests with a temporal entity whose attribute
// instances should be resampled at a fixed interval
func NewResampleHandler(app resampler.Resampler, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		ctx, span := tracer.Start(ctx, "resample-temporal-entity",
			trace.WithAttributes(attribute.String(TraceAttributeNGSILDTenant, tenant)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		interval, err := durationParam(r, "interval")
		if err != nil {
			ngsierrors.ReportNewBadRequestData(w, err.Error(), traceID)
			return
		}

		entity, err := readEntity(r)
		if err != nil {
			ngsierrors.ReportNewInvalidRequest(w, err.Error(), traceID)
			return
		}

		span.SetAttributes(
			attribute.String(TraceAttributeEntityID, entity.ID),
			attribute.String(TraceAttributeEntityType, entity.Type),
		)

		err = authenticator.CheckAccess(ctx, r, tenant, []string{entity.Type})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			ngsierrors.ReportUnauthorizedRequest(w, "access denied", traceID)
			return
		}

		result, err := app.Resample(ctx, tenant, entity, interval)
		if err != nil {
			log.Error("failed to resample entity", "entity_id", entity.ID, "err", err.Error())
			mapResamplerToNGSILDError(w, err, traceID)
			return
		}

		err = writeEntity(w, r, result)
	})
}

// NewValueAtHandler handles POST requests with a temporal entity whose attributes should
// be interpolated, or extrapolated, at a certain point in time
func NewValueAtHandler(app resampler.Resampler, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		ctx, span := tracer.Start(ctx, "temporal-entity-value-at",
			trace.WithAttributes(attribute.String(TraceAttributeNGSILDTenant, tenant)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		when, err := timeParam(r, "timeAt")
		if err == nil && when.IsZero() {
			err = errors.New("timeAt is required")
		}
		if err != nil {
			ngsierrors.ReportNewBadRequestData(w, err.Error(), traceID)
			return
		}

		entity, err := readEntity(r)
		if err != nil {
			ngsierrors.ReportNewInvalidRequest(w, err.Error(), traceID)
			return
		}

		err = authenticator.CheckAccess(ctx, r, tenant, []string{entity.Type})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			ngsierrors.ReportUnauthorizedRequest(w, "access denied", traceID)
			return
		}

		result, err := app.ValueAt(ctx, tenant, entity, when)
		if err != nil {
			log.Error("failed to compute entity value", "entity_id", entity.ID, "err", err.Error())
			mapResamplerToNGSILDError(w, err, traceID)
			return
		}

		err = writeEntity(w, r, result)
	})
}

// NewResampleStoredHandler handles GET requests for the resampled temporal evolution of
// a stored entity
func NewResampleStoredHandler(app resampler.Resampler, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()
		tenant := GetTenantFromContext(ctx)
		entityID, _ := url.QueryUnescape(chi.URLParam(r, "entityId"))

		labeler, _ := otelhttp.LabelerFromContext(ctx)
		defer func() { addLabelIfError(err, labeler) }()

		ctx, span := tracer.Start(ctx, "resample-stored-entity",
			trace.WithAttributes(
				attribute.String(TraceAttributeNGSILDTenant, tenant),
				attribute.String(TraceAttributeEntityID, entityID),
			),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		from, err := timeParam(r, "timeAt")
		if err == nil && from.IsZero() {
			err = errors.New("timeAt is required")
		}
		if err != nil {
			ngsierrors.ReportNewBadRequestData(w, err.Error(), traceID)
			return
		}

		to, err := timeParam(r, "endTimeAt")
		if err != nil {
			ngsierrors.ReportNewBadRequestData(w, err.Error(), traceID)
			return
		}
		if to.IsZero() {
			to = time.Now().UTC()
		}

		interval, err := durationParam(r, "interval")
		if err != nil {
			ngsierrors.ReportNewBadRequestData(w, err.Error(), traceID)
			return
		}

		err = authenticator.CheckAccess(ctx, r, tenant, []string{})
		if err != nil {
			log.Warn("access not granted", "err", err.Error())
			ngsierrors.ReportUnauthorizedRequest(w, "access denied", traceID)
			return
		}

		result, err := app.ResampleStored(ctx, tenant, entityID, from, to, interval)
		if err != nil {
			log.Error("failed to resample stored entity", "entity_id", entityID, "err", err.Error())
			mapResamplerToNGSILDError(w, err, traceID)
			return
		}

		err = writeEntity(w, r, result)
	})
}

func readEntity(r *http.Request) (*temporal.EntityTemporal, error) {
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	return temporal.NewFromJSON(body)
}

func writeEntity(w http.ResponseWriter, r *http.Request, entity *temporal.EntityTemporal) error {
	responseBody, err := json.Marshal(entity)
	if err != nil {
		ngsierrors.ReportNewInternalError(w, err.Error(), traceID(r.Context()))
		return err
	}

	contentType := r.Header.Get("Accept")
	if contentType == "" || contentType == "*/*" {
		contentType = "application/ld+json"
	}

	w.Header().Add("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(responseBody)

	return nil
}

func durationParam(r *http.Request, name string) (time.Duration, error) {
	param := r.URL.Query().Get(name)
	if param == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(param)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 30s or 5m, not %q", name, param)
	}

	return d, nil
}

func timeParam(r *http.Request, name string) (time.Time, error) {
	param := r.URL.Query().Get(name)
	if param == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, param)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a RFC3339 timestamp, not %q", name, param)
	}

	return t, nil
}
