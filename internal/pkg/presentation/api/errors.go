package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/diwise/temporal-resampler/internal/pkg/application/resampler"
	ngsierrors "github.com/diwise/temporal-resampler/pkg/ngsild/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func mapResamplerToNGSILDError(w http.ResponseWriter, err error, traceID string) {
	switch {
	case errors.Is(err, ngsierrors.ErrUnknownTenant):
		ngsierrors.ReportUnknownTenantError(w, err.Error(), traceID)
	case errors.Is(err, ngsierrors.ErrNotFound):
		ngsierrors.ReportNotFoundError(w, err.Error(), traceID)
	case errors.Is(err, ngsierrors.ErrInvalidRequest):
		ngsierrors.ReportNewInvalidRequest(w, err.Error(), traceID)
	case errors.Is(err, ngsierrors.ErrBadRequest), resampler.IsContractViolation(err):
		ngsierrors.ReportNewBadRequestData(w, err.Error(), traceID)
	case errors.Is(err, ngsierrors.ErrNotImplemented):
		ngsierrors.ReportNotImplemented(w, err.Error(), traceID)
	default:
		ngsierrors.ReportNewInternalError(w, err.Error(), traceID)
	}
}

func addLabelIfError(err error, labeler *otelhttp.Labeler) {
	if err != nil && labeler != nil {
		labeler.Add(attribute.Bool("error", true))
	}
}

func traceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
