package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestErrorsMatchTheirSentinels(t *testing.T) {
	is := is.New(t)

	err := NewUnknownTenantError("other")
	is.True(errors.Is(err, ErrUnknownTenant))
	is.True(!errors.Is(err, ErrNotFound))
	is.Equal(err.Error(), `unknown tenant "other"`)

	is.True(errors.Is(NewNotImplementedError("no storage"), ErrNotImplemented))
	is.True(errors.Is(NewBadRequestDataError("bad"), ErrBadRequest))
}

func TestProblemReportIsWritten(t *testing.T) {
	is := is.New(t)

	w := httptest.NewRecorder()
	ReportNewBadRequestData(w, "property \"speed\": kind mismatch", "abc123")

	is.Equal(w.Code, http.StatusBadRequest)
	is.Equal(w.Header().Get("Content-Type"), ProblemReportContentType)
	is.Equal(w.Body.String(), `{
  "type": "https://uri.etsi.org/ngsi-ld/errors/BadRequestData",
  "title": "Bad Request Data",
  "detail": "property \"speed\": kind mismatch",
  "traceID": "abc123"
}`)
}

func TestNotImplementedProblemReport(t *testing.T) {
	is := is.New(t)

	w := httptest.NewRecorder()
	ReportNotImplemented(w, "no temporal storage has been configured", "")

	is.Equal(w.Code, http.StatusNotImplemented)
	is.Equal(NewNotImplemented("x", "").Type(), "https://uri.etsi.org/ngsi-ld/errors/InternalError")
}
