package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var ErrInternal = fmt.Errorf("internal error")
var ErrNotFound = fmt.Errorf("not found")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrInvalidRequest = fmt.Errorf("invalid request")
var ErrUnknownTenant = fmt.Errorf("unknown tenant")
var ErrNotImplemented = fmt.Errorf("not implemented")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewBadRequestDataError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

func NewInvalidRequestError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInvalidRequest,
	}
}

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewUnknownTenantError(tenant string) error {
	return &myError{
		msg:    fmt.Sprintf("unknown tenant %q", tenant),
		target: ErrUnknownTenant,
	}
}

func NewNotImplementedError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotImplemented,
	}
}

// ProblemDetails stores details about a certain problem according to RFC7807
// See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	Type() string
	Title() string
	Detail() string
	ResponseCode() int
	MarshalJSON() ([]byte, error)
	WriteResponse(w http.ResponseWriter)
}

// ProblemDetailsImpl is an implementation of the ProblemDetails interface
type ProblemDetailsImpl struct {
	typ     string
	title   string
	detail  string
	code    int
	traceID string
}

const (
	// ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"
)

func newProblem(typ, title, detail string, code int, traceID string) ProblemDetailsImpl {
	return ProblemDetailsImpl{
		typ:     "https://uri.etsi.org/ngsi-ld/errors/" + typ,
		title:   title,
		detail:  detail,
		code:    code,
		traceID: traceID,
	}
}

// BadRequestData reports that the request includes input data which does not meet the requirements of the operation
type BadRequestData struct {
	ProblemDetailsImpl
}

func NewBadRequestData(detail, traceID string) *BadRequestData {
	return &BadRequestData{newProblem("BadRequestData", "Bad Request Data", detail, http.StatusBadRequest, traceID)}
}

func ReportNewBadRequestData(w http.ResponseWriter, detail, traceID string) {
	NewBadRequestData(detail, traceID).WriteResponse(w)
}

// InvalidRequest reports that the request associated to the operation is syntactically
// invalid or includes wrong content
type InvalidRequest struct {
	ProblemDetailsImpl
}

func NewInvalidRequest(detail, traceID string) *InvalidRequest {
	return &InvalidRequest{newProblem("InvalidRequest", "Invalid Request", detail, http.StatusBadRequest, traceID)}
}

func ReportNewInvalidRequest(w http.ResponseWriter, detail, traceID string) {
	NewInvalidRequest(detail, traceID).WriteResponse(w)
}

// InternalError reports that there has been an error during the operation execution
type InternalError struct {
	ProblemDetailsImpl
}

func (ie InternalError) Error() string {
	return ie.detail
}

func NewInternalError(detail, traceID string) *InternalError {
	return &InternalError{newProblem("InternalError", "Internal Error", detail, http.StatusInternalServerError, traceID)}
}

func ReportNewInternalError(w http.ResponseWriter, detail, traceID string) {
	NewInternalError(detail, traceID).WriteResponse(w)
}

// NewNotImplemented reports an operation that this instance has not been configured to perform
func NewNotImplemented(detail, traceID string) *InternalError {
	return &InternalError{newProblem("InternalError", "Not Implemented", detail, http.StatusNotImplemented, traceID)}
}

func ReportNotImplemented(w http.ResponseWriter, detail, traceID string) {
	NewNotImplemented(detail, traceID).WriteResponse(w)
}

// NotFound reports that the request failed with a not found error of some kind
type NotFound struct {
	ProblemDetailsImpl
}

func NewNotFound(detail, traceID string) *NotFound {
	return &NotFound{newProblem("ResourceNotFound", "Not Found", detail, http.StatusNotFound, traceID)}
}

func ReportNotFoundError(w http.ResponseWriter, detail, traceID string) {
	NewNotFound(detail, traceID).WriteResponse(w)
}

type UnauthorizedRequest struct {
	ProblemDetailsImpl
}

func NewUnauthorizedRequest(detail, traceID string) *UnauthorizedRequest {
	return &UnauthorizedRequest{newProblem("UnauthorizedRequest", "Unauthorized Request", detail, http.StatusUnauthorized, traceID)}
}

func ReportUnauthorizedRequest(w http.ResponseWriter, detail, traceID string) {
	NewUnauthorizedRequest(detail, traceID).WriteResponse(w)
}

// UnknownTenant reports that the request tries to interact with an unknown tenant
type UnknownTenant struct {
	ProblemDetailsImpl
}

func NewUnknownTenant(detail, traceID string) *UnknownTenant {
	return &UnknownTenant{newProblem("NonexistentTenant", "Non Existent Tenant", detail, http.StatusNotFound, traceID)}
}

func ReportUnknownTenantError(w http.ResponseWriter, detail, traceID string) {
	NewUnknownTenant(detail, traceID).WriteResponse(w)
}

func (p *ProblemDetailsImpl) ContentType() string {
	return ProblemReportContentType
}

func (p *ProblemDetailsImpl) Type() string {
	return p.typ
}

func (p *ProblemDetailsImpl) Title() string {
	return p.title
}

func (p *ProblemDetailsImpl) Detail() string {
	return p.detail
}

func (p *ProblemDetailsImpl) MarshalJSON() ([]byte, error) {
	var traceID *string

	if p.traceID != "" {
		traceID = &p.traceID
	}

	return json.Marshal(struct {
		Type    string  `json:"type"`
		Title   string  `json:"title"`
		Detail  string  `json:"detail"`
		TraceID *string `json:"traceID,omitempty"`
	}{
		Type:    p.typ,
		Title:   p.title,
		Detail:  p.detail,
		TraceID: traceID,
	})
}

// ResponseCode returns the HTTP response code to be used when returning a specific problem
func (p *ProblemDetailsImpl) ResponseCode() int {
	if p.code != 0 {
		return p.code
	}

	return http.StatusBadRequest
}

func (p *ProblemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
