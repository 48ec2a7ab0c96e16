package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	reconciledomain "github.com/smallbiznis/norra/internal/reconcile/domain"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
)

// APIError is a transport error with a stable machine-readable code.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string { return e.Code }

var (
	ErrNotFound           = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	ErrServiceUnavailable = &APIError{Status: http.StatusServiceUnavailable, Code: "service_unavailable", Message: "service unavailable"}
)

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

// AbortWithError maps domain errors onto HTTP responses. Unknown errors come
// back as an opaque 500 so internals never leak to clients.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	var formatErr *reportdomain.UnrecognizedFormatError
	switch {
	case errors.Is(err, mrrdomain.ErrSnapshotNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "snapshot_not_found", "message": "no snapshot for the requested period"}})
	case errors.Is(err, mrrdomain.ErrInvalidPeriod):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_period", "message": "start must be before end"}})
	case errors.As(err, &formatErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{"code": "unrecognized_report_format", "message": formatErr.Error()}})
	case errors.Is(err, reportdomain.ErrUnrecognizedFormat):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{"code": "unrecognized_report_format", "message": "report format not recognized"}})
	case errors.Is(err, reportdomain.ErrSourceUnavailable):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "report_source_unavailable", "message": "report source could not be read"}})
	case errors.Is(err, reportdomain.ErrGranularityNeeded):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{"code": "subscription_granularity_required", "message": "movement needs subscription-level reports"}})
	case errors.Is(err, reconciledomain.ErrEmptyImport):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "empty_import", "message": "report contains no usable rows"}})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal", "message": "internal error"}})
	}
}
