package dto

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
)

// Client-facing messages for failures whose raw text must stay internal.
const (
	MsgTimeout         = "Database query timed out. Try using pagination or narrowing your search criteria."
	MsgTimeoutSolution = "Try adding pagination parameters (limit and page) or use more specific search terms."
	MsgUnavailable     = "Service temporarily unavailable. Please try again later."
	MsgConfiguration   = "Server configuration error. Please contact support."
	MsgInternal        = "Internal server error"
)

// ErrorResponse is an RFC 9457 Problem Details body. Success and Message
// keep the envelope that every other response of the API carries.
type ErrorResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Solution string        `json:"solution,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail represents a single field-level validation error within
// an ErrorResponse.
type ErrorDetail struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

type detailsKey struct{}

// WithDetails marks ctx as allowed to carry raw error text in responses.
// Only development deployments set it.
func WithDetails(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, detailsKey{}, enabled)
}

// DetailsEnabled reports whether raw error text may be returned.
func DetailsEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(detailsKey{}).(bool)
	return enabled
}

// NewErrorResponse builds the problem body for err. Client errors carry
// their own text; server errors get a fixed message and expose the raw
// error only when details are enabled on the request context.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	status := StatusFor(err)

	resp := ErrorResponse{
		Success:  false,
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Instance: r.RequestURI,
	}

	switch {
	case status < http.StatusInternalServerError:
		resp.Message = err.Error()
		resp.Detail = err.Error()
	case status == http.StatusGatewayTimeout:
		resp.Message = MsgTimeout
		resp.Solution = MsgTimeoutSolution
	case status == http.StatusServiceUnavailable:
		resp.Message = MsgUnavailable
	case errors.Is(err, domain.ErrConfiguration):
		resp.Message = MsgConfiguration
	default:
		resp.Message = MsgInternal
	}

	if status >= http.StatusInternalServerError && DetailsEnabled(r.Context()) {
		resp.Detail = err.Error()
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = validationFieldsToDetails(verr.Fields)
	}

	return resp
}

// WriteErrorResponse writes the problem body for err with the matching
// status code and an application/problem+json content type.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	resp := NewErrorResponse(r, err)

	logger := logging.FromContext(r.Context())
	if resp.Status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.Int("status", resp.Status),
			slog.Any("error", err),
		)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(resp.Status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logger.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

// StatusFor maps domain errors to HTTP status codes. A caller whose own
// context expired is reported as a timeout.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// validationFieldsToDetails converts domain validation fields to sorted
// ErrorDetail entries.
func validationFieldsToDetails(fields map[string]string) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(fields))
	for field, msg := range fields {
		details = append(details, ErrorDetail{
			Location: "body." + field,
			Message:  msg,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Location < details[j].Location
	})
	return details
}
