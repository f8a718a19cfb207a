package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-winter/framework/container"
	"github.com/km-arc/go-winter/framework/validation"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with JSON helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ValidationError sends 422 with the error bag.
func (res *Response) ValidationError(errs *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errs)
}

// Fail maps an error to a status: missing beans are 404, ambiguous or
// mismatched lookups 409, validation failures 422, everything else 500.
func (res *Response) Fail(err error) {
	var verrs *validation.Errors
	switch {
	case errors.As(err, &verrs):
		res.ValidationError(verrs)
	case errors.Is(err, container.ErrNoSuchBean):
		res.NotFound(err.Error())
	case errors.Is(err, container.ErrNoUniqueMatch), errors.Is(err, container.ErrTypeMismatch):
		res.Error(http.StatusConflict, err.Error())
	default:
		res.ServerError(err.Error())
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
