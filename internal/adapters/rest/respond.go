package rest

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

const (
	codeInvalidArgument  = "INVALID_ARGUMENT"
	codeInsufficientData = "INSUFFICIENT_DATA"
	codeUpstream         = "UPSTREAM_ERROR"
	codeUnauthorized     = "UNAUTHORIZED"
	codeAuthDenied       = "AUTHORIZATION_DENIED"
	codeInvalidState     = "INVALID_STATE"
	codeInternal         = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// unauthorizedError is implemented by catalog errors caused by a rejected token.
type unauthorizedError interface {
	Unauthorized() bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeErrorWithCode(w, status, msg, codeFor(status))
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return codeInvalidArgument
	case http.StatusUnauthorized:
		return codeUnauthorized
	case http.StatusUnprocessableEntity:
		return codeInsufficientData
	case http.StatusBadGateway:
		return codeUpstream
	default:
		return codeInternal
	}
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var ue unauthorizedError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ue) && ue.Unauthorized():
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUpstreamFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
