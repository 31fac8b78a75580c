package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

// Request-level errors. Each maps to exactly one status code.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

// apiError carries the message shown to the client.
type apiError struct {
	kind   error
	detail string
}

func (e *apiError) Error() string { return e.detail }
func (e *apiError) Unwrap() error { return e.kind }

func validationError(detail string) error { return &apiError{kind: ErrValidation, detail: detail} }
func conflictError(detail string) error   { return &apiError{kind: ErrConflict, detail: detail} }
func unauthenticated(detail string) error { return &apiError{kind: ErrUnauthenticated, detail: detail} }
func notFoundError(detail string) error   { return &apiError{kind: ErrNotFound, detail: detail} }

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Anything outside the taxonomy is logged and
// reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		if apiErr.kind == ErrUnauthenticated {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		utils.JSONError(w, statusFor(err), apiErr.detail)
		return
	}

	logger.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	utils.JSONError(w, http.StatusInternalServerError, "internal error")
}

// noteNotFound folds store.ErrNotFound into the API's 404.
func noteNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFoundError("Note not found")
	}
	return err
}
