package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sirneij/cryptoflow/internal/http/response"
	"github.com/Sirneij/cryptoflow/internal/repository"
	"github.com/Sirneij/cryptoflow/internal/service"
	"github.com/Sirneij/cryptoflow/internal/session"
)

// writeError maps domain failures to HTTP statuses. Anything unmapped
// is an internal error: logged with its cause, reported without it.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidTag),
		errors.Is(err, session.ErrCodeInvalidOrExpired):
		response.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, session.ErrUnauthenticated):
		response.Error(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, repository.ErrEmailTaken):
		response.Error(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrQuestionNotFound),
		errors.Is(err, repository.ErrAnswerNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		response.Error(w, r, http.StatusInternalServerError, "something went wrong")
	}
}
