package httpx

import (
	"errors"
	"net/http"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Storage
// errors fall through to a generic 500 without leaking internals; the caller
// must assume its copy of the entity is stale and reload before retrying.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrShiftConflict):
		Problem(w, http.StatusConflict, "Shift Conflict", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrAuthentication), errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
	}
}
