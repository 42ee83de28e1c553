package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the caller supplied invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState indicates an illegal transition for the entity's current status.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrShiftConflict indicates an attempt to open a shift while one is already open.
	ErrShiftConflict = errors.New("a shift is already open")
	// ErrAuthentication indicates password verification failed.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserSafeMessage returns a message that can be shown to an end user. Known
// domain errors carry actionable text; anything else collapses to a generic
// message so storage details never leak to the cashier screen.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrInvalidState):
		return err.Error()
	case errors.Is(err, ErrShiftConflict):
		return "A shift is already open. Close it before opening another."
	case errors.Is(err, ErrAuthentication):
		return "Password verification failed."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	default:
		return "The operation could not be completed. Please retry."
	}
}
