package custom_error

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to handlers. Internal detail stays in logs.
var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSiteNotFound       = errors.New("site not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyProcessed   = errors.New("request already processed")
	ErrVersionConflict    = errors.New("resource was modified concurrently")
)

type CustomError interface {
	Error() string
}

type UniqueViolationError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23505")
}

type ForeignKeyViolationError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23503")
}

func (f *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", f.message, f.code)
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", e.message, e.code)
}

func WrapDBError(message, code string) CustomError {
	switch code {
	case "23505":
		return &UniqueViolationError{
			message: message,
			code:    code,
		}
	case "23503":
		return &ForeignKeyViolationError{
			message: "Value is already used by other resources " + message,
			code:    code,
		}
	default:
		return fmt.Errorf("uncategorized error occurred with code %s: %s", code, message)
	}
}
