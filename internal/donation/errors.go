package donation

import (
	"errors"
	"fmt"

	"github.com/foodshare/foodshare/internal/models"
)

// Kind classifies a failed operation
type Kind string

const (
	KindValidation           Kind = "ValidationError"
	KindUploadFailure        Kind = "UploadFailure"
	KindInvalidUser          Kind = "InvalidUser"
	KindPostNotFound         Kind = "PostNotFound"
	KindDuplicateClaim       Kind = "DuplicateClaim"
	KindInsufficientQuantity Kind = "InsufficientQuantity"
	KindStorageFailure       Kind = "StorageFailure"
	KindForbidden            Kind = "Forbidden"
	KindInvalidCredentials   Kind = "InvalidCredentials"
	KindUnauthenticated      Kind = "Unauthenticated"
)

// Error is the tagged failure returned by every donation operation.
// Leftover and Requested are set only for KindInsufficientQuantity,
// Image (1-based) only for KindUploadFailure.
type Error struct {
	Kind      Kind
	Message   string
	Leftover  models.Quantity
	Requested models.Quantity
	Image     int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindStorageFailure {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDuplicateClaim) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrUploadFailure        = &Error{Kind: KindUploadFailure}
	ErrInvalidUser          = &Error{Kind: KindInvalidUser}
	ErrPostNotFound         = &Error{Kind: KindPostNotFound}
	ErrDuplicateClaim       = &Error{Kind: KindDuplicateClaim}
	ErrInsufficientQuantity = &Error{Kind: KindInsufficientQuantity}
	ErrStorageFailure       = &Error{Kind: KindStorageFailure}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrInvalidCredentials   = &Error{Kind: KindInvalidCredentials}
	ErrUnauthenticated      = &Error{Kind: KindUnauthenticated}
)

// KindOf returns the kind of err, or KindStorageFailure for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageFailure
}

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func invalidUser(id string) *Error {
	return &Error{Kind: KindInvalidUser, Message: fmt.Sprintf("invalid user id %q", id)}
}

func postNotFound(id string) *Error {
	return &Error{Kind: KindPostNotFound, Message: fmt.Sprintf("post %s not found", id)}
}

func duplicateClaim() *Error {
	return &Error{Kind: KindDuplicateClaim, Message: "you have already claimed this post"}
}

func insufficientQuantity(leftover, requested models.Quantity, unit string) *Error {
	return &Error{
		Kind:      KindInsufficientQuantity,
		Message:   fmt.Sprintf("only %s %s left, requested %s", leftover, unit, requested),
		Leftover:  leftover,
		Requested: requested,
	}
}

func uploadFailure(index int, err error) *Error {
	return &Error{
		Kind:    KindUploadFailure,
		Message: fmt.Sprintf("failed to upload image %d", index),
		Image:   index,
		Err:     err,
	}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// storageFailure hides the cause from the caller-facing message
func storageFailure(err error) *Error {
	return &Error{Kind: KindStorageFailure, Message: "something went wrong, please try again", Err: err}
}

// InvalidCredentials is returned by login for unknown email or wrong password
func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
}

// Unauthenticated is returned when an operation needs a signed-in viewer
func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "you must be logged in"}
}

// Validation builds a ValidationError for callers outside the package
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Storage wraps a persistence failure for callers outside the package
func Storage(err error) *Error {
	return storageFailure(err)
}
