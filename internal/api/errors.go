package api

import (
	"errors"
	"fmt"

	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/internal/models"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

func invalidParams(format string, args ...interface{}) *Error {
	return NewError(ErrInvalidParams, fmt.Sprintf(format, args...))
}

// Application error codes, one per donation.Kind
const (
	ErrValidation           = -32001
	ErrUploadFailure        = -32002
	ErrInvalidUser          = -32003
	ErrPostNotFound         = -32004
	ErrDuplicateClaim       = -32005
	ErrInsufficientQuantity = -32006
	ErrStorageFailure       = -32007
	ErrForbidden            = -32008
	ErrInvalidCredentials   = -32009
	ErrUnauthenticated      = -32010
	ErrRateLimited          = -32029
)

var kindCodes = map[donation.Kind]int{
	donation.KindValidation:           ErrValidation,
	donation.KindUploadFailure:        ErrUploadFailure,
	donation.KindInvalidUser:          ErrInvalidUser,
	donation.KindPostNotFound:         ErrPostNotFound,
	donation.KindDuplicateClaim:       ErrDuplicateClaim,
	donation.KindInsufficientQuantity: ErrInsufficientQuantity,
	donation.KindStorageFailure:       ErrStorageFailure,
	donation.KindForbidden:            ErrForbidden,
	donation.KindInvalidCredentials:   ErrInvalidCredentials,
	donation.KindUnauthenticated:      ErrUnauthenticated,
}

// ErrorData is the data member of every failed response
type ErrorData struct {
	Success   bool             `json:"success"`
	Kind      string           `json:"kind,omitempty"`
	Error     string           `json:"error"`
	Leftover  *models.Quantity `json:"leftover,omitempty"`
	Requested *models.Quantity `json:"requested,omitempty"`
	Image     int              `json:"image,omitempty"`
}

// toRPCError converts a handler error into the wire error object.
// Unknown errors are reported as storage failures without their cause.
func toRPCError(err error) *JSONRPCError {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return &JSONRPCError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Data:    ErrorData{Error: apiErr.Message},
		}
	}

	var de *donation.Error
	if !errors.As(err, &de) {
		de = donation.Storage(err)
	}

	data := ErrorData{
		Kind:  string(de.Kind),
		Error: de.Message,
		Image: de.Image,
	}
	if de.Kind == donation.KindInsufficientQuantity {
		leftover, requested := de.Leftover, de.Requested
		data.Leftover = &leftover
		data.Requested = &requested
	}

	return &JSONRPCError{
		Code:    kindCodes[de.Kind],
		Message: de.Message,
		Data:    data,
	}
}
