package donation

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("submit: %w", storageFailure(cause))

	if !errors.Is(err, ErrStorageFailure) {
		t.Error("expected errors.Is to match StorageFailure")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("StorageFailure must not match ValidationError")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable with errors.Is")
	}
	if KindOf(err) != KindStorageFailure {
		t.Errorf("KindOf() = %s", KindOf(err))
	}
	if got := storageFailure(cause).Error(); got != "StorageFailure: something went wrong, please try again" {
		t.Errorf("storage message leaks cause: %q", got)
	}
	if KindOf(errors.New("plain")) != KindStorageFailure {
		t.Error("foreign errors are storage failures")
	}
}

func TestInsufficientQuantityMessage(t *testing.T) {
	err := insufficientQuantity(qty(1.5), qty(2), "kg")
	if err.Message != "only 1.5 kg left, requested 2" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if !errors.Is(err, ErrInsufficientQuantity) {
		t.Error("expected InsufficientQuantity kind")
	}
}
