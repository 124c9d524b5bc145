package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := NewInvalidIDError("abc")
	want := `[INVALID_ID] invalid id: "abc" is not an integer`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError_UnwrapsThroughErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("create student: %w", NewValidationError("enrol_date_future", "Enrol Date cannot be in the future."))

	var vErr *ValidationError
	if !errors.As(wrapped, &vErr) {
		t.Fatal("expected errors.As to find *ValidationError")
	}
	if vErr.Message != "Enrol Date cannot be in the future." {
		t.Errorf("Message = %q", vErr.Message)
	}
	if vErr.Rule != "enrol_date_future" {
		t.Errorf("Rule = %q", vErr.Rule)
	}
}

func TestDeleteOutcome_String(t *testing.T) {
	if DeleteRemoved.String() != "removed" {
		t.Errorf("DeleteRemoved.String() = %q", DeleteRemoved.String())
	}
	if DeleteNotFound.String() != "not_found" {
		t.Errorf("DeleteNotFound.String() = %q", DeleteNotFound.String())
	}
}
