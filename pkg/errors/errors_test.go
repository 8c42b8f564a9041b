package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInsufficientStock, http.StatusConflict},
		{CodeExceedsPossession, http.StatusUnprocessableEntity},
		{CodeExceedsBalance, http.StatusUnprocessableEntity},
		{CodeInvalidTransition, http.StatusUnprocessableEntity},
		{CodeAlreadyFinalized, http.StatusUnprocessableEntity},
		{CodeDelivererLocked, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.status, meta.HTTPStatus)
		}
		if meta.Retryable {
			t.Fatalf("code %s must not be retryable", tc.code)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestAsUnwrapsNestedError(t *testing.T) {
	t.Parallel()

	inner := New(CodeExceedsBalance, "payment exceeds pending amount")
	wrapped := fmt.Errorf("register payment: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeExceedsBalance {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !HasCode(wrapped, CodeExceedsBalance) {
		t.Fatal("HasCode should match through wrapping")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "persist sale")
	if err.Unwrap() != cause {
		t.Fatal("expected cause to be preserved")
	}
	if err.Error() != "DEPENDENCY_ERROR: persist sale" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
