// Package errors tests for the shared error codes.
package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

// TestErrorFormatting verifies the code and message render.
func TestErrorFormatting(t *testing.T) {
	err := New(ErrNotFound, "pet not cached")

	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("error = %q, want code in message", err.Error())
	}
	if !strings.Contains(err.Error(), "pet not cached") {
		t.Errorf("error = %q, want message", err.Error())
	}
}

// TestWrapPreservesCause verifies Unwrap reaches the original error.
func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrDatabase, "failed to enqueue action", cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error = %q, want cause in message", err.Error())
	}
}

// TestIsMatchesCode verifies code matching.
func TestIsMatchesCode(t *testing.T) {
	err := New(ErrSyncFailed, "refresh aborted")

	if !Is(err, ErrSyncFailed) {
		t.Error("Is should match the carried code")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is should reject a different code")
	}
	if Is(stderrors.New("plain"), ErrSyncFailed) {
		t.Error("Is should reject non-AppError values")
	}
	if Is(nil, ErrSyncFailed) {
		t.Error("Is should reject nil")
	}
}
