package logging

import (
	"errors"
	"testing"
)

func TestOperationErrorMessageIncludesRequestID(t *testing.T) {
	err := NewOperationError("repository.save_log", "req-42", errors.New("boom"))
	want := "repository.save_log (request_id=req-42): boom"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestOperationErrorMessageWithoutRequestID(t *testing.T) {
	err := NewOperationError("dlpclient.new", "", errors.New("boom"))
	want := "dlpclient.new: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestNewOperationErrorNilPassthrough(t *testing.T) {
	if err := NewOperationError("noop", "req", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewOperationError("op", "req", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "op" || opErr.RequestID != "req" {
		t.Fatalf("unexpected metadata: %+v", opErr)
	}
}
