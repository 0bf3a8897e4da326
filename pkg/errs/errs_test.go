package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusAndMessage(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{NotFound("not found"), 404, "not found"},
		{Invalid("bad input"), 400, "bad input"},
		{Unauthorized("login required"), 401, "login required"},
		{Forbidden("access to the resource is denied"), 403, "access to the resource is denied"},
		{Conflict("transaction conflict"), 409, "transaction conflict"},
		{Internal("deserialize failed"), 500, "deserialize failed"},
		{New(418, "teapot"), 418, "teapot"},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.status {
			t.Fatalf("StatusOf(%v) = %d; want %d", tc.err, got, tc.status)
		}
		if got := MessageOf(tc.err); got != tc.msg {
			t.Fatalf("MessageOf(%v) = %q; want %q", tc.err, got, tc.msg)
		}
	}
}

func TestNonDomainErrorsDoNotLeak(t *testing.T) {
	err := fmt.Errorf("pebble: corruption in L0 file 000042")
	if StatusOf(err) != 500 {
		t.Fatalf("StatusOf = %d", StatusOf(err))
	}
	if MessageOf(err) != "internal error" {
		t.Fatalf("MessageOf = %q", MessageOf(err))
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("x")) {
		t.Fatal("NotFound not recognized")
	}
	if IsNotFound(Forbidden("x")) {
		t.Fatal("Forbidden recognized as not found")
	}
	if IsNotFound(errors.New("x")) {
		t.Fatal("plain error recognized as not found")
	}
	if IsNotFound(nil) {
		t.Fatal("nil recognized as not found")
	}
}
