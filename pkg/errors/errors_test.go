package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeTransport, cause, "failed to fetch")

	if err.Code != ErrCodeTransport {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeTransport)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	if !Is(New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput) {
		t.Error("Is should match the error's own code")
	}
	if Is(New(ErrCodeInvalidInput, "test"), ErrCodeTransport) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), ErrCodeInvalidInput) {
		t.Error("Is should not match a plain error")
	}

	// Wrapped *Error should still be found through the chain.
	inner := New(ErrCodeCorruptCache, "bad cache")
	outer := fmt.Errorf("outer: %w", inner)
	if !Is(outer, ErrCodeCorruptCache) {
		t.Error("Is should unwrap to find the coded error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "slow")); got != ErrCodeTimeout {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeTimeout)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode of plain error = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodePackageNotFound, "no such package: rails")
	if got := UserMessage(err); got != "no such package: rails" {
		t.Errorf("UserMessage = %q", got)
	}

	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage of plain error = %q", got)
	}
}

func TestCorruptCacheError(t *testing.T) {
	cause := errors.New("gob: unexpected EOF")
	err := &CorruptCacheError{Path: "/tmp/cache/specs.1", Err: cause}

	if err.Code() != ErrCodeCorruptCache {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeCorruptCache)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the decode error")
	}
	if !IsCorruptCache(fmt.Errorf("resolve index: %w", err)) {
		t.Error("IsCorruptCache should find a wrapped CorruptCacheError")
	}
	if IsCorruptCache(errors.New("plain")) {
		t.Error("IsCorruptCache should reject a plain error")
	}

	msg := err.Error()
	if msg != "corrupt cache file /tmp/cache/specs.1: gob: unexpected EOF" {
		t.Errorf("Error() = %q", msg)
	}
}

func TestValidatePackageName(t *testing.T) {
	valid := []string{"rails", "active-support", "nokogiri_ext", "a"}
	for _, name := range valid {
		if err := ValidatePackageName(name); err != nil {
			t.Errorf("ValidatePackageName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "../etc/passwd", "a/b", "a\\b", "bad\x00name", string(make([]byte, 300))}
	for _, name := range invalid {
		if err := ValidatePackageName(name); err == nil {
			t.Errorf("ValidatePackageName(%q) = nil, want error", name)
		}
	}
}
