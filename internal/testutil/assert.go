// Package testutil provides shared test assertions for the spartanchess backend.
package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// AssertEqual compares got and want using cmp.Diff and reports differences.
// The msgAndArgs are optional and provide additional context if the assertion fails.
func AssertEqual(t *testing.T, got, want interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		msg := formatMessage(msgAndArgs...)
		if msg != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", msg, diff)
		} else {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

// AssertNoError fails the test immediately if err is not nil.
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		msg := formatMessage(msgAndArgs...)
		if msg != "" {
			t.Fatalf("%s: unexpected error: %v", msg, err)
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

// AssertErrorIs fails if err does not wrap target.
func AssertErrorIs(t *testing.T, err, target error, msgAndArgs ...interface{}) {
	t.Helper()
	if !errors.Is(err, target) {
		msg := formatMessage(msgAndArgs...)
		if msg != "" {
			t.Errorf("%s: got error %v, want %v", msg, err, target)
		} else {
			t.Errorf("got error %v, want %v", err, target)
		}
	}
}

func AssertTrue(t *testing.T, condition bool, msgAndArgs ...interface{}) {
	t.Helper()
	if !condition {
		msg := formatMessage(msgAndArgs...)
		if msg != "" {
			t.Errorf("%s: expected true but got false", msg)
		} else {
			t.Error("expected true but got false")
		}
	}
}

func AssertFalse(t *testing.T, condition bool, msgAndArgs ...interface{}) {
	t.Helper()
	if condition {
		msg := formatMessage(msgAndArgs...)
		if msg != "" {
			t.Errorf("%s: expected false but got true", msg)
		} else {
			t.Error("expected false but got true")
		}
	}
}

func formatMessage(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if s, ok := msgAndArgs[0].(string); ok {
		if len(msgAndArgs) == 1 {
			return s
		}
		return fmt.Sprintf(s, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs[0])
}
