// Package test contains helpers shared by the package tests. They report
// through the testing.T they are given and never stop the test early unless
// the comparison itself is impossible.
package test

import (
	"math"
	"testing"
)

// Equate fails the test if value is not equal to expected.
//
//	test.Equate(t, ctl.Phase(), engine.PhaseIdle)
func Equate[T comparable](t *testing.T, value, expected T) bool {
	t.Helper()
	if value != expected {
		t.Errorf("equation of type %T failed (%v - wanted %v)", value, value, expected)
		return false
	}
	return true
}

// ApproxEquate is Equate for floating point values. The tolerance is
// absolute.
func ApproxEquate(t *testing.T, value, expected, tolerance float64) bool {
	t.Helper()
	if math.IsNaN(value) || math.Abs(value-expected) > tolerance {
		t.Errorf("approximate equation failed (%f - wanted %f ±%f)", value, expected, tolerance)
		return false
	}
	return true
}

// ExpectSuccess fails the test if v is a non-nil error or a false bool.
func ExpectSuccess(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case nil:
		return true
	case bool:
		if !v {
			t.Errorf("expected success (bool)")
			return false
		}
	case error:
		if v != nil {
			t.Errorf("expected success (error: %v)", v)
			return false
		}
	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}

	return true
}

// ExpectFailure fails the test if v is a nil error or a true bool.
func ExpectFailure(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case nil:
		t.Errorf("expected failure (nil)")
		return false
	case bool:
		if v {
			t.Errorf("expected failure (bool)")
			return false
		}
	case error:
		if v == nil {
			t.Errorf("expected failure (error)")
			return false
		}
	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}

	return true
}
