// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("error = %v, want %v", err, target)
	}
}

// AssertFloatsNear checks that got and want have the same length and differ
// by at most tol element-wise.
func AssertFloatsNear(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("len = %d, want %d", len(got), len(want))
		return
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("[%d] = %g, want %g (tol %g)", i, got[i], want[i], tol)
		}
	}
}

// AssertColumnSeparated checks that consecutive values of column increase by
// at least sep.
func AssertColumnSeparated(t *testing.T, column []float64, sep float64) {
	t.Helper()
	for k := 0; k+1 < len(column); k++ {
		if !(column[k+1] >= column[k]+sep) {
			t.Errorf("boundary %d: %g is not at least %g below %g", k+1, column[k+1], sep, column[k])
		}
	}
}

// TempDBPath returns a sqlite path inside a per-test temporary directory.
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}
