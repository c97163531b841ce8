// Package testutil provides shared fixtures and assertions for package tests.
package testutil

import (
	"encoding/json"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FixedTime is the clock reading used by deterministic tests.
var FixedTime = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// FixedClock returns a clock that always reads FixedTime.
func FixedClock() func() time.Time {
	return func() time.Time { return FixedTime }
}

// DemoSupplies returns the inventory shown before any thread is established.
func DemoSupplies() []entities.SupplyItem {
	return []entities.SupplyItem{
		{ID: "1", Name: "Sterile Bandages", Count: 45, Category: entities.CategoryMedical},
		{ID: "2", Name: "O+ Blood Packs", Count: 2, Category: entities.CategoryMedical, Critical: true},
	}
}

// DemoMarkers returns two valid markers around the default map center.
func DemoMarkers() []entities.MapMarker {
	return []entities.MapMarker{
		{Lat: 12.9716, Lng: 77.5946, Title: "Zone A", Type: "fire", Severity: "critical"},
		{Lat: 12.9352, Lng: 77.6245, Title: "Zone B", Type: "structural", Severity: "high"},
	}
}

// RequireSchemaError asserts err carries a SchemaValidationError for field and returns it.
func RequireSchemaError(t *testing.T, err error, field string) *errors.SchemaValidationError {
	t.Helper()

	var sve *errors.SchemaValidationError
	require.True(t, stdErrors.As(err, &sve), "expected schema validation error, got %v", err)
	assert.Equal(t, field, sve.Field)
	return sve
}

// AssertJSONEqual compares the JSON encoding of actual against expected, ignoring formatting.
func AssertJSONEqual(t *testing.T, expected string, actual any, msgAndArgs ...any) {
	t.Helper()

	data, err := json.Marshal(actual)
	require.NoError(t, err, "actual value does not encode")
	assert.JSONEq(t, expected, string(data), msgAndArgs...)
}

// AssertDurationWithin asserts that a duration is within a tolerance of an expected value.
func AssertDurationWithin(t *testing.T, expected, actual, tolerance time.Duration, msgAndArgs ...any) {
	t.Helper()

	diff := expected - actual
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, tolerance, msgAndArgs...)
}
