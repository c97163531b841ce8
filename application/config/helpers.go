package config

import (
	"github.com/resq-ai/resq-core/domain/errors"
)

// Args is a validated capability argument map, as produced by the schema validator.
type Args = map[string]any

// GetString extracts a string, returning (value, found).
func GetString(args Args, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt extracts an int, handling int, int64, and float64.
func GetInt(args Args, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetFloat extracts a float64, handling float64, int, and int64.
func GetFloat(args Args, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// GetBool extracts a bool, returning (value, found).
func GetBool(args Args, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetFloatSlice extracts a []float64 from a validated number array.
func GetFloatSlice(args Args, key string) ([]float64, bool) {
	arr, ok := args[key].([]any)
	if !ok {
		return nil, false
	}
	result := make([]float64, 0, len(arr))
	for _, item := range arr {
		f, ok := item.(float64)
		if !ok {
			return nil, false
		}
		result = append(result, f)
	}
	return result, true
}

// GetObjects extracts a list of objects from a validated object array.
func GetObjects(args Args, key string) ([]Args, bool) {
	arr, ok := args[key].([]any)
	if !ok {
		return nil, false
	}
	result := make([]Args, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		result = append(result, obj)
	}
	return result, true
}

// MustGetString extracts a required string or returns a SchemaValidationError.
func MustGetString(args Args, key string) (string, error) {
	s, ok := GetString(args, key)
	if !ok {
		return "", &errors.SchemaValidationError{Field: key, Expected: "string", Actual: "missing"}
	}
	return s, nil
}

// GetStringDefault extracts a string or returns the default value.
func GetStringDefault(args Args, key, defaultValue string) string {
	s, ok := GetString(args, key)
	if !ok || s == "" {
		return defaultValue
	}
	return s
}

// GetIntDefault extracts an int or returns the default value.
func GetIntDefault(args Args, key string, defaultValue int) int {
	i, ok := GetInt(args, key)
	if !ok {
		return defaultValue
	}
	return i
}

// GetFloatDefault extracts a float64 or returns the default value.
func GetFloatDefault(args Args, key string, defaultValue float64) float64 {
	f, ok := GetFloat(args, key)
	if !ok {
		return defaultValue
	}
	return f
}
