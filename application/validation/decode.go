// Package validation decodes schema-validated argument maps into typed Go
// values and enforces struct-level invariants with go-playground/validator.
package validation

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/resq-ai/resq-core/domain/errors"
)

// validate is a package-level singleton; building a validator is expensive
// and it caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names as they appear on the wire.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Decode converts a validated argument map into target (a pointer to a struct)
// and then runs the struct's `validate` tags.
// It first marshals the map to JSON, then unmarshals it into the target struct,
// and finally runs the validator on the struct.
func Decode(args map[string]any, target any) error {
	jsonBytes, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal arguments into %T: %w", target, err)
	}

	return Struct(target)
}

// Struct validates v (a struct or pointer to struct) against its `validate` tags.
// The first violation is reported as a SchemaValidationError.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return toSchemaError(err)
	}
	return nil
}

// Slice validates every element of items, failing on the first invalid one.
func Slice[T any](field string, items []T) error {
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			se := toSchemaError(err)
			var sve *errors.SchemaValidationError
			if stdErrors.As(se, &sve) {
				sve.Field = fmt.Sprintf("%s[%d].%s", field, i, sve.Field)
			}
			return se
		}
	}
	return nil
}

func toSchemaError(err error) error {
	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}

	fe := verrs[0]
	expected := fe.Tag()
	if fe.Param() != "" {
		expected = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return &errors.SchemaValidationError{
		Field:    fieldPath(fe.Namespace()),
		Expected: expected,
		Actual:   fmt.Sprintf("%v", fe.Value()),
	}
}

// fieldPath drops the root struct name from a validator namespace,
// turning "Props.initialItems[0].category" into "initialItems[0].category".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
