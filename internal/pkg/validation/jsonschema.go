package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaError lists the violations found by ValidateJSONAgainstSchema
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

// ValidateJSONSchema checks that schema itself is a loadable JSON Schema document
func ValidateJSONSchema(schema json.RawMessage) error {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema)); err != nil {
		return fmt.Errorf("invalid JSON schema: %w", err)
	}
	return nil
}

// ValidateJSONAgainstSchema validates a raw JSON value against a raw JSON Schema.
// A *SchemaError is returned when the document is well formed but does not conform.
func ValidateJSONAgainstSchema(value, schema json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value is not valid JSON")
	}
	if len(schema) == 0 {
		return nil
	}

	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(value))
	if err != nil {
		return fmt.Errorf("invalid JSON schema: %w", err)
	}
	if res.Valid() {
		return nil
	}

	violations := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		violations = append(violations, e.String())
	}
	return &SchemaError{Violations: violations}
}
