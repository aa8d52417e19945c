// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// IntakePayloadSchema describes the body accepted by POST /webhook/intake and the
// variables of the analyze-workforce job. The three data objects stay loosely typed:
// unknown fields inside them only lower the reliability score.
const IntakePayloadSchema = `{
  "type": "object",
  "required": ["jobTitle"],
  "properties": {
    "jobTitle":     {"type": "string", "minLength": 1, "maxLength": 200},
    "documentData": {"type": ["object", "null"]},
    "marketData":   {"type": ["object", "null"]},
    "manualData":   {"type": ["object", "null"]},
    "description":  {"type": "string"},
    "postingUrl":   {"type": "string"},
    "companyInfo":  {"type": ["string", "object"]},
    "notifyEmail":  {"type": "string", "format": "email"}
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// SchemaValidator holds a compiled JSON schema. It is safe for concurrent use.
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

// NewSchemaValidator compiles a schema given as a JSON string.
func NewSchemaValidator(schemaJSON string) (*SchemaValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// NewSchemaValidatorFromMap compiles a schema held as decoded JSON, as found in the
// activity registry.
func NewSchemaValidatorFromMap(schemaMap map[string]interface{}) (*SchemaValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// MustIntakeValidator panics if the built-in intake schema does not compile.
func MustIntakeValidator() *SchemaValidator {
	v, err := NewSchemaValidator(IntakePayloadSchema)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateBytes validates a raw JSON document.
func (v *SchemaValidator) ValidateBytes(document []byte) *ValidationResult {
	return v.validate(gojsonschema.NewBytesLoader(document))
}

// ValidateValue validates an already decoded document.
func (v *SchemaValidator) ValidateValue(document interface{}) *ValidationResult {
	return v.validate(gojsonschema.NewGoLoader(document))
}

func (v *SchemaValidator) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "MALFORMED_DOCUMENT",
			}},
		}
	}

	errors := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errors = append(errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errors,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Summary joins all messages into one line for API responses.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var (
	taskTypePattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)*$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateTaskTypeNaming checks the kebab-case convention used for Zeebe task types.
func ValidateTaskTypeNaming(taskType string) error {
	if !taskTypePattern.MatchString(taskType) {
		return fmt.Errorf("task type must be lowercase kebab-case (e.g. analyze-workforce), got %q", taskType)
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
