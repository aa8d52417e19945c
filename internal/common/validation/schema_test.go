// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntakeValidator(t *testing.T) {
	v := MustIntakeValidator()

	tests := []struct {
		name       string
		body       string
		valid      bool
		errorField string
	}{
		{
			name:  "minimal payload",
			body:  `{"jobTitle": "Data Engineer"}`,
			valid: true,
		},
		{
			name:  "full payload",
			body:  `{"jobTitle": "Nurse", "documentData": {"jobTitle": "Nurse"}, "marketData": null, "manualData": {}, "notifyEmail": "hr@example.com"}`,
			valid: true,
		},
		{
			name:       "missing job title",
			body:       `{"documentData": {}}`,
			errorField: "(root)",
		},
		{
			name:       "empty job title",
			body:       `{"jobTitle": ""}`,
			errorField: "jobTitle",
		},
		{
			name:       "document data must be an object",
			body:       `{"jobTitle": "Nurse", "documentData": [1, 2]}`,
			errorField: "documentData",
		},
		{
			name:       "malformed email",
			body:       `{"jobTitle": "Nurse", "notifyEmail": "not-an-email"}`,
			errorField: "notifyEmail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateBytes([]byte(tt.body))
			assert.Equal(t, tt.valid, result.Valid, result.Summary())
			if !tt.valid {
				assert.True(t, result.HasErrors(tt.errorField), result.Summary())
			}
		})
	}
}

func TestSchemaValidator_MalformedJSON(t *testing.T) {
	result := MustIntakeValidator().ValidateBytes([]byte(`{"jobTitle": `))

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "MALFORMED_DOCUMENT", result.Errors[0].Code)
}

func TestNewSchemaValidatorFromMap(t *testing.T) {
	v, err := NewSchemaValidatorFromMap(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"analysisId"},
	})
	require.NoError(t, err)

	assert.True(t, v.ValidateValue(map[string]interface{}{"analysisId": "a-1"}).Valid)
	assert.False(t, v.ValidateValue(map[string]interface{}{}).Valid)

	_, err = NewSchemaValidatorFromMap(map[string]interface{}{"type": 12})
	assert.Error(t, err)
}

func TestValidateTaskTypeNaming(t *testing.T) {
	assert.NoError(t, ValidateTaskTypeNaming("analyze-workforce"))
	assert.NoError(t, ValidateTaskTypeNaming("send-report"))
	assert.Error(t, ValidateTaskTypeNaming("Analyze_Workforce"))
	assert.Error(t, ValidateTaskTypeNaming("send-report-"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("recruiter@example.nl"))
	assert.False(t, ValidateEmail("recruiter@"))
}
