package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ChatMessage(t *testing.T) {
	tests := []struct {
		name      string
		doc       map[string]interface{}
		wantValid bool
		badField  string
	}{
		{"message only", map[string]interface{}{"message": "find a doctor"}, true, ""},
		{"with user", map[string]interface{}{"message": "hi", "userId": "u1"}, true, ""},
		{"null user", map[string]interface{}{"message": "hi", "userId": nil}, true, ""},
		{"empty message", map[string]interface{}{"message": ""}, false, "message"},
		{"missing message", map[string]interface{}{"userId": "u1"}, false, ""},
		{"extra field", map[string]interface{}{"message": "hi", "admin": true}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(SchemaChatMessage, tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid, result.GetErrorMessages())
			if tt.badField != "" {
				assert.True(t, result.HasErrors(tt.badField), result.GetErrorMessages())
			}
		})
	}
}

func TestValidate_BookingStatus(t *testing.T) {
	result, err := Validate(SchemaBookingStatus, map[string]interface{}{"status": "confirmed"})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = Validate(SchemaBookingStatus, map[string]interface{}{"status": "archived"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("status"))
}

func TestValidate_BookingCreate(t *testing.T) {
	result, err := Validate(SchemaBookingCreate, map[string]interface{}{
		"clientId":        "u1",
		"professionalId":  "p1",
		"appointmentDate": "2026-03-10T10:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid, result.GetErrorMessages())

	result, err = Validate(SchemaBookingCreate, map[string]interface{}{"clientId": "u1"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidate_UnknownSchema(t *testing.T) {
	_, err := Validate("nope", map[string]interface{}{})
	assert.Error(t, err)
}
