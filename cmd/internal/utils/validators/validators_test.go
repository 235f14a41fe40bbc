package validators

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomTags(t *testing.T) {
	validate := New()

	tests := []struct {
		value string
		tag   string
		valid bool
	}{
		{"2025-02-24", "isodate", true},
		{"2024-02-29", "isodate", true},
		{"2025-02-30", "isodate", false},
		{"24-02-2025", "isodate", false},
		{"2025-02-24T14:00:00Z", "isodate", false},
		{"14:00", "clocktime", true},
		{"14:00:30", "clocktime", true},
		{"25:00", "clocktime", false},
		{"9:00", "clocktime", false},
		{"09:5", "clocktime", false},
		{"9:00:00", "clocktime", false},
		{"00:00", "clocktime", true},
		{"2pm", "clocktime", false},
		{"", "clocktime", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag+" "+tt.value, func(t *testing.T) {
			err := validate.Var(tt.value, tt.tag)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestReportsJSONFieldNames(t *testing.T) {
	req := struct {
		UserID string `json:"user_id" validate:"required"`
	}{}

	err := New().Struct(req)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "user_id", verrs[0].Field())
}
