package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/stepup/internal/errors"
)

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{
			name:      "non-empty string",
			value:     "bulk-delete-accounts",
			shouldErr: false,
		},
		{
			name:      "empty string",
			value:     "",
			shouldErr: true,
		},
		{
			name:      "whitespace only",
			value:     "   ",
			shouldErr: true,
		},
		{
			name:      "string with surrounding whitespace",
			value:     "  value  ",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.value)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "must not be blank")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{
			name:      "trimmed string",
			value:     "session-abc",
			shouldErr: false,
		},
		{
			name:      "leading whitespace",
			value:     " session-abc",
			shouldErr: true,
		},
		{
			name:      "trailing whitespace",
			value:     "session-abc ",
			shouldErr: true,
		},
		{
			name:      "internal whitespace is allowed",
			value:     "two words",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoWhitespace.Validate(tt.value)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "whitespace")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	t.Run("wraps non-nil error as invalid input", func(t *testing.T) {
		err := WrapValidationError(assert.AnError)

		assert.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})
}
