package services

import (
	"testing"

	"github.com/bonhomie/fest-system/models"
	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, validatePhone("9876543210"))
	assert.ErrorIs(t, validatePhone("12345"), ErrInvalidPhone)
	assert.ErrorIs(t, validatePhone("98765432101"), ErrInvalidPhone)
	assert.ErrorIs(t, validatePhone("98765abcde"), ErrInvalidPhone)
}

func TestValidateRollNumber(t *testing.T) {
	assert.NoError(t, validateRollNumber("CS/2022/042"))
	assert.NoError(t, validateRollNumber("EC-2023-7A"))
	assert.ErrorIs(t, validateRollNumber("ab"), ErrInvalidRollNumber)
	assert.ErrorIs(t, validateRollNumber("roll number with spaces"), ErrInvalidRollNumber)
}

func TestValidateGenderForEvent(t *testing.T) {
	anyEvent := &models.Event{AllowedGender: models.GenderAny}
	assert.NoError(t, validateGenderForEvent(anyEvent, "male"))
	assert.NoError(t, validateGenderForEvent(anyEvent, "female"))

	femaleOnly := &models.Event{AllowedGender: models.GenderFemale}
	assert.NoError(t, validateGenderForEvent(femaleOnly, "female"))
	assert.NoError(t, validateGenderForEvent(femaleOnly, "Female"))
	assert.ErrorIs(t, validateGenderForEvent(femaleOnly, "male"), ErrGenderNotPermitted)

	unset := &models.Event{}
	assert.NoError(t, validateGenderForEvent(unset, "male"))
}

func TestGetExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{"image/jpeg", ".jpg", false},
		{"image/png", ".png", false},
		{"image/webp", ".webp", false},
		{"image/svg+xml", ".svg", false},
		{"application/pdf", "", true},
		{"nonsense", "", true},
	}

	for _, tt := range tests {
		got, err := GetExtensionFromContentType(tt.contentType)
		if tt.wantErr {
			assert.Error(t, err, tt.contentType)
			continue
		}
		assert.NoError(t, err, tt.contentType)
		assert.Equal(t, tt.want, got, tt.contentType)
	}
}
