package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("festival-2026")
	require.NoError(t, err)
	assert.NotEqual(t, "festival-2026", hash)

	assert.True(t, CheckPasswordHash("festival-2026", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("asha@college.edu"))
	assert.True(t, IsValidEmail("cs-2022-042@offline.bonhomie.local"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@tld"))
	assert.False(t, IsValidEmail(""))
}
