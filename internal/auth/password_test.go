package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("hunter22")
	require.NoError(t, err)
	h2, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", h1)
	// fresh salt per call
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	h, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("hunter22", h))
	assert.Error(t, VerifyPassword("hunter23", h))
	assert.Error(t, VerifyPassword("", h))
}
