package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, Verify("secret1", hash))
	assert.False(t, Verify("secret2", hash))
}

func TestHashRejectsLength(t *testing.T) {
	_, err := Hash("12345")
	assert.ErrorIs(t, err, ErrLength)

	_, err = Hash(strings.Repeat("a", 51))
	assert.ErrorIs(t, err, ErrLength)
}
