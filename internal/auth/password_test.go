package auth

import (
	"testing"

	"github.com/subzcrib/billing-platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
}

func TestPasswordCheckFailures(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.ErrorIs(t, CheckPassword(hash, "wrong-pass"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "s3cret-pass"), domain.ErrInvalidCredentials)
}
