package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", hash)

	assert.True(t, CheckPasswordHash("pw123456", hash))
	assert.False(t, CheckPasswordHash("pw1234567", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Issue("user-42")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	_, err := issuer.Verify("not.a.token")
	assert.Error(t, err)
	_, err = issuer.Verify("")
	assert.Error(t, err)
}
