package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelab/vacancyload/internal/config"
	"github.com/hirelab/vacancyload/internal/session"
)

func newTestRegistry(t *testing.T) *session.Registry {
	t.Helper()
	reg, err := session.NewRegistry([]config.Credential{
		{Identity: "a@x.com", Secret: "pw1"},
		{Identity: "b@x.com", Secret: "pw2"},
	})
	require.NoError(t, err)
	return reg
}

func TestRegistryBuildsOneSessionPerCredential(t *testing.T) {
	reg := newTestRegistry(t)
	assert.Equal(t, 2, reg.Len())
}

func TestValidateBearer(t *testing.T) {
	reg := newTestRegistry(t)

	tok, err := reg.SignIn("a@x.com", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	assert.True(t, reg.ValidateBearer("Bearer "+tok))
	assert.True(t, reg.ValidateBearer("bearer "+tok), "scheme is case-insensitive")
	assert.False(t, reg.ValidateBearer("bearer wrongtoken"))
	assert.False(t, reg.ValidateBearer("Basic "+tok))
	assert.False(t, reg.ValidateBearer(tok), "missing scheme")
	assert.False(t, reg.ValidateBearer("Bearer "+tok+" extra"), "three fields")
	assert.False(t, reg.ValidateBearer(""))
}

func TestSignInWrongSecret(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.SignIn("a@x.com", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

func TestSignInUnknownIdentity(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.SignIn("nobody@x.com", "pw1")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

func TestTokensAreUniquePerIdentity(t *testing.T) {
	reg := newTestRegistry(t)

	tokA, err := reg.SignIn("a@x.com", "pw1")
	require.NoError(t, err)
	tokB, err := reg.SignIn("b@x.com", "pw2")
	require.NoError(t, err)

	assert.NotEqual(t, tokA, tokB)
}

func TestSignInIsStableAcrossCalls(t *testing.T) {
	// Tokens are minted once at startup, not per sign-in.
	reg := newTestRegistry(t)

	tok1, err := reg.SignIn("a@x.com", "pw1")
	require.NoError(t, err)
	tok2, err := reg.SignIn("a@x.com", "pw1")
	require.NoError(t, err)

	assert.Equal(t, tok1, tok2)
}
