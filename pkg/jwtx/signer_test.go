package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMintAndVerify(t *testing.T) {
	t.Parallel()

	s := NewSigner("test-secret", "eventhive-auth", time.Hour)

	token, err := s.Mint("user-1", "alice", "user", "sess-1")
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID())
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "user", claims.Role)
	require.Equal(t, "sess-1", claims.SessionID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewSigner("secret-a", "eventhive-auth", time.Hour).
		Mint("user-1", "alice", "user", "sess-1")
	require.NoError(t, err)

	_, err = NewSigner("secret-b", "eventhive-auth", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	token, err := NewSigner("secret", "other-issuer", time.Hour).
		Mint("user-1", "alice", "user", "sess-1")
	require.NoError(t, err)

	_, err = NewSigner("secret", "eventhive-auth", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	s := NewSigner("secret", "eventhive-auth", -time.Minute)
	token, err := s.Mint("user-1", "alice", "user", "sess-1")
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	s := NewSigner("secret", "eventhive-auth", time.Hour)
	_, err := s.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
