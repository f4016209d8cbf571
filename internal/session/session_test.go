package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	s := NewStore(path)
	require.Empty(t, s.Token())
	require.False(t, s.Valid())

	require.NoError(t, s.Save("abc123"))
	require.Equal(t, "abc123", s.Token())

	// A fresh store picks the token up from disk.
	s2 := NewStore(path)
	require.Equal(t, "abc123", s2.Token())

	require.NoError(t, s.Clear())
	require.Empty(t, s.Token())
	require.NoError(t, s.Clear()) // idempotent
}

func TestStore_ExpiryInspection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewStore(path)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, s.Save(signedToken(t, exp)))
	require.True(t, s.Valid())
	require.WithinDuration(t, exp, s.ExpiresAt(), time.Second)

	require.NoError(t, s.Save(signedToken(t, time.Now().Add(-time.Minute))))
	require.False(t, s.Valid())
}

func TestStore_OpaqueTokenAssumedValid(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, s.Save("not-a-jwt"))
	require.True(t, s.Valid())
	require.True(t, s.ExpiresAt().IsZero())
}
