package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/fileshare/internal/common"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(42, secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := GetUserIDFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(42, []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("secret-b"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken(42, secret, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not.a.token", []byte("test-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
