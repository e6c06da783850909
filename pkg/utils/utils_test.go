package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID_Length(t *testing.T) {
	id, err := GenerateID(16)
	require.NoError(t, err)
	assert.Len(t, id, 16)

	other, err := GenerateID(16)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "Secret123"))
	assert.Error(t, CheckPassword(hash, "secret123"))
}

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "reader", "s3cret")
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "reader", claims.Username)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-1", "reader", "s3cret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other")
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = ValidateJWT(token, "s3cret")
	assert.Error(t, err)
}
