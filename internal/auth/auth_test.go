package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("testpass123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "testpass123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := MakeToken("doc-1", secret)
	require.NoError(t, err)

	c, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", c.DoctorID)

	_, err = ParseToken(tok, "other-secret")
	require.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	c := Claims{
		DoctorID: "doc-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAlgorithmConfusion(t *testing.T) {
	c := Claims{DoctorID: "doc-1"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.Error(t, err)
}

func TestForeignIssuerRejected(t *testing.T) {
	c := Claims{
		DoctorID: "doc-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestMissingDoctorID(t *testing.T) {
	tok, err := MakeToken("", secret)
	require.NoError(t, err)
	_, err = ParseToken(tok, secret)
	require.ErrorIs(t, err, ErrBadToken)
}
