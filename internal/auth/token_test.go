package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	tm := NewTokenManager("secret", "industico-test", 24*time.Hour)

	token, err := tm.Generate("buyer@example.com")
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, "industico-test", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateRequiresEmail(t *testing.T) {
	tm := NewTokenManager("secret", "industico-test", time.Hour)
	_, err := tm.Generate("  ")
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", "industico-test", 24*time.Hour)
	issuedAt := time.Now().Add(-25 * time.Hour)
	tm.now = func() time.Time { return issuedAt }

	token, err := tm.Generate("buyer@example.com")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager("secret", "industico-test", time.Hour)
	claims := Claims{
		Email: "buyer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "industico-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherIssuer := claims
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, otherIssuer).SignedString([]byte("secret"))
	require.NoError(t, err)

	noEmail := claims
	noEmail.Email = ""
	missingEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noEmail).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret":    otherSecret,
		"wrong algorithm": otherAlg,
		"unsigned":        unsigned,
		"wrong issuer":    wrongIssuer,
		"missing email":   missingEmail,
		"garbage":         "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
