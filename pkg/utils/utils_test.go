package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("unit-test-secret", time.Hour)

	token, err := GenerateAccessToken(12, "admin", "admin@salon.test", "Salon Admin")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin@salon.test", claims.Email)
	assert.Equal(t, "Salon Admin", claims.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateTokenRejectsForeignTokens(t *testing.T) {
	InitJWT("unit-test-secret", time.Hour)
	good, err := GenerateAccessToken(1, "staff", "s@salon.test", "S")
	require.NoError(t, err)

	InitJWT("another-secret", time.Hour)
	_, err = ValidateToken(good)
	assert.Error(t, err, "token signed with a different secret")

	otherIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := otherIssuer.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err, "token from another issuer")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err = expired.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestJWTRequiresSecret(t *testing.T) {
	InitJWT("", 0)
	t.Cleanup(func() { InitJWT("unit-test-secret", time.Hour) })

	_, err := GenerateAccessToken(1, "admin", "a@salon.test", "A")
	assert.ErrorIs(t, err, ErrJWTNotConfigured)
	_, err = ValidateToken("anything")
	assert.ErrorIs(t, err, ErrJWTNotConfigured)
}

func TestConversions(t *testing.T) {
	assert.Equal(t, 12.35, RoundTo(12.346, 2))
	assert.Equal(t, -1.3, RoundTo(-1.26, 1))
	assert.Equal(t, 3.0, RoundTo(2.5, 0))

	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, -50.0, Percentage(-5, 10))

	assert.Equal(t, 7, StrToIntDefault(" 7 ", 1))
	assert.Equal(t, 1, StrToIntDefault("", 1))
	assert.Equal(t, 1, StrToIntDefault("-3", 1))
	assert.Equal(t, 1, StrToIntDefault("abc", 1))

	id, err := StrToInt64("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	_, err = StrToInt64("4x")
	assert.Error(t, err)
}

func TestStringHelpers(t *testing.T) {
	assert.Nil(t, NewNullString("   "))
	require.NotNil(t, NewNullString(" a "))
	assert.Equal(t, "a", *NewNullString(" a "))
	assert.Equal(t, "", DerefString(nil))
	assert.Equal(t, []string{"http://a", "http://b"}, SplitAndTrim(" http://a, ,http://b,"))
	assert.Empty(t, SplitAndTrim(""))
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("SALON_TEST_INT", "12")
	t.Setenv("SALON_TEST_BAD_INT", "twelve")
	t.Setenv("SALON_TEST_BOOL", "false")
	t.Setenv("SALON_TEST_DURATION", "90s")

	assert.Equal(t, "fallback", Getenv("SALON_TEST_MISSING", "fallback"))
	assert.Equal(t, 12, GetenvInt("SALON_TEST_INT", 1))
	assert.Equal(t, 1, GetenvInt("SALON_TEST_BAD_INT", 1))
	assert.False(t, GetenvBool("SALON_TEST_BOOL", true))
	assert.Equal(t, 90*time.Second, GetenvDuration("SALON_TEST_DURATION", time.Minute))
	assert.Equal(t, 0.5, GetenvFloat("SALON_TEST_MISSING", 0.5))
}
