package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return raw
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret)

	raw := signToken(t, testSecret, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	id, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.True(t, id.Admin())
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)
	valid := jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", signToken(t, []byte("other-secret"), Claims{RegisteredClaims: valid})},
		{"expired", signToken(t, testSecret, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})},
		{"missing subject", signToken(t, testSecret, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.raw)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestVerifier_RejectsNonHMAC(t *testing.T) {
	v := NewVerifier(testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(raw)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(t.Context(), Identity{UserID: "user-42"})

	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-42", id.UserID)
	assert.False(t, id.Admin())

	_, ok = FromContext(t.Context())
	assert.False(t, ok)
}
