package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

func TestAESGCMRoundTripBindsUser(t *testing.T) {
	enc, err := NewAESGCMEncryption("test-seed")
	require.NoError(t, err)

	first, err := enc.Encrypt("user-1", "+33 6 12 34 56 78")
	require.NoError(t, err)
	second, err := enc.Encrypt("user-1", "+33 6 12 34 56 78")
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(second), "nonces must differ between seals")

	plain, err := enc.Decrypt("user-1", first)
	require.NoError(t, err)
	assert.Equal(t, "+33 6 12 34 56 78", plain)

	_, err = enc.Decrypt("user-2", first)
	assert.Error(t, err, "ciphertext must not open for another user")
}

func TestAESGCMRejectsEmptySeedAndGarbage(t *testing.T) {
	_, err := NewAESGCMEncryption("")
	assert.Error(t, err)

	enc, err := NewAESGCMEncryption("seed")
	require.NoError(t, err)
	_, err = enc.Decrypt("user-1", []byte("not base64!"))
	assert.Error(t, err)
	_, err = enc.Decrypt("user-1", []byte("AAAA"))
	assert.Error(t, err)
}

func signHS256(t *testing.T, secret string, claims ports.AuthClaims, ttl time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: claims.UserID.String(),
		Email:  claims.Email,
		Role:   claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mesh-auth",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTVerifierAcceptsSignedToken(t *testing.T) {
	v, err := NewJWTVerifier("shared-secret", "", "mesh-auth")
	require.NoError(t, err)
	userID := uuid.New()

	token := signHS256(t, "shared-secret", ports.AuthClaims{UserID: userID, Email: "ada@school.test", Role: "student"}, time.Hour)

	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@school.test", claims.Email)
	assert.Equal(t, "student", claims.Role)
}

func TestJWTVerifierRejectsBadTokens(t *testing.T) {
	v, err := NewJWTVerifier("shared-secret", "", "mesh-auth")
	require.NoError(t, err)
	claims := ports.AuthClaims{UserID: uuid.New(), Role: "teacher"}

	expired := signHS256(t, "shared-secret", claims, -time.Hour)
	_, err = v.Verify(context.Background(), expired)
	assert.Error(t, err, "expired token")

	forged := signHS256(t, "another-secret", claims, time.Hour)
	_, err = v.Verify(context.Background(), forged)
	assert.Error(t, err, "wrong secret")

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": claims.UserID.String(), "iss": "mesh-auth"}).
		SignedString([]byte("shared-secret"))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), noExpiry)
	assert.Error(t, err, "missing exp")

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "not-a-uuid", "iss": "mesh-auth", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("shared-secret"))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), badSubject)
	assert.Error(t, err, "malformed user id")
}

func TestNewJWTVerifierRequiresKeyMaterial(t *testing.T) {
	_, err := NewJWTVerifier("", "", "")
	assert.Error(t, err)
	_, err = NewJWTVerifier("", "not pem", "")
	assert.Error(t, err)
}
