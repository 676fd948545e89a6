package auth

import (
	"testing"
	"time"

	"github.com/skybiz/skybiz/server/auth/key"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	PasswordHashCost = bcrypt.MinCost

	hash, err := HashPassword("very-secure")
	assert.Nil(t, err)
	assert.NotEqual(t, "very-secure", hash)

	assert.True(t, CheckPasswordHash("very-secure", hash), "Should accept the original password")
	assert.False(t, CheckPasswordHash("not-it", hash), "Should reject a different password")
}

func TestEncodeAndDecodeJWT(t *testing.T) {
	keyPair, err := key.GenerateKeyPair()
	assert.Nil(t, err)

	claims := NewSessionClaims(7, "tony", true, time.Now())
	token, err := EncodeJWT(claims, keyPair)
	assert.Nil(t, err)

	decoded, err := DecodeJWT(token, keyPair, time.Now())
	assert.Nil(t, err)
	assert.Equal(t, "7", decoded.Subject)
	assert.Equal(t, "tony", decoded.Username)
	assert.True(t, decoded.IsStaff)
}

func TestDecodeJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	keyPair, err := key.GenerateKeyPair()
	assert.Nil(t, err)

	otherKeyPair, err := key.GenerateKeyPair()
	assert.Nil(t, err)

	token, err := EncodeJWT(NewSessionClaims(1, "tony", true, time.Now()), otherKeyPair)
	assert.Nil(t, err)

	_, err = DecodeJWT(token, keyPair, time.Now())
	assert.NotNil(t, err, "Should reject a token signed by another key")

	expired, err := EncodeJWT(NewSessionClaims(1, "tony", true, time.Now().Add(-30*24*time.Hour)), keyPair)
	assert.Nil(t, err)

	_, err = DecodeJWT(expired, keyPair, time.Now())
	assert.NotNil(t, err, "Should reject an expired token")
}

func TestDecodeJWTUsesTheGivenClock(t *testing.T) {
	keyPair, err := key.GenerateKeyPair()
	assert.Nil(t, err)

	issuedAt := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	token, err := EncodeJWT(NewSessionClaims(3, "pepper", true, issuedAt), keyPair)
	assert.Nil(t, err)

	decoded, err := DecodeJWT(token, keyPair, issuedAt.Add(time.Hour))
	assert.Nil(t, err, "Should accept a token that is fresh on the given clock")
	assert.Equal(t, "pepper", decoded.Username)

	_, err = DecodeJWT(token, keyPair, issuedAt.Add(SESSION_LIFETIME+time.Minute))
	assert.NotNil(t, err, "Should reject a token that expired on the given clock")
}
