package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/skybiz/skybiz/server/auth/key"
	"golang.org/x/crypto/bcrypt"
)

const SESSION_ISSUER = "skybiz"

// SESSION_LIFETIME matches the two week session age staff are used to.
const SESSION_LIFETIME = 14 * 24 * time.Hour

// PasswordHashCost is the bcrypt cost for new hashes. Tests lower it to bcrypt.MinCost.
var PasswordHashCost = 14

type SessionClaims struct {
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	jwt.StandardClaims
}

func NewSessionClaims(userID uint, username string, isStaff bool, now time.Time) SessionClaims {
	return SessionClaims{
		Username: username,
		IsStaff:  isStaff,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(userID),
			Issuer:    SESSION_ISSUER,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(SESSION_LIFETIME).Unix(),
		},
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims SessionClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)
	token.Header["kid"] = keyPair.Kid

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// DecodeJWT verifies the signature and issuer of tokenString. Expiry is checked against now
// rather than the wall clock so the caller's clock decides.
func DecodeJWT(tokenString string, keyPair *key.KeyPair, now time.Time) (*SessionClaims, error) {
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to SessionClaims")
	}

	if !tokenClaims.VerifyExpiresAt(now.Unix(), true) {
		return nil, fmt.Errorf("invalid jwt: token is expired")
	}

	if tokenClaims.Issuer != SESSION_ISSUER {
		return nil, fmt.Errorf("invalid jwt: unexpected issuer %q", tokenClaims.Issuer)
	}

	return tokenClaims, nil
}
