package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens carrying the user
// id as subject plus the email claim.
type TokenIssuer struct {
	issuer     string
	signingKey []byte
	ttl        time.Duration
}

func NewTokenIssuer(issuer string, signingKey []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		issuer:     issuer,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

func (t *TokenIssuer) Issue(userID, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.ttl)

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(t.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates the signature and expiry. Expired, malformed and
// forged tokens are indistinguishable to the caller; all of them yield
// (nil, false).
func (t *TokenIssuer) Verify(token string) (*Claims, bool) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, false
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, false
	}
	return claims, true
}
