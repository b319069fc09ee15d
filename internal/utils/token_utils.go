package utils

import (
	"errors"
	"time"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	"github.com/contactkeeper/contacts_backend/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// scopedClaims extends the registered claim set with a scope tag so that
// access, refresh and email-confirmation tokens minted with the same secret
// cannot be substituted for each other.
type scopedClaims struct {
	Scope domain.TokenScope `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateScopedJWT signs a token carrying the subject (user email) and scope,
// expiring after expiryDuration.
func GenerateScopedJWT(subject string, scope domain.TokenScope, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := scopedClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseScopedJWT verifies signature, expiry and scope, returning the subject.
// Every failure collapses to apperrors.ErrInvalidToken so callers cannot leak
// which check failed.
func ParseScopedJWT(tokenString string, secret string, expectedScope domain.TokenScope) (string, error) {
	claims := &scopedClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", errors.Join(apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", apperrors.ErrInvalidToken
	}
	if claims.Scope != expectedScope {
		return "", apperrors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", apperrors.ErrInvalidToken
	}
	return claims.Subject, nil
}
