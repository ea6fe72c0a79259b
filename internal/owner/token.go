package owner

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrSessionDisabled = errors.New("session tokens are not configured")

const sessionAudience = "clientdesk-session"

// TokenIssuer mints session tokens for owners that presented valid init
// data, so later calls can send a bearer token instead.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Enabled() bool {
	return t != nil && len(t.secret) > 0
}

func (t *TokenIssuer) Secret() []byte {
	return t.secret
}

func (t *TokenIssuer) Issue(ownerID string) (string, time.Time, error) {
	if !t.Enabled() {
		return "", time.Time{}, ErrSessionDisabled
	}
	if ownerID == "" {
		return "", time.Time{}, ErrUnauthorized
	}

	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   ownerID,
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a session token and returns its owner.
func (t *TokenIssuer) Parse(raw string) (string, error) {
	if !t.Enabled() {
		return "", ErrSessionDisabled
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrUnauthorized
	}
	return sub, nil
}
