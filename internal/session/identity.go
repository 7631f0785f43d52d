package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject is returned for a valid token that names no user.
var ErrNoSubject = errors.New("session token has no subject")

// JWTIdentity reads the user id from the subject of an HMAC-signed JWT,
// verifying signature, expiry and (when configured) issuer locally.
type JWTIdentity struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTIdentity returns a resolver for tokens signed with secret.
func NewJWTIdentity(secret, issuer string, now func() time.Time) *JWTIdentity {
	if now == nil {
		now = time.Now
	}
	return &JWTIdentity{secret: []byte(secret), issuer: strings.TrimSpace(issuer), now: now}
}

func (j *JWTIdentity) ResolveUserID(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...); err != nil {
		return "", fmt.Errorf("verify session token: %w", err)
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", ErrNoSubject
	}
	return subject, nil
}
