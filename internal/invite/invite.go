// Package invite issues and verifies signed room invite tokens.
//
// A token is an HS256 JWT carrying the room id in the "room" claim plus an
// expiry. Anyone holding it can look up and join the room; it grants nothing
// beyond what knowing the room id grants.
package invite

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned for malformed, tampered, or expired tokens.
var ErrInvalid = errors.New("invite: invalid token")

// Signer signs and verifies invite tokens with a shared secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a Signer. A nil now uses time.Now.
func NewSigner(secret string, ttl time.Duration, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: now}
}

type claims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

// Issue returns a token for roomID and its expiry.
func (s *Signer) Issue(roomID string) (string, time.Time, error) {
	iat := s.now()
	exp := iat.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Room: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// Verify returns the room id carried by a valid token.
func (s *Signer) Verify(token string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Room == "" {
		return "", fmt.Errorf("%w: missing room", ErrInvalid)
	}
	return c.Room, nil
}
