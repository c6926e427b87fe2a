// Package session issues and verifies session credentials.
//
// Credentials are stateless HS256 JWTs. There is no revocation list: a leaked
// credential stays cryptographically valid until its exp claim, and logout
// only disposes of the client's copy. Callers that need to cut access sooner
// must re-check account state on every request (middleware.Protect does).
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

type Claims struct {
	jwt.RegisteredClaims
}

type Signer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewSigner(secret string, lifetime time.Duration) *Signer {
	return &Signer{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

// WithClock returns a copy of the signer reading time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	c := *s
	c.now = now
	return &c
}

func (s *Signer) Issue(userID uuid.UUID) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.lifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm and expiry and returns the subject id.
func (s *Signer) Verify(raw string) (uuid.UUID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.KeyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Identity(claims)
}

// KeyFunc hands out the HMAC secret for HS256 tokens only, so it can be given
// to parsers that are not configured with WithValidMethods.
func (s *Signer) KeyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
	}
	return s.secret, nil
}

// RequireExpiry rejects claims without an exp, which the token parser itself
// does not demand.
func RequireExpiry(claims jwt.Claims) error {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	return nil
}

// Identity applies the claim checks every session credential must pass once
// its signature is verified and returns the identity id.
func Identity(claims jwt.Claims) (uuid.UUID, error) {
	if err := RequireExpiry(claims); err != nil {
		return uuid.Nil, err
	}
	return SubjectID(claims)
}

// SubjectID parses the identity id carried in claims.
func SubjectID(claims jwt.Claims) (uuid.UUID, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	return id, nil
}
