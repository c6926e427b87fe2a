package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	s := NewSigner("super-secret", time.Hour)
	id := uuid.New()

	tok, exp, err := s.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	got, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSigner("secret", time.Hour).WithClock(func() time.Time { return issued })
	tok, _, err := s.Issue(uuid.New())
	require.NoError(t, err)

	atExpiry := s.WithClock(func() time.Time { return issued.Add(time.Hour) })
	_, err = atExpiry.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	before := s.WithClock(func() time.Time { return issued.Add(59 * time.Minute) })
	_, err = before.Verify(tok)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, _, err := NewSigner("right-secret", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewSigner("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_TamperedPayload(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	tok, _, err := s.Issue(uuid.New())
	require.NoError(t, err)

	other, _, err := s.Issue(uuid.New())
	require.NoError(t, err)

	// splice the second token's payload onto the first token's signature
	a := strings.Split(tok, ".")
	b := strings.Split(other, ".")
	forged := a[0] + "." + b[1] + "." + a[2]

	_, err = s.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSigner("secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingExpiry(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewSigner("secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_BadSubject(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewSigner("secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewSigner("k", time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestKeyFunc_RejectsOtherMethods(t *testing.T) {
	s := NewSigner("secret", time.Hour)

	key, err := s.KeyFunc(&jwt.Token{Method: jwt.SigningMethodHS256})
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), key)

	_, err = s.KeyFunc(&jwt.Token{Method: jwt.SigningMethodHS512, Header: map[string]interface{}{"alg": "HS512"}})
	assert.Error(t, err)
}

func TestRequireExpiry(t *testing.T) {
	assert.NoError(t, RequireExpiry(&Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}))
	assert.ErrorIs(t, RequireExpiry(&Claims{}), ErrInvalidToken)
}

func TestIdentity(t *testing.T) {
	id := uuid.New()
	exp := jwt.NewNumericDate(time.Now().Add(time.Minute))

	got, err := Identity(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: exp}})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	tests := []struct {
		name   string
		claims *Claims
	}{
		{"no exp", &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}}},
		{"no subject", &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{"bad subject", &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42", ExpiresAt: exp}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Identity(tc.claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
