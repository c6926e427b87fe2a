package security

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)

	require.NoError(t, h.Compare(hash, "Passw0rd!"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Compare("not-a-hash", "Passw0rd!"), ErrPasswordMismatch)
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}

func TestNumericOTP_Generate(t *testing.T) {
	g := NumericOTP{TTL: 10 * time.Minute}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	digits := regexp.MustCompile(`^[0-9]{6}$`)

	for i := 0; i < 50; i++ {
		code, exp, err := g.Generate(now)
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
		assert.Equal(t, now.Add(10*time.Minute), exp)
	}
}

func TestHashCode(t *testing.T) {
	assert.Len(t, HashCode("482913"), 64)
	assert.Equal(t, HashCode("482913"), HashCode("482913"))
	assert.NotEqual(t, HashCode("482913"), HashCode("482914"))
}

func TestPlaceholderPassword(t *testing.T) {
	a, err := PlaceholderPassword()
	require.NoError(t, err)
	b, err := PlaceholderPassword()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
}
