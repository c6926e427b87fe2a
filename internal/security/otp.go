package security

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"time"
)

type OTPGenerator interface {
	Generate(now time.Time) (code string, expiresAt time.Time, err error)
}

// NumericOTP produces zero-padded 6-digit codes from crypto/rand.
type NumericOTP struct {
	TTL time.Duration
}

func (g NumericOTP) Generate(now time.Time) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), now.Add(g.TTL), nil
}

// HashCode is the one-way digest stored in place of a reset code.
func HashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return fmt.Sprintf("%x", h)
}
