package internal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// NewResetToken returns an opaque reset token: a random UUID rendered in its
// canonical form. 122 bits of entropy; collisions are treated as
// probabilistically impossible rather than handled.
func NewResetToken() string {
	return uuid.NewString()
}

// NewOTP returns a uniformly random decimal string of the given length,
// zero-padded, drawn one digit at a time so no range bias is possible.
func NewOTP(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	otp := b.String()
	if len(otp) != digits {
		return "", fmt.Errorf("invalid otp generation length")
	}
	return otp, nil
}
