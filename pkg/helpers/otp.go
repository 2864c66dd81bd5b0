package helpers

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// Verification code helpers

const (
	codeMin = 100000
	codeMax = 999999
)

var codeSpan = big.NewInt(codeMax - codeMin + 1)

// KeyInteractiveTicket is the Redis key holding the platform identity bound to an
// interactive verification ticket
func KeyInteractiveTicket(ticket string) string {
	return "verify:interactive:" + ticket
}

// GenVerificationCode generates a secure random 6-digit code in [100000, 999999].
// The lower bound keeps the string exactly 6 digits without padding.
func GenVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
