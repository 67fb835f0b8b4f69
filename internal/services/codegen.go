// Package services – verification code generation.
package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeSpan is the size of the 6-digit code range [100000, 999999].
const codeSpan = 900000

// GenerateCode returns a uniform random 6-digit numeric code in the range
// 100000–999999 inclusive. The lower bound guarantees six digits, so no
// zero-padding is needed. The code is drawn from crypto/rand; collisions
// across recipients are acceptable because lookups are scoped by recipient.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
