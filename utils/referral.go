package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// ReferralCodeLength is the length of the short shareable code.
const ReferralCodeLength = 6

// GenerateReferralCode generates a short human-friendly referral code
// (6 uppercase alphanumeric characters, e.g. "A1B2C3") used in place of an
// ObjectID for sharing. Uniqueness is enforced by the caller against the
// users collection.
func GenerateReferralCode() (string, error) {
	// Generate 4 random bytes (will give us 6 characters in base32)
	randomBytes := make([]byte, 4)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	// Convert to base32 and take first 6 characters
	randomStr := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	randomStr = randomStr[:ReferralCodeLength]

	// Convert to uppercase and remove any non-alphanumeric characters
	randomStr = strings.ToUpper(randomStr)
	randomStr = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, randomStr)

	// Ensure we have exactly the expected number of characters
	if len(randomStr) < ReferralCodeLength {
		randomStr = randomStr + strings.Repeat("0", ReferralCodeLength-len(randomStr))
	}

	return randomStr, nil
}
