package util

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// SlugLength is the length of generated public wishlist slugs
const SlugLength = 8

// GenerateSlug creates a random lowercase alphanumeric slug.
// Slugs are public identifiers, so crypto/rand is used.
func GenerateSlug(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(slugAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = slugAlphabet[n.Int64()]
	}
	return string(b), nil
}

// GenerateResetToken creates an opaque token for password reset links
func GenerateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
