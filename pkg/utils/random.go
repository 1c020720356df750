package utils

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// ShortCodeCharset is the alphabet short codes are drawn from.
const ShortCodeCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateShortCode generates a random string of fixed length
func GenerateShortCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = ShortCodeCharset[rand.IntN(len(ShortCodeCharset))]
	}
	return string(b)
}

// NewTokenID returns a fresh identifier for the jti claim of issued tokens.
func NewTokenID() string {
	return uuid.NewString()
}
