package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const AlphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Bytes of entropy in an opaque session or single-use token. 32 bytes
// hex-encodes to a 64 character string.
const tokenEntropyBytes = 32

// RandomString returns a cryptographically secure random string of the given
// length drawn from alphabet. Panics on an empty alphabet or a broken
// system randomness source, both unrecoverable conditions.
func RandomString(length int, alphabet string) string {
	if alphabet == "" {
		panic("crypto: RandomString called with empty alphabet")
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// NewToken creates an opaque bearer token for sessions and single-use
// email tokens. The value is random; it carries no claims and is only
// meaningful as a database lookup key.
func NewToken() (string, error) {
	b := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
