package crypto

import "golang.org/x/crypto/bcrypt"

// Cost for bcrypt password hashing. Higher than the library default;
// registration and login absorb the extra latency.
const bcryptCost = 12

// CheckPassword compares a bcrypt hashed password with its possible plaintext
// equivalent. A malformed or empty hash fails the comparison, so accounts
// without a stored password (oauth2-only) can never pass a password login.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateHash creates a bcrypt hash from a password
func GenerateHash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedBytes), err
}
