package encrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

// HashingRounds is how many times the salted password is passed through
// SHA-256. Fixed for the lifetime of the stored hashes; changing it
// invalidates every credential in the database.
const HashingRounds = 32

// SaltLength is the number of characters in a freshly generated salt.
const SaltLength = 32

const saltChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSalt returns a random alphanumeric salt of length characters.
func GenerateSalt(length int) (string, error) {
	salt := make([]byte, length)
	max := big.NewInt(int64(len(saltChars)))

	for i := range salt {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate salt: %w", err)
		}
		salt[i] = saltChars[n.Int64()]
	}

	return string(salt), nil
}

// HashPassword derives the stored hash from a plaintext password and its
// per-user salt: HashingRounds iterations of SHA-256 over the uppercase hex
// of the previous round, starting from password+salt.
func HashPassword(password, salt string) string {
	s := password + salt
	for i := 0; i < HashingRounds; i++ {
		sum := sha256.Sum256([]byte(s))
		s = fmt.Sprintf("%X", sum)
	}
	return s
}
