package encrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword_Deterministic(t *testing.T) {
	h1 := HashPassword("secret1", "fixedsalt")
	h2 := HashPassword("secret1", "fixedsalt")

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // uppercase hex of a SHA-256 digest
	assert.NotContains(t, h1, "secret1")
}

func TestHashPassword_SaltChangesHash(t *testing.T) {
	assert.NotEqual(t,
		HashPassword("secret1", "saltA"),
		HashPassword("secret1", "saltB"),
	)
}

func TestHashPassword_PasswordChangesHash(t *testing.T) {
	assert.NotEqual(t,
		HashPassword("secret1", "salt"),
		HashPassword("secret2", "salt"),
	)
}

func TestGenerateSalt(t *testing.T) {
	s1, err := GenerateSalt(SaltLength)
	assert.NoError(t, err)
	assert.Len(t, s1, SaltLength)

	s2, err := GenerateSalt(SaltLength)
	assert.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}
