package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	testSecret = []byte("test_secret_key")
	testIssuer = "chat_backend_test"
)

func TestGenerateAndVerify(t *testing.T) {
	tokenStr, err := Generate(testSecret, testIssuer, "alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	claims, err := Verify(testSecret, testIssuer, tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerify_WrongSecret(t *testing.T) {
	tokenStr, err := Generate(testSecret, testIssuer, "alice")
	assert.NoError(t, err)

	_, err = Verify([]byte("other_secret"), testIssuer, tokenStr)
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	tokenStr, err := Generate(testSecret, testIssuer, "alice")
	assert.NoError(t, err)

	_, err = Verify(testSecret, "someone_else", tokenStr)
	assert.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := Verify(testSecret, testIssuer, "not.a.token")
	assert.Error(t, err)
}

func TestGenerate_UniqueTokenIDs(t *testing.T) {
	t1, err := Generate(testSecret, testIssuer, "alice")
	assert.NoError(t, err)
	t2, err := Generate(testSecret, testIssuer, "alice")
	assert.NoError(t, err)

	c1, err := Verify(testSecret, testIssuer, t1)
	assert.NoError(t, err)
	c2, err := Verify(testSecret, testIssuer, t2)
	assert.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
}
