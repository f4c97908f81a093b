package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uth-confms/confms/pkg/errdefs"
)

// Tests use bcrypt's minimum cost; cost 12 would make the suite crawl.
func testHasher() *PasswordHasher { return NewPasswordHasher(4) }

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("Alice123!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "bcrypt hashes are self-describing")

	assert.True(t, h.Verify("Alice123!", hash))
	assert.False(t, h.Verify("alice123!", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	h := testHasher()
	_, err := h.Hash("")
	require.Error(t, err)
	assert.True(t, errdefs.IsValidation(err))
}

func TestHashesAreSalted(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestVerifyNeverPanicsOnMalformedHash(t *testing.T) {
	h := testHasher()
	for _, malformed := range []string{"", "not-a-hash", "$2a$garbage", "$argon2id$v=19$..."} {
		assert.False(t, h.Verify("anything", malformed))
	}
}

func TestCostOutOfRangeFallsBack(t *testing.T) {
	h := NewPasswordHasher(99)
	assert.Equal(t, DefaultHashCost, h.cost)

	h = NewPasswordHasher(-1)
	assert.Equal(t, DefaultHashCost, h.cost)
}
