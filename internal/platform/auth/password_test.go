package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arashmdn/student-portal/internal/domain"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := NewPasswordHasher(4) // minimum cost keeps the test fast

	digest, err := h.Hash("404370044")
	require.NoError(t, err)
	assert.True(t, h.Verify("404370044", digest))
	assert.False(t, h.Verify("404370045", digest))
}

func TestHashIsSalted(t *testing.T) {
	h := NewPasswordHasher(4)

	first, err := h.Hash("123456789")
	require.NoError(t, err)
	second, err := h.Hash("123456789")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("123456789", first))
	assert.True(t, h.Verify("123456789", second))
}

func TestHashRejectsOversizeInput(t *testing.T) {
	h := NewPasswordHasher(4)

	// 73 ASCII bytes
	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)

	// exactly 72 bytes is fine
	digest, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("a", MaxPasswordBytes), digest))

	// multi-byte runes count as UTF-8 bytes
	_, err = h.Hash(strings.Repeat("ک", 40))
	require.ErrorAs(t, err, &verr)
}

func TestVerifyNeverFails(t *testing.T) {
	h := NewPasswordHasher(4)

	digest, err := h.Hash("123456789")
	require.NoError(t, err)

	assert.False(t, h.Verify(strings.Repeat("x", 100), digest))
	assert.False(t, h.Verify("123456789", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("123456789", ""))
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	// out-of-range costs fall back to the default rather than failing
	// every Hash call later
	h := NewPasswordHasher(99)
	digest, err := h.Hash("p")
	require.NoError(t, err)
	assert.True(t, h.Verify("p", digest))
}
