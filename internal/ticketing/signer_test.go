package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSigner_RequiresSecret(t *testing.T) {
	signer, err := NewSigner("")
	assert.Nil(t, signer)
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestSigner_KnownVector(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	// HMAC-SHA-256("42:7:2024-01-01T00:00:00Z") under "test-secret".
	got := signer.Sign("42", "7", "2024-01-01T00:00:00Z")
	assert.Equal(t, "8b7983b2848e300dc35c1c0a15cc05c002a4093b4f757f51946baa6adc13a6d4", got)
}

func TestSigner_Deterministic(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	first := signer.Sign("booking-1", "user-1", "2024-06-01T12:00:00Z")
	second := signer.Sign("booking-1", "user-1", "2024-06-01T12:00:00Z")
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestSigner_InputSensitivity(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	base := signer.Sign("booking-1", "user-1", "2024-06-01T12:00:00Z")
	assert.NotEqual(t, base, signer.Sign("booking-2", "user-1", "2024-06-01T12:00:00Z"))
	assert.NotEqual(t, base, signer.Sign("booking-1", "user-2", "2024-06-01T12:00:00Z"))
	assert.NotEqual(t, base, signer.Sign("booking-1", "user-1", "2024-06-01T12:00:01Z"))
}

func TestSigner_SecretSensitivity(t *testing.T) {
	first, err := NewSigner("test-secret")
	require.NoError(t, err)
	second, err := NewSigner("another-secret")
	require.NoError(t, err)

	assert.NotEqual(t,
		first.Sign("42", "7", "2024-01-01T00:00:00Z"),
		second.Sign("42", "7", "2024-01-01T00:00:00Z"),
	)
}

func TestSigner_Verify(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	hash := signer.Sign("booking-1", "user-1", "2024-06-01T12:00:00Z")
	assert.True(t, signer.Verify("booking-1", "user-1", "2024-06-01T12:00:00Z", hash))
	assert.False(t, signer.Verify("booking-1", "user-1", "2024-06-01T12:00:00Z", flipLastChar(hash)))
	assert.False(t, signer.Verify("booking-x", "user-1", "2024-06-01T12:00:00Z", hash))
	assert.False(t, signer.Verify("booking-1", "user-1", "2024-06-01T12:00:00Z", ""))
}

func TestSigner_SignAt_CanonicalForm(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	instant := time.Date(2024, 1, 1, 7, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	assert.Equal(t,
		signer.Sign("42", "7", "2024-01-01T00:00:00Z"),
		signer.SignAt("42", "7", instant),
	)
}
