package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNonceLengthAndUniqueness(t *testing.T) {
	a, err := GenerateNonce()
	require.NoError(t, err)
	require.Len(t, a, 32) // 16 bytes hex-encoded

	b, err := GenerateNonce()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
