package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseScaleAbsent(t *testing.T) {
	f, saw, err := ParseScale("")
	require.NoError(t, err)
	require.False(t, saw)
	require.Equal(t, DefaultScale, f)
}

func TestParseScalePresent(t *testing.T) {
	f, saw, err := ParseScale("2.0")
	require.NoError(t, err)
	require.True(t, saw)
	require.Equal(t, 2.0, f)
}

func TestParseScaleInvalid(t *testing.T) {
	_, _, err := ParseScale("fast")
	require.Error(t, err)
}
