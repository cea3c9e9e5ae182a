package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRangeEmpty(t *testing.T) {
	r, err := ParseRange("")
	require.NoError(t, err)
	require.False(t, r.SawRange)
}

func TestParseRangeClosed(t *testing.T) {
	r, err := ParseRange("npt=50.0-100.0")
	require.NoError(t, err)
	require.True(t, r.SawRange)
	require.Equal(t, 50.0, r.Start)
	require.Equal(t, 100.0, r.End)
}

func TestParseRangeOpenEnded(t *testing.T) {
	r, err := ParseRange("npt=10-")
	require.NoError(t, err)
	require.Equal(t, 10.0, r.Start)
	require.Equal(t, 0.0, r.End)
}

func TestParseRangeWrongUnitFails(t *testing.T) {
	_, err := ParseRange("smpte=0-10")
	require.Error(t, err)
}

func TestRangeFormatOpenEnded(t *testing.T) {
	r := Range{Start: 30}
	require.Equal(t, "npt=30.000-", r.Format())
}

func TestRangeFormatClosed(t *testing.T) {
	r := Range{Start: 30, End: 30}
	require.Equal(t, "npt=30.000-30.000", r.Format())
}
