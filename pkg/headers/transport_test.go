package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTransportDefaultsOnEmpty(t *testing.T) {
	tr, err := ParseTransport("")
	require.NoError(t, err)
	require.Equal(t, DefaultTransport(), tr)
}

func TestParseTransportRTPTCPNoInterleaved(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP/TCP;unicast")
	require.NoError(t, err)
	require.Equal(t, StreamingModeRTPTCP, tr.Mode)
	require.False(t, tr.InterleavedSet)
}

func TestParseTransportInterleavedExplicit(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP/TCP;unicast;interleaved=4-5")
	require.NoError(t, err)
	require.True(t, tr.InterleavedSet)
	require.Equal(t, 4, tr.RTPChannelID)
	require.Equal(t, 5, tr.RTCPChannelID)
}

func TestParseTransportClientPortPair(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP;unicast;client_port=8000-8001")
	require.NoError(t, err)
	require.Equal(t, 8000, tr.ClientRTPPort)
	require.Equal(t, 8001, tr.ClientRTCPPort)
}

func TestParseTransportClientPortSingleRTP(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP;unicast;client_port=8000")
	require.NoError(t, err)
	require.Equal(t, 8000, tr.ClientRTPPort)
	require.Equal(t, 8001, tr.ClientRTCPPort)
}

func TestParseTransportClientPortSingleRAW(t *testing.T) {
	tr, err := ParseTransport("RAW/RAW/UDP;unicast;client_port=9000")
	require.NoError(t, err)
	require.Equal(t, StreamingModeRAWUDP, tr.Mode)
	require.Equal(t, 9000, tr.ClientRTPPort)
	require.Equal(t, 0, tr.ClientRTCPPort)
}

func TestParseTransportTTL(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP;multicast;ttl42")
	require.NoError(t, err)
	require.False(t, tr.Unicast)
	require.EqualValues(t, 42, tr.TTL)
}

func TestParseTransportUnknownFieldsIgnored(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP;unicast;mode=PLAY;nonsense")
	require.NoError(t, err)
	require.Equal(t, StreamingModeRTPUDP, tr.Mode)
}

func TestParseTransportMP2TVariant(t *testing.T) {
	tr, err := ParseTransport("MP2T/H2221/UDP;unicast")
	require.NoError(t, err)
	require.Equal(t, StreamingModeRAWUDP, tr.Mode)
	require.Equal(t, "MP2T/H2221/UDP", tr.RawMode)
}
