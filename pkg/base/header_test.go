package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderNormalizesKnownKeys(t *testing.T) {
	h := make(Header)
	h.Set("cseq", "9")
	h.Set("rtp-info", "url=rtsp://h/cam/trackID=0")
	h.Set("www-authenticate", `Digest realm="r"`)
	h.Set("x-playnow", "")

	require.Equal(t, "9", h.Get("CSeq"))
	require.True(t, h.Has("x-playNow"))
	require.Equal(t, `Digest realm="r"`, h.Get("WWW-Authenticate"))
}

func TestHeaderGetMissingReturnsEmpty(t *testing.T) {
	h := make(Header)
	require.Equal(t, "", h.Get("Session"))
	require.False(t, h.Has("Session"))
}

func TestHeaderSetReplacesPreviousValue(t *testing.T) {
	h := make(Header)
	h.Set("CSeq", "1")
	h.Set("CSeq", "2")
	require.Equal(t, "2", h.Get("CSeq"))
}
