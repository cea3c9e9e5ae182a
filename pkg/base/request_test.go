package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequestOptions(t *testing.T) {
	raw := []byte("OPTIONS rtsp://192.168.1.1:8554/ RTSP/1.0\r\n" +
		"CSeq: 1\r\n" +
		"\r\n")

	req, err := ParseRequest(raw)
	require.NoError(t, err)
	require.Equal(t, Options, req.Method)
	require.Equal(t, "1", req.CSeq)
}

func TestParseRequestDescribeMiss(t *testing.T) {
	raw := []byte("DESCRIBE rtsp://192.168.1.1/nope RTSP/1.0\r\n" +
		"CSeq: 2\r\n" +
		"\r\n")

	req, err := ParseRequest(raw)
	require.NoError(t, err)
	require.Equal(t, Describe, req.Method)
	require.Equal(t, "", req.URLPreSuffix)
	require.Equal(t, "nope", req.URLSuffix)
}

func TestParseRequestSetupTrackSplit(t *testing.T) {
	raw := []byte("SETUP rtsp://192.168.1.1/cam/trackID=0 RTSP/1.0\r\n" +
		"CSeq: 3\r\n" +
		"Transport: RTP/AVP/TCP\r\n" +
		"\r\n")

	req, err := ParseRequest(raw)
	require.NoError(t, err)
	require.Equal(t, Setup, req.Method)
	require.Equal(t, "cam", req.URLPreSuffix)
	require.Equal(t, "trackID=0", req.URLSuffix)
	require.Equal(t, "RTP/AVP/TCP", req.Header.Get("Transport"))
}

func TestParseRequestMissingCSeqEchoesEmpty(t *testing.T) {
	raw := []byte("OPTIONS rtsp://192.168.1.1/ RTSP/1.0\r\n\r\n")

	req, err := ParseRequest(raw)
	require.NoError(t, err)
	require.Equal(t, "", req.CSeq)
}

func TestParseRequestBadProtocolFails(t *testing.T) {
	raw := []byte("OPTIONS rtsp://192.168.1.1/ HTTP/1.1\r\n\r\n")

	_, err := ParseRequest(raw)
	require.Error(t, err)
}

func TestParseRequestQueryStripped(t *testing.T) {
	raw := []byte("DESCRIBE rtsp://192.168.1.1/cam?x=1 RTSP/1.0\r\n" +
		"CSeq: 4\r\n" +
		"\r\n")

	req, err := ParseRequest(raw)
	require.NoError(t, err)
	require.Equal(t, "cam", req.URLSuffix)
	require.Equal(t, "?x=1", req.Query)
}

func TestParseRequestRepeatedHeaderKeepsOrder(t *testing.T) {
	raw := []byte("OPTIONS rtsp://h/ RTSP/1.0\r\n" +
		"CSeq: 5\r\n" +
		"Via: a\r\n" +
		"Via: b\r\n" +
		"\r\n")

	req, err := ParseRequest(raw)
	require.NoError(t, err)
	require.Equal(t, HeaderValue{"a", "b"}, req.Header["Via"])
}
