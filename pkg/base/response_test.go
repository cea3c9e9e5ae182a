package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseMarshalNoBody(t *testing.T) {
	resp := NewResponse(StatusOK)
	resp.Header.Set("CSeq", "1")

	raw, err := resp.Marshal()
	require.NoError(t, err)
	require.Equal(t, "RTSP/1.0 200 OK\r\nCSeq: 1\r\n\r\n", string(raw))
}

func TestResponseMarshalSetsContentLength(t *testing.T) {
	resp := NewResponse(StatusOK)
	resp.Header.Set("CSeq", "2")
	resp.Body = []byte("v=0\r\n")

	raw, err := resp.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(raw), "Content-Length: 5\r\n")
	require.Contains(t, string(raw), "v=0\r\n")
}

func TestResponseMarshalDefaultsReasonPhrase(t *testing.T) {
	resp := &Response{StatusCode: StatusNotFound, Header: make(Header)}

	raw, err := resp.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(raw), "RTSP/1.0 404 Stream Not Found\r\n")
}

func TestResponseMarshalHeadersSorted(t *testing.T) {
	resp := NewResponse(StatusOK)
	resp.Header.Set("Session", "12345")
	resp.Header.Set("CSeq", "3")

	raw, err := resp.Marshal()
	require.NoError(t, err)
	require.Equal(t, "RTSP/1.0 200 OK\r\nCSeq: 3\r\nSession: 12345\r\n\r\n", string(raw))
}
