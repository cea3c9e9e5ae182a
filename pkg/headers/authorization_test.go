package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAuthorizationDigest(t *testing.T) {
	value := `Digest username="alice", realm="RTSPD Streaming Media", nonce="abc123", uri="rtsp://h/cam", response="deadbeef"`

	a, err := ParseAuthorization(value)
	require.NoError(t, err)
	require.Equal(t, "alice", a.Username)
	require.Equal(t, "RTSPD Streaming Media", a.Realm)
	require.Equal(t, "abc123", a.Nonce)
	require.Equal(t, "rtsp://h/cam", a.URI)
	require.Equal(t, "deadbeef", a.Response)
}

func TestParseAuthorizationRejectsBasic(t *testing.T) {
	_, err := ParseAuthorization(`Basic dXNlcjpwYXNz`)
	require.Error(t, err)
}

func TestParseAuthorizationIgnoresUnknownKeys(t *testing.T) {
	a, err := ParseAuthorization(`Digest username="bob", algorithm="MD5", qop="auth"`)
	require.NoError(t, err)
	require.Equal(t, "bob", a.Username)
}
