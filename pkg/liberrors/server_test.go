package liberrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrParseUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := ErrParse{Err: inner}

	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "boom")
}

func TestErrAuthRequiredWithoutCause(t *testing.T) {
	err := ErrAuthRequired{}
	require.Equal(t, "authentication required", err.Error())
	require.Nil(t, err.Unwrap())
}

func TestErrMethodNotAllowedMessage(t *testing.T) {
	err := ErrMethodNotAllowed{Method: "ANNOUNCE"}
	require.Contains(t, err.Error(), "ANNOUNCE")
}
