// Package base contains the wire primitives of the RTSP protocol: request
// and response types, header maps and the RTSP method and status vocabulary.
package base

// Method is the method of an RTSP request.
type Method string

// methods supported by the control-plane core.
const (
	Options      Method = "OPTIONS"
	Describe     Method = "DESCRIBE"
	Setup        Method = "SETUP"
	Play         Method = "PLAY"
	Pause        Method = "PAUSE"
	Teardown     Method = "TEARDOWN"
	GetParameter Method = "GET_PARAMETER"
	SetParameter Method = "SET_PARAMETER"
)

// AllowedMethods is the value of the Public/Allow headers, in the fixed
// order the wire scenarios expect.
const AllowedMethods = "OPTIONS, DESCRIBE, SETUP, TEARDOWN, PLAY, PAUSE, GET_PARAMETER, SET_PARAMETER"
