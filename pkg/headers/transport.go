// Package headers decodes and encodes the RTSP header fields the
// Session State Machine cares about: Transport, Session, Authorization,
// Range and Scale.
package headers

import (
	"strconv"
	"strings"

	"github.com/rtspkit/rtspd/pkg/base"
)

// StreamingMode is the delivery mode negotiated by a Transport header, per
// the recognized-fields table.
type StreamingMode int

// streaming modes.
const (
	StreamingModeRTPUDP StreamingMode = iota
	StreamingModeRTPTCP
	StreamingModeRAWUDP
)

const (
	unassignedChannelID = 0xFF
	defaultTTL          = 255
)

// Transport holds the parsed fields of a Transport header, defaulted the
// way the Wire Parser mandates when the header is absent or a field is
// missing from it.
type Transport struct {
	Mode StreamingMode
	// RawMode carries the literal wire token for RAW_UDP variants
	// (RAW/RAW/UDP vs MP2T/H2221/UDP), since both map to the same Mode.
	RawMode string

	Unicast     bool
	Destination string
	TTL         uint8

	ClientRTPPort  int
	ClientRTCPPort int

	InterleavedSet bool
	RTPChannelID   int
	RTCPChannelID  int
}

// DefaultTransport returns the Transport value implied by a missing header.
func DefaultTransport() Transport {
	return Transport{
		Mode:           StreamingModeRTPUDP,
		Unicast:        true,
		TTL:            defaultTTL,
		RTPChannelID:   unassignedChannelID,
		RTCPChannelID:  unassignedChannelID,
		ClientRTPPort:  0,
		ClientRTCPPort: 1,
	}
}

func parsePortPair(v string) (a, b int, single bool, err error) {
	parts := strings.SplitN(v, "-", 2)
	a, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, err
	}
	if len(parts) == 1 {
		return a, 0, true, nil
	}
	b, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false, err
	}
	return a, b, false, nil
}

// ParseTransport decodes a single Transport header value into t, starting
// from the field defaults and overriding whatever the client actually sent.
// Unrecognized fields are ignored, per the Wire Parser contract.
func ParseTransport(value string) (Transport, error) {
	t := DefaultTransport()
	if value == "" {
		return t, nil
	}

	fields := strings.Split(value, ";")

	for _, f := range fields {
		f = strings.TrimSpace(f)
		switch {
		case f == "RTP/AVP/TCP":
			t.Mode = StreamingModeRTPTCP

		case f == "RTP/AVP" || f == "RTP/AVP/UDP":
			t.Mode = StreamingModeRTPUDP

		case f == "RAW/RAW/UDP" || f == "MP2T/H2221/UDP":
			t.Mode = StreamingModeRAWUDP
			t.RawMode = f

		case f == "unicast":
			t.Unicast = true

		case f == "multicast":
			t.Unicast = false

		case strings.HasPrefix(f, "destination="):
			t.Destination = f[len("destination="):]

		case strings.HasPrefix(f, "ttl"):
			n, err := strconv.Atoi(f[len("ttl"):])
			if err == nil && n >= 0 && n <= 255 {
				t.TTL = uint8(n)
			}

		case strings.HasPrefix(f, "client_port="):
			a, b, single, err := parsePortPair(f[len("client_port="):])
			if err != nil {
				continue
			}
			t.ClientRTPPort = a
			if single {
				if t.Mode == StreamingModeRAWUDP {
					t.ClientRTCPPort = 0
				} else {
					t.ClientRTCPPort = a + 1
				}
			} else {
				t.ClientRTCPPort = b
			}

		case strings.HasPrefix(f, "interleaved="):
			a, b, single, err := parsePortPair(f[len("interleaved="):])
			if err != nil {
				continue
			}
			t.InterleavedSet = true
			t.RTPChannelID = a
			if single {
				t.RTCPChannelID = a
			} else {
				t.RTCPChannelID = b
			}
		}
	}

	return t, nil
}

// Write reconstructs the request-side Transport header value, for symmetry
// with ParseTransport.
func (t Transport) Write() base.HeaderValue {
	var parts []string

	switch t.Mode {
	case StreamingModeRTPTCP:
		parts = append(parts, "RTP/AVP/TCP")
	case StreamingModeRAWUDP:
		if t.RawMode != "" {
			parts = append(parts, t.RawMode)
		} else {
			parts = append(parts, "RAW/RAW/UDP")
		}
	default:
		parts = append(parts, "RTP/AVP")
	}

	if t.Unicast {
		parts = append(parts, "unicast")
	} else {
		parts = append(parts, "multicast")
	}

	if t.InterleavedSet {
		parts = append(parts, "interleaved="+strconv.Itoa(t.RTPChannelID)+"-"+strconv.Itoa(t.RTCPChannelID))
	} else if t.ClientRTPPort != 0 || t.ClientRTCPPort != 0 {
		parts = append(parts, "client_port="+strconv.Itoa(t.ClientRTPPort)+"-"+strconv.Itoa(t.ClientRTCPPort))
	}

	return base.HeaderValue{strings.Join(parts, ";")}
}
