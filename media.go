package rtspd

import "net"

// StreamToken is the opaque per-(session,subsession) handle a Subsession
// hands back from GetStreamParameters and expects on every later call. The
// core never inspects it; a real implementation typically boxes an integer
// id plus a generation counter, as spec.md's redesign notes describe.
type StreamToken interface{}

// StreamParameters is the input side of Subsession.GetStreamParameters:
// everything the Session State Machine has already negotiated out of the
// client's Transport header.
type StreamParameters struct {
	SessionID      uint32
	ClientIP       net.IP
	ClientRTPPort  int
	ClientRTCPPort int

	// TCPConn is non-nil when the client asked for RTP-over-TCP
	// interleaving; the Subsession writes framed RTP/RTCP directly to it.
	TCPConn net.Conn

	RTPChannelID  int
	RTCPChannelID int
}

// StreamParametersOut is the output side of GetStreamParameters: what the
// Subsession decided about delivery, used to build the response Transport
// line per spec.md §6.3.
type StreamParametersOut struct {
	DestAddr       string
	DestTTL        uint8
	IsMulticast    bool
	ServerRTPPort  int
	ServerRTCPPort int
	Token          StreamToken
}

// Subsession is the per-track contract the core consumes; it is owned and
// implemented entirely outside this package (see examples/mediademo for a
// reference implementation). None of its methods may block for long: they
// run on the Connection's single goroutine.
type Subsession interface {
	// TrackID returns a stable identifier, unique within the parent
	// MediaSession, matched against the SETUP URL's urlSuffix.
	TrackID() string

	// Duration returns the subsession's duration in seconds; negative
	// signals "aggregate with mixed subsession durations".
	Duration() float64

	// GenerateSDPDescription returns a newly allocated SDP media
	// description fragment, or ok=false if one cannot be produced.
	GenerateSDPDescription() (sdp string, ok bool)

	// TestScaleFactor may adjust scale in place to the nearest value the
	// subsession actually supports.
	TestScaleFactor(scale *float64)

	// GetStreamParameters negotiates delivery for one SETUP and returns
	// the token the core will use for every later call on this track.
	GetStreamParameters(in StreamParameters) StreamParametersOut

	// StartStream begins or resumes delivery. liveness must be called
	// whenever the subsession wants to refresh the owning Connection's
	// reclamation deadline (e.g. on every RTCP sender report received).
	StartStream(sessionID uint32, token StreamToken, liveness func()) (rtpSeq uint32, rtpTimestamp uint32)

	PauseStream(sessionID uint32, token StreamToken)
	SeekStream(sessionID uint32, token StreamToken, npt float64)
	SetStreamScale(sessionID uint32, token StreamToken, scale float64)
	DeleteStream(sessionID uint32, token StreamToken)
}

// MediaSession is a named, registered stream: an ordered list of
// Subsessions plus the reference-counting/deferred-destruction state the
// Registry manages. Fields other than Name/Duration/Subsessions are
// mutated only by the Registry's owning goroutine (see registry.go).
type MediaSession struct {
	Name        string
	Duration    float64
	Subsessions []Subsession

	refCount   int
	pendingDel bool
}

// SubsessionByTrackID returns the subsession whose TrackID matches id, or
// nil if none does.
func (m *MediaSession) SubsessionByTrackID(id string) Subsession {
	for _, s := range m.Subsessions {
		if s.TrackID() == id {
			return s
		}
	}
	return nil
}

// StreamState is one track's binding within a Connection: which
// Subsession it refers to and the StreamToken negotiated for it. A nil
// Token means SETUP has not yet been called for this track.
type StreamState struct {
	Subsession Subsession
	Token      StreamToken
}
