package rtspd

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rtspkit/rtspd/pkg/auth"
	"github.com/rtspkit/rtspd/pkg/base"
	"github.com/rtspkit/rtspd/pkg/headers"
	"github.com/rtspkit/rtspd/pkg/liberrors"
)

// dispatch parses one already-framed request and writes exactly one
// response, per spec.md §4.2 step 4-5. A parse failure short-circuits to
// 400 Bad Request with no CSeq echo, since the CSeq header may not have
// been reached before the parser gave up.
func (c *Connection) dispatch(raw []byte) {
	req, err := base.ParseRequest(raw)
	if err != nil {
		c.writeResponse(c.errorResponse(liberrors.ErrParse{Err: err}, ""))
		return
	}

	resp := c.handle(req)
	c.writeResponse(resp)

	if c.active && req.Method == base.Setup && c.pendingPlay != nil {
		pending := c.pendingPlay
		c.pendingPlay = nil
		c.writeResponse(c.handlePlay(pending))
	}
}

// errorResponse translates a pkg/liberrors value into the wire response
// spec.md §7's taxonomy assigns it. This is the one place typed errors
// cross into base.Response; everything below it in the call stack stays
// in terms of liberrors values, and nothing above it ever sees one.
func (c *Connection) errorResponse(err error, cseq string) *base.Response {
	var (
		errParse       liberrors.ErrParse
		errNotAllowed  liberrors.ErrMethodNotAllowed
		errNotFound    liberrors.ErrStreamNotFound
		errUnsupported liberrors.ErrUnsupportedTransport
		errAuth        liberrors.ErrAuthRequired
		errNoSession   liberrors.ErrNoSession
		errSDP         liberrors.ErrSDPUnavailable
		errBadRequest  liberrors.ErrBadRequest
	)

	switch {
	case errors.As(err, &errParse):
		resp := base.NewResponse(base.StatusBadRequest)
		resp.Header.Set("Allow", base.AllowedMethods)
		setDate(resp)
		return resp

	case errors.As(err, &errNotAllowed), errors.As(err, &errNoSession):
		resp := base.NewResponse(base.StatusMethodNotAllowed)
		resp.Header.Set("CSeq", cseq)
		resp.Header.Set("Allow", base.AllowedMethods)
		setDate(resp)
		return resp

	case errors.As(err, &errNotFound):
		resp := base.NewResponse(base.StatusNotFound)
		resp.Header.Set("CSeq", cseq)
		setDate(resp)
		c.active = false
		return resp

	case errors.As(err, &errUnsupported):
		resp := base.NewResponse(base.StatusUnsupportedTransport)
		resp.Header.Set("CSeq", cseq)
		setDate(resp)
		c.active = false
		return resp

	case errors.As(err, &errSDP):
		resp := base.NewResponse(base.StatusNotFound)
		resp.StatusMessage = "File Not Found, Or In Incorrect Format"
		resp.Header.Set("CSeq", cseq)
		setDate(resp)
		c.active = false
		return resp

	case errors.As(err, &errBadRequest):
		resp := base.NewResponse(base.StatusBadRequest)
		resp.Header.Set("Allow", base.AllowedMethods)
		setDate(resp)
		return resp

	case errors.As(err, &errAuth):
		return c.challengeOrReject(&base.Request{CSeq: cseq}, base.StatusUnauthorized)

	default:
		resp := base.NewResponse(base.StatusInternalServerError)
		resp.Header.Set("CSeq", cseq)
		setDate(resp)
		return resp
	}
}

func (c *Connection) handle(req *base.Request) *base.Response {
	switch req.Method {
	case base.Options:
		return c.handleOptions(req)
	case base.Describe:
		return c.handleDescribe(req)
	case base.Setup:
		return c.handleSetup(req)
	case base.Play:
		return c.handlePlay(req)
	case base.Pause:
		return c.handlePause(req)
	case base.Teardown:
		return c.handleTeardown(req)
	case base.GetParameter:
		return c.handleGetParameter(req)
	case base.SetParameter:
		return c.methodNotAllowed(req.CSeq)
	default:
		return c.methodNotAllowed(req.CSeq)
	}
}

func setDate(resp *base.Response) {
	resp.Header.Set("Date", time.Now().UTC().Format("Mon, Jan 02 2006 15:04:05 GMT"))
}

func (c *Connection) methodNotAllowed(cseq string) *base.Response {
	return c.errorResponse(liberrors.ErrMethodNotAllowed{}, cseq)
}

func (c *Connection) notFound(cseq string) *base.Response {
	return c.errorResponse(liberrors.ErrStreamNotFound{}, cseq)
}

func (c *Connection) badRequest(cseq string) *base.Response {
	return c.errorResponse(liberrors.ErrBadRequest{}, cseq)
}

func (c *Connection) unsupportedTransport(cseq string) *base.Response {
	return c.errorResponse(liberrors.ErrUnsupportedTransport{}, cseq)
}

// handleOptions implements spec.md §4.3 OPTIONS: valid in any state.
func (c *Connection) handleOptions(req *base.Request) *base.Response {
	resp := base.NewResponse(base.StatusOK)
	resp.Header.Set("CSeq", req.CSeq)
	resp.Header.Set("Public", base.AllowedMethods)
	return resp
}

// handleDescribe implements spec.md §4.3 DESCRIBE.
func (c *Connection) handleDescribe(req *base.Request) *base.Response {
	if c.server.SpecialClientAccessCheck != nil &&
		!c.server.SpecialClientAccessCheck(c.conn, req.URLSuffix) {
		return c.plainUnauthorized(req.CSeq)
	}

	if c.server.AuthDB != nil {
		if err := c.authenticate(req); err != nil {
			return c.errorResponse(err, req.CSeq)
		}
	}

	streamName := req.URLSuffix
	if streamName == "" {
		streamName = req.URLPreSuffix
	}

	m := c.server.Registry.Lookup(streamName)
	if m == nil {
		return c.notFound(req.CSeq)
	}

	sdp, ok := describeSDP(m)
	if !ok {
		return c.errorResponse(liberrors.ErrSDPUnavailable{}, req.CSeq)
	}

	resp := base.NewResponse(base.StatusOK)
	resp.Header.Set("CSeq", req.CSeq)
	resp.Header.Set("Content-Base", c.server.urlPrefix(c.conn)+m.Name+"/")
	resp.Header.Set("Content-Type", "application/sdp")
	resp.Body = []byte(sdp)
	return resp
}

// describeSDP concatenates every subsession's SDP fragment; a null result
// from any of them fails the whole DESCRIBE, per spec.md §7.
func describeSDP(m *MediaSession) (string, bool) {
	var b strings.Builder
	for _, s := range m.Subsessions {
		frag, ok := s.GenerateSDPDescription()
		if !ok {
			return "", false
		}
		b.WriteString(frag)
	}
	return b.String(), true
}

// authenticate runs the Auth Engine (spec.md §4.5), returning a non-nil
// liberrors.ErrAuthRequired on any failure. The caller turns that into a
// fresh-nonce 401 via challengeOrReject; nothing else in this package
// constructs an ErrAuthRequired directly.
func (c *Connection) authenticate(req *base.Request) error {
	if c.nonce == "" {
		return liberrors.ErrAuthRequired{}
	}

	av := req.Header.Get("Authorization")
	if av == "" {
		return liberrors.ErrAuthRequired{}
	}

	parsed, err := headers.ParseAuthorization(av)
	if err != nil {
		return liberrors.ErrAuthRequired{Err: err}
	}
	if parsed.URI == "" {
		parsed.URI = req.RawURL
	}

	if err := c.server.AuthDB.Verify(parsed, string(req.Method), c.nonce); err != nil {
		return liberrors.ErrAuthRequired{Err: err}
	}

	return nil
}

// plainUnauthorized answers a failed SpecialClientAccessCheck with a bare
// 401: no WWW-Authenticate, regardless of whether digest auth is
// configured. Grounded on the original's authenticationOK
// (RTSPServer.cpp lines 1190-1200), which handles this check on a wholly
// separate, earlier path from the digest-failure case challengeOrReject
// serves below.
func (c *Connection) plainUnauthorized(cseq string) *base.Response {
	resp := base.NewResponse(base.StatusUnauthorized)
	resp.Header.Set("CSeq", cseq)
	setDate(resp)
	return resp
}

// challengeOrReject answers with code. For a 401 with digest auth
// configured it also mints a fresh nonce and adds WWW-Authenticate, per
// spec.md §4.5's "on failure, generate a new random nonce ... and respond
// 401"; any other code gets a bare response with CSeq and Date only.
func (c *Connection) challengeOrReject(req *base.Request, code base.StatusCode) *base.Response {
	resp := base.NewResponse(code)
	resp.Header.Set("CSeq", req.CSeq)
	setDate(resp)

	if code == base.StatusUnauthorized && c.server.AuthDB != nil {
		nonce, err := auth.GenerateNonce()
		if err == nil {
			c.nonce = nonce
			resp.Header.Set("WWW-Authenticate",
				fmt.Sprintf(`Digest realm="%s", nonce="%s"`, c.server.AuthDB.Realm, nonce))
		}
	}
	return resp
}

// handleSetup implements spec.md §4.3 SETUP in full: rebind, lookup
// fallback, subsession resolution, transport negotiation, interleave
// channel assignment, and Transport-line construction (§6.3).
func (c *Connection) handleSetup(req *base.Request) *base.Response {
	streamName := req.URLPreSuffix
	trackID := req.URLSuffix

	if c.bound != nil && c.bound.Name != streamName {
		c.rebind()
	}

	if c.bound == nil {
		m := c.server.Registry.Bind(streamName)
		if m == nil && trackID != "" {
			if alt := c.server.Registry.Bind(trackID); alt != nil {
				m = alt
				streamName = trackID
				trackID = ""
			}
		}
		if m == nil {
			return c.notFound(req.CSeq)
		}

		c.bound = m
		c.streamStates = make([]StreamState, len(m.Subsessions))
		for i, s := range m.Subsessions {
			c.streamStates[i] = StreamState{Subsession: s}
		}
	}

	idx := -1
	if trackID != "" {
		for i, ss := range c.streamStates {
			if ss.Subsession.TrackID() == trackID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return c.notFound(req.CSeq)
		}
	} else if len(c.streamStates) == 1 {
		idx = 0
	} else {
		return c.badRequest(req.CSeq)
	}

	transport, _ := headers.ParseTransport(req.Header.Get("Transport"))

	if transport.Mode == headers.StreamingModeRTPTCP && !transport.InterleavedSet {
		transport.RTPChannelID = c.interleaveCounter
		transport.RTCPChannelID = c.interleaveCounter + 1
	}
	c.interleaveCounter += 2

	streamAfterSetup := req.Header.Has("x-playNow") || req.Header.Has("Range")

	clientIP := remoteIP(c.conn)
	var tcpConn net.Conn
	if transport.Mode == headers.StreamingModeRTPTCP {
		tcpConn = c.conn
	}

	ss := &c.streamStates[idx]
	out := ss.Subsession.GetStreamParameters(StreamParameters{
		SessionID:      c.sessionID,
		ClientIP:       clientIP,
		ClientRTPPort:  transport.ClientRTPPort,
		ClientRTCPPort: transport.ClientRTCPPort,
		TCPConn:        tcpConn,
		RTPChannelID:   transport.RTPChannelID,
		RTCPChannelID:  transport.RTCPChannelID,
	})
	ss.Token = out.Token

	if out.IsMulticast && transport.Mode == headers.StreamingModeRTPTCP {
		return c.unsupportedTransport(req.CSeq)
	}

	resp := base.NewResponse(base.StatusOK)
	resp.Header.Set("CSeq", req.CSeq)
	resp.Header.Set("Session", headers.FormatSession(c.sessionID))
	resp.Header.Set("Transport", buildTransportLine(transport, out, clientIPString(clientIP), c.server.serverIP(c.conn)))

	if streamAfterSetup {
		c.pendingPlay = &base.Request{
			Method:       base.Play,
			URLPreSuffix: streamName,
			URLSuffix:    trackID,
			CSeq:         req.CSeq,
			Header:       make(base.Header),
		}
	}

	return resp
}

func remoteIP(conn net.Conn) net.IP {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil
	}
	return net.ParseIP(host)
}

func clientIPString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}

func rawModeString(t headers.Transport) string {
	if t.RawMode != "" {
		return t.RawMode
	}
	return "RAW/RAW/UDP"
}

// buildTransportLine renders the response-side Transport header, per the
// five wire formats spec.md §6.3 enumerates.
func buildTransportLine(t headers.Transport, out StreamParametersOut, clientIP, serverIP string) string {
	dest := out.DestAddr
	if dest == "" {
		dest = clientIP
	}

	switch {
	case out.IsMulticast && t.Mode == headers.StreamingModeRTPUDP:
		return fmt.Sprintf("RTP/AVP;multicast;destination=%s;source=%s;port=%d-%d;ttl=%d",
			dest, serverIP, out.ServerRTPPort, out.ServerRTCPPort, out.DestTTL)

	case out.IsMulticast:
		return fmt.Sprintf("%s;multicast;destination=%s;source=%s;port=%d;ttl=%d",
			rawModeString(t), dest, serverIP, out.ServerRTPPort, out.DestTTL)

	case t.Mode == headers.StreamingModeRTPTCP:
		return fmt.Sprintf("RTP/AVP/TCP;unicast;destination=%s;source=%s;interleaved=%d-%d",
			dest, serverIP, t.RTPChannelID, t.RTCPChannelID)

	case t.Mode == headers.StreamingModeRAWUDP:
		return fmt.Sprintf("%s;unicast;destination=%s;source=%s;client_port=%d;server_port=%d",
			rawModeString(t), dest, serverIP, t.ClientRTPPort, out.ServerRTPPort)

	default:
		return fmt.Sprintf("RTP/AVP;unicast;destination=%s;source=%s;client_port=%d-%d;server_port=%d-%d",
			dest, serverIP, t.ClientRTPPort, t.ClientRTCPPort, out.ServerRTPPort, out.ServerRTCPPort)
	}
}

// affectedStates resolves which StreamStates a PLAY/PAUSE request scopes
// to: a single track when the URL names one, otherwise every track
// (aggregate operation), per spec.md §4.3 PLAY.
func (c *Connection) affectedStates(req *base.Request) (indices []int, aggregate bool) {
	if c.bound != nil && req.URLPreSuffix == c.bound.Name && req.URLSuffix != "" {
		for i, ss := range c.streamStates {
			if ss.Subsession.TrackID() == req.URLSuffix {
				return []int{i}, false
			}
		}
	}
	all := make([]int, len(c.streamStates))
	for i := range c.streamStates {
		all[i] = i
	}
	return all, true
}

// handlePlay implements spec.md §4.3 PLAY.
func (c *Connection) handlePlay(req *base.Request) *base.Response {
	if c.bound == nil {
		return c.errorResponse(liberrors.ErrNoSession{}, req.CSeq)
	}

	scale := headers.DefaultScale
	sawScale := false
	if v := req.Header.Get("Scale"); v != "" {
		var err error
		scale, sawScale, err = headers.ParseScale(v)
		if err != nil {
			return c.badRequest(req.CSeq)
		}
	}

	rng, err := headers.ParseRange(req.Header.Get("Range"))
	if err != nil {
		return c.badRequest(req.CSeq)
	}

	indices, aggregate := c.affectedStates(req)

	var duration float64
	if !aggregate && len(indices) == 1 {
		duration = c.streamStates[indices[0]].Subsession.Duration()
	} else {
		duration = c.bound.Duration
	}
	if duration < 0 {
		duration = -duration
	}

	if sawScale && len(indices) > 0 {
		c.streamStates[indices[0]].Subsession.TestScaleFactor(&scale)
	}

	rangeStart, rangeEnd := rng.Start, rng.End
	if rangeEnd <= 0 || rangeEnd > duration {
		rangeEnd = duration
	}
	if rangeStart < 0 {
		rangeStart = 0
	} else if rangeEnd > 0 && scale > 0 && rangeStart > rangeEnd {
		rangeStart = rangeEnd
	}

	var rtpInfos []string
	for _, idx := range indices {
		ss := &c.streamStates[idx]
		if ss.Token == nil {
			continue
		}
		if sawScale {
			ss.Subsession.SetStreamScale(c.sessionID, ss.Token, scale)
		}
		if rng.SawRange {
			ss.Subsession.SeekStream(c.sessionID, ss.Token, rangeStart)
		}
		seq, ts := ss.Subsession.StartStream(c.sessionID, ss.Token, c.NoteLiveness)
		rtpInfos = append(rtpInfos, fmt.Sprintf("url=%s%s/%s;seq=%d;rtptime=%d",
			c.server.urlPrefix(c.conn), c.bound.Name, ss.Subsession.TrackID(), seq, ts))
	}

	resp := base.NewResponse(base.StatusOK)
	resp.Header.Set("CSeq", req.CSeq)
	resp.Header.Set("Session", headers.FormatSession(c.sessionID))
	if sawScale {
		resp.Header.Set("Scale", strconv.FormatFloat(scale, 'f', -1, 64))
	}
	if rng.SawRange {
		resp.Header.Set("Range", (headers.Range{Start: rangeStart, End: rangeEnd}).Format())
	}
	if len(rtpInfos) > 0 {
		resp.Header.Set("RTP-Info", strings.Join(rtpInfos, ","))
	}
	return resp
}

// handlePause implements spec.md §4.3 PAUSE.
func (c *Connection) handlePause(req *base.Request) *base.Response {
	if c.bound == nil {
		return c.errorResponse(liberrors.ErrNoSession{}, req.CSeq)
	}

	indices, _ := c.affectedStates(req)
	for _, idx := range indices {
		ss := &c.streamStates[idx]
		if ss.Token != nil {
			ss.Subsession.PauseStream(c.sessionID, ss.Token)
		}
	}

	resp := base.NewResponse(base.StatusOK)
	resp.Header.Set("CSeq", req.CSeq)
	resp.Header.Set("Session", headers.FormatSession(c.sessionID))
	return resp
}

// handleTeardown implements spec.md §4.3 TEARDOWN: respond, then latch
// sessionActive=false so the Connection is destroyed once the response
// has been sent (spec.md §3, §4.2 step 8).
func (c *Connection) handleTeardown(req *base.Request) *base.Response {
	if c.bound == nil {
		return c.errorResponse(liberrors.ErrNoSession{}, req.CSeq)
	}

	resp := base.NewResponse(base.StatusOK)
	resp.Header.Set("CSeq", req.CSeq)
	resp.Header.Set("Session", headers.FormatSession(c.sessionID))
	c.active = false
	return resp
}

// handleGetParameter is treated purely as a keep-alive, per spec.md §4.3:
// 200 with Session and an empty body, unconditionally — sessionID is
// minted at connection-accept time, independent of any SETUP binding.
func (c *Connection) handleGetParameter(req *base.Request) *base.Response {
	resp := base.NewResponse(base.StatusOK)
	resp.Header.Set("CSeq", req.CSeq)
	resp.Header.Set("Session", headers.FormatSession(c.sessionID))
	return resp
}
