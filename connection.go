package rtspd

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rtspkit/rtspd/pkg/base"
)

// errReadFailed and errBufferOverflow trigger the "drop connection
// silently" branch of spec.md §7; neither is ever written to the wire.
var (
	errReadFailed     = errors.New("connection: read failed")
	errBufferOverflow = errors.New("connection: request buffer overflow")
)

const (
	// requestBufferSize is the request buffer's fixed capacity; spec.md
	// §3 mandates at least 4 KiB, typically 10 KiB.
	requestBufferSize = 10 * 1024

	readChunkSize = 4 * 1024
)

// Connection owns exactly one client TCP socket and the RTSP session bound
// to it (spec.md §3). Per the concurrency model (SPEC_FULL.md §13), all of
// its fields below traceID are mutated only by the goroutine running
// Connection.serve; a second, dumb readLoop goroutine only frames bytes
// and forwards complete requests over reqCh.
type Connection struct {
	conn   net.Conn
	server *Server

	sessionID uint32
	// traceID is an internal, wire-invisible correlation id, minted the
	// way the teacher mints ServerSession.secretID (SPEC_FULL.md §10).
	traceID string

	bound             *MediaSession
	streamStates      []StreamState
	interleaveCounter int
	nonce             string
	active            bool

	livenessCancel func()
	livenessNote   chan struct{}
	timeoutFired   chan struct{}

	reqCh chan []byte
	errCh chan error
	done  chan struct{}

	// pendingPlay holds a synthetic PLAY request queued by SETUP when
	// x-playNow or Range was present, run immediately after SETUP's own
	// response is sent (spec.md §4.2 step 6, §9's post-response action
	// queue design note).
	pendingPlay *base.Request
}

func newConnection(conn net.Conn, server *Server, sessionID uint32) *Connection {
	return &Connection{
		conn:         conn,
		server:       server,
		sessionID:    sessionID,
		traceID:      strings.ReplaceAll(uuid.New().String(), "-", ""),
		active:       true,
		livenessNote: make(chan struct{}, 1),
		timeoutFired: make(chan struct{}, 1),
		reqCh:        make(chan []byte),
		errCh:        make(chan error, 1),
		done:         make(chan struct{}),
	}
}

// serve is the Connection's owning goroutine: it is the only goroutine
// that ever reads or writes the fields declared above, so none of them
// need a mutex.
func (c *Connection) serve() {
	defer c.destroy()

	go c.readLoop()

	c.resetLiveness()

	for c.active {
		select {
		case raw, ok := <-c.reqCh:
			if !ok {
				return
			}
			c.resetLiveness()
			c.dispatch(raw)

		case <-c.errCh:
			return

		case <-c.livenessNote:
			c.resetLiveness()

		case <-c.timeoutFired:
			return
		}
	}
}

// readLoop is the "dumb" half of the split: it only accumulates bytes and
// looks for CRLFCRLF boundaries, exactly the framing spec.md §4.2 steps
// 1-3 describe, then forwards each framed message whole. It never touches
// Connection state directly.
func (c *Connection) readLoop() {
	buf := make([]byte, 0, requestBufferSize)
	chunk := make([]byte, readChunkSize)

	for {
		n, err := c.conn.Read(chunk)
		if n <= 0 || err != nil {
			select {
			case c.errCh <- errReadFailed:
			default:
			}
			return
		}
		buf = append(buf, chunk[:n]...)

		for {
			idx := findCRLFCRLF(buf)
			if idx < 0 {
				break
			}
			msg := make([]byte, idx+4)
			copy(msg, buf[:idx+4])
			buf = buf[idx+4:]

			select {
			case c.reqCh <- msg:
			case <-c.done:
				return
			}
		}

		if len(buf) > requestBufferSize {
			select {
			case c.errCh <- errBufferOverflow:
			default:
			}
			return
		}
	}
}

func findCRLFCRLF(buf []byte) int {
	return bytes.Index(buf, []byte("\r\n\r\n"))
}

// writeResponse serializes resp into the fixed response buffer and
// transmits it in one write, per spec.md §4.2 step 5's "no partial writes
// are retried" contract.
func (c *Connection) writeResponse(resp *base.Response) {
	buf, err := resp.Marshal()
	if err != nil {
		c.active = false
		return
	}
	if _, err := c.conn.Write(buf); err != nil {
		c.active = false
	}
}

// resetLiveness reschedules the reclamation task for now+R, per spec.md
// §4.4. Called on every inbound request and on every liveness callback
// notification from the media layer.
func (c *Connection) resetLiveness() {
	if c.livenessCancel != nil {
		c.livenessCancel()
		c.livenessCancel = nil
	}
	r := c.server.ReclamationTestSeconds
	if r <= 0 {
		return
	}
	c.livenessCancel = c.server.scheduler().ScheduleOnce(time.Duration(r)*time.Second, func() {
		select {
		case c.timeoutFired <- struct{}{}:
		default:
		}
	})
}

// NoteLiveness lets the media layer refresh this Connection's reclamation
// deadline from any goroutine (spec.md §4.4: "any ... start/continue
// notification from the media layer ... reschedules the task"). It posts
// to the owning goroutine rather than mutating state directly, per the
// concurrency model.
func (c *Connection) NoteLiveness() {
	select {
	case c.livenessNote <- struct{}{}:
	default:
	}
}

// destroy runs the spec.md §3 Connection-destruction lifecycle: cancel the
// liveness task, release the bound MediaSession's reference (reclaiming
// every StreamState), and close the socket.
func (c *Connection) destroy() {
	close(c.done)
	if c.livenessCancel != nil {
		c.livenessCancel()
	}
	c.reclaimStreamStates()
	if c.bound != nil {
		c.server.Registry.Release(c.bound)
		c.bound = nil
	}
	c.conn.Close()
}

// reclaimStreamStates calls Subsession.DeleteStream for every non-nil
// token and clears the array, per spec.md §3.
func (c *Connection) reclaimStreamStates() {
	for i, ss := range c.streamStates {
		if ss.Token != nil {
			ss.Subsession.DeleteStream(c.sessionID, ss.Token)
		}
		c.streamStates[i] = StreamState{}
	}
	c.streamStates = nil
}

// rebind drops the current MediaSession binding (if any) so a subsequent
// SETUP can take ownership of a different stream. This follows the
// corrected behavior spec.md §9's Open Questions call out explicitly:
// the previous session's reference count is decremented and its
// StreamStates reclaimed, rather than silently dropped.
func (c *Connection) rebind() {
	c.reclaimStreamStates()
	if c.bound != nil {
		c.server.Registry.Release(c.bound)
		c.bound = nil
	}
}
