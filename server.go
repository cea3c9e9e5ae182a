// Package rtspd implements the RTSP (RFC 2326) control-plane server core:
// request framing, the session state machine, digest authentication and
// the process-wide stream registry. It never touches RTP/RTCP packets,
// SDP generation or media payload itself — those are reached only through
// the Subsession/MediaSession contract in media.go, which a host
// application implements (see examples/mediademo for a reference one).
package rtspd

import (
	"log"
	"net"
	"sync/atomic"

	"github.com/rtspkit/rtspd/pkg/auth"
)

// DefaultReclamationTestSeconds is the reclamation interval used when a
// Server is constructed without one explicitly (0 would disable it).
const DefaultReclamationTestSeconds = 65

// listenBacklog and minSendBufferBytes are spec.md §6.1's socket tuning
// values, grounded on the original's LISTEN_BACKLOG_SIZE and the
// increaseSendBufferTo(..., 50*1024) calls in setUpOurSocket and
// incomingConnectionHandler1 (RTSPServer.cpp).
const (
	listenBacklog      = 20
	minSendBufferBytes = 50 * 1024
)

// Server is the RTSP listening endpoint: it owns the Registry, the
// AuthDB, and the accept loop that mints one Connection per client
// socket (spec.md §2 "Server Root").
type Server struct {
	// RTSPAddress is the address to listen on, e.g. ":554" or "127.0.0.1:0".
	RTSPAddress string

	// ReclamationTestSeconds is R in spec.md §4.4; 0 disables reclamation.
	ReclamationTestSeconds int

	Registry *Registry
	AuthDB   *auth.AuthDB

	// SpecialClientAccessCheck, when set, is consulted first on every
	// DESCRIBE (SPEC_FULL.md §14, supplemented from the original
	// implementation's specialClientAccessCheck hook). A nil value
	// allows every client, matching the original's default.
	SpecialClientAccessCheck func(conn net.Conn, urlSuffix string) bool

	// ReceivingInterfaceAddr is the fallback IP used for URL-prefix
	// derivation (spec.md §4.6) when a per-connection address cannot be
	// read off the socket.
	ReceivingInterfaceAddr string

	// SchedulerOverride lets tests inject a deterministic Scheduler; the
	// zero value uses the real time.AfterFunc-backed one.
	SchedulerOverride Scheduler

	listener  net.Listener
	sessionID uint32
}

// NewServer builds a Server with a fresh Registry and the given address.
// AuthDB is left nil (no authentication) until the caller sets one.
func NewServer(rtspAddress string) *Server {
	return &Server{
		RTSPAddress:            rtspAddress,
		ReclamationTestSeconds: DefaultReclamationTestSeconds,
		Registry:               NewRegistry(),
	}
}

func (s *Server) scheduler() Scheduler {
	if s.SchedulerOverride != nil {
		return s.SchedulerOverride
	}
	return defaultScheduler
}

var defaultScheduler = NewScheduler()

// Listen opens the TCP listening socket per spec.md §6.1: a fixed backlog
// of 20 and a send buffer of at least 50 KiB, set by hand on unix via
// newTunedListener since neither is exposed by net.Listen.
func (s *Server) Listen() (net.Addr, error) {
	ln, err := newTunedListener(s.RTSPAddress)
	if err != nil {
		return nil, err
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Serve runs the accept loop until the listener is closed. Each accepted
// connection is handed a fresh, monotonically increasing session id and
// its own goroutine, per the concurrency model (SPEC_FULL.md §13).
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			if err := tc.SetWriteBuffer(minSendBufferBytes); err != nil {
				log.Printf("rtsp: SetWriteBuffer: %v", err)
			}
		}
		id := atomic.AddUint32(&s.sessionID, 1)
		c := newConnection(conn, s, id)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("rtsp: connection %s panicked: %v", c.traceID, r)
				}
			}()
			c.serve()
		}()
	}
}

// Close stops accepting new connections and shuts down the Registry's
// owning goroutine. In-flight Connections are left to close on their own.
func (s *Server) Close() error {
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.Registry.Close()
	return err
}

// urlPrefix derives the Content-Base prefix for conn, per spec.md §4.6:
// the interface IP of the accepted socket, port omitted when it is 554.
func (s *Server) urlPrefix(conn net.Conn) string {
	ip, port := s.hostPort(conn)
	if ip == "" {
		ip = s.ReceivingInterfaceAddr
	}
	if port == "554" || port == "" {
		return "rtsp://" + ip + "/"
	}
	return "rtsp://" + ip + ":" + port + "/"
}

// serverIP returns just the interface IP, for Transport-line "source="
// fields (spec.md §6.3).
func (s *Server) serverIP(conn net.Conn) string {
	ip, _ := s.hostPort(conn)
	if ip == "" {
		return s.ReceivingInterfaceAddr
	}
	return ip
}

func (s *Server) hostPort(conn net.Conn) (ip string, port string) {
	local := conn.LocalAddr()
	if local == nil {
		return "", ""
	}
	host, p, err := net.SplitHostPort(local.String())
	if err != nil {
		return "", ""
	}
	return host, p
}
