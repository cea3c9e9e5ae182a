//go:build !windows

package rtspd

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// newTunedListener opens the RTSP listening socket by hand, the way the
// original's setUpOurSocket does: SO_SNDBUF raised to minSendBufferBytes
// before listen(), and a fixed backlog of listenBacklog, neither of which
// net.Listen lets a caller specify. IPv4 only, matching the original's
// sockaddr_in-based socket setup.
func newTunedListener(address string) (net.Listener, error) {
	addr, err := net.ResolveTCPAddr("tcp4", address)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("rtspd: socket: %w", err)
	}
	closeOnErr := true
	defer func() {
		if closeOnErr {
			unix.Close(fd)
		}
	}()

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("rtspd: SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, minSendBufferBytes); err != nil {
		return nil, fmt.Errorf("rtspd: SO_SNDBUF: %w", err)
	}

	var sa unix.SockaddrInet4
	sa.Port = addr.Port
	if ip4 := addr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}
	if err := unix.Bind(fd, &sa); err != nil {
		return nil, fmt.Errorf("rtspd: bind: %w", err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		return nil, fmt.Errorf("rtspd: listen: %w", err)
	}

	f := os.NewFile(uintptr(fd), "rtspd-listener")
	ln, err := net.FileListener(f)
	f.Close() // FileListener dups fd; our copy (and the *os.File) close either way
	if err != nil {
		return nil, fmt.Errorf("rtspd: FileListener: %w", err)
	}
	closeOnErr = false
	return ln, nil
}
