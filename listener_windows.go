//go:build windows

package rtspd

import "net"

// newTunedListener falls back to a plain net.Listen on windows: setting
// the raw listen() backlog and SO_SNDBUF on the listening socket itself
// needs golang.org/x/sys/windows syscalls this repo doesn't otherwise pull
// in. See DESIGN.md for that Non-goal; the per-client send buffer (a
// portable net.TCPConn.SetWriteBuffer call in Serve) is still tuned here.
func newTunedListener(address string) (net.Listener, error) {
	return net.Listen("tcp4", address)
}
