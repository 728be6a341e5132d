// Package ipc provides the local socket the pastecopy daemon listens on.
// CLI sub-commands and other local front-ends connect to it to reach the
// running history service.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/pastecopy.sock, else $TMPDIR/pastecopy.sock
//   - Windows:       \\.\pipe\pastecopy
//
// $PASTECOPY_SOCKET overrides the default on every platform.
package ipc

import (
	"context"
	"net"
	"os"
	"time"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
func SocketPath() string {
	if s := os.Getenv("PASTECOPY_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// Listen creates a listener on path. On Unix a stale socket file from a
// previous (crashed) run is removed first and the socket is restricted to
// the owner.
func Listen(path string) (net.Listener, error) {
	return listenIPC(path)
}

// Dial connects to the socket at path.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	return dialIPC(ctx, path)
}

// IsRunning reports whether something is listening on path. It does a cheap
// dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := Dial(ctx, path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
