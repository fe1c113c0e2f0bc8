// Package hostapd talks to the hostapd control interface and broadcasts
// Remote ID as a vendor specific element of the Wi-Fi beacon.
package hostapd

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
)

var logger = transmitter.NewLogger("hostapd")

// DefaultCtrlPath is the control socket of the first hostapd interface in
// the default configuration.
const DefaultCtrlPath = "/var/run/hostapd/wlan0"

var (
	// ErrTimeout is returned when hostapd did not reply in time.
	ErrTimeout = errors.New("hostapd: request timed out")

	// ErrFailed is returned when hostapd rejected a request.
	ErrFailed = errors.New("hostapd: request failed")
)

var seq uint32

// An Option configures a Conn.
type Option func(*Conn)

// OptLocalDir sets the directory of the client socket.
func OptLocalDir(dir string) Option {
	return func(c *Conn) { c.localDir = dir }
}

// OptTimeout bounds the wait for each reply.
func OptTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Conn is a connection to one hostapd control socket.
type Conn struct {
	mu      sync.Mutex
	conn    *net.UnixConn
	local   string
	timeout time.Duration

	localDir string
	ready    chan struct{}
}

// Dial connects to the control socket at ctrlPath and starts the PING
// handshake. Ready is closed once hostapd answered.
func Dial(ctrlPath string, opts ...Option) (*Conn, error) {
	if ctrlPath == "" {
		ctrlPath = DefaultCtrlPath
	}
	c := &Conn{
		timeout:  3 * time.Second,
		localDir: os.TempDir(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.local = filepath.Join(c.localDir, fmt.Sprintf("ridtx_ctrl_%d-%d", os.Getpid(), atomic.AddUint32(&seq, 1)))
	laddr := &net.UnixAddr{Name: c.local, Net: "unixgram"}
	raddr := &net.UnixAddr{Name: ctrlPath, Net: "unixgram"}
	conn, err := net.DialUnix("unixgram", laddr, raddr)
	if err != nil {
		os.Remove(c.local)
		return nil, errors.Wrapf(err, "can't connect to hostapd at %s", ctrlPath)
	}
	c.conn = conn
	logger.Info("connected", "ctrl", ctrlPath)

	go func() {
		for {
			reply, err := c.Request("PING")
			if err == nil && reply == "PONG" {
				close(c.ready)
				return
			}
			if errors.Cause(err) != ErrTimeout {
				logger.Error("handshake failed", "reply", reply, "err", err)
				return
			}
		}
	}()
	return c, nil
}

// Ready is closed after hostapd answered the handshake.
func (c *Conn) Ready() <-chan struct{} { return c.ready }

// Request sends a command and returns the reply without the trailing
// newline. Unsolicited event messages are skipped.
func (c *Conn) Request(cmd string, args ...string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := strings.Join(append([]string{cmd}, args...), " ")
	logger.Debug("request", "cmd", cmd, "len", len(req))
	if _, err := c.conn.Write([]byte(req)); err != nil {
		return "", errors.Wrapf(err, "can't send %s", cmd)
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", errors.Wrap(err, "hostapd")
	}
	b := make([]byte, 4096)
	for {
		n, err := c.conn.Read(b)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return "", errors.Wrap(ErrTimeout, cmd)
			}
			return "", errors.Wrapf(err, "can't read reply to %s", cmd)
		}
		reply := string(b[:n])
		if strings.HasPrefix(reply, "<") {
			logger.Debug("event", "msg", strings.TrimSpace(reply))
			continue
		}
		return strings.TrimRight(reply, "\n"), nil
	}
}

func (c *Conn) expectOK(cmd string, args ...string) error {
	reply, err := c.Request(cmd, args...)
	if err != nil {
		return err
	}
	if reply != "OK" {
		return errors.Wrapf(ErrFailed, "%s: %s", cmd, reply)
	}
	return nil
}

// Set changes a configuration parameter.
func (c *Conn) Set(name, value string) error { return c.expectOK("SET", name, value) }

// UpdateBeacon makes hostapd rebuild the beacon from its configuration.
func (c *Conn) UpdateBeacon() error { return c.expectOK("UPDATE_BEACON") }

// Close closes the connection and removes the client socket.
func (c *Conn) Close() error {
	err := c.conn.Close()
	os.Remove(c.local)
	return err
}
