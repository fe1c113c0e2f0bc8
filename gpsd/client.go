// Package gpsd reads position reports from a gpsd daemon over its JSON
// socket protocol.
package gpsd

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
)

var logger = transmitter.NewLogger("gpsd")

// ErrTimeout is returned when a report is not complete in time.
var ErrTimeout = errors.New("gpsd: report incomplete")

// DefaultAddress is where gpsd listens by default.
const DefaultAddress = "localhost:2947"

// DefaultReadTimeout bounds Read until WaitReady sets the timeout.
const DefaultReadTimeout = time.Second

const watch = `?WATCH={"enable":true,"json":true};` + "\n"

// Client is a connection to gpsd with reporting enabled.
type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	tmo     time.Duration
	partial []byte

	mu  sync.Mutex
	fix Fix
}

// Dial connects to gpsd at addr and enables JSON reports.
func Dial(addr string) (*Client, error) {
	if addr == "" {
		addr = DefaultAddress
	}
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, errors.Wrapf(err, "can't connect to gpsd at %s", addr)
	}
	if _, err := conn.Write([]byte(watch)); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "can't enable gpsd reports")
	}
	logger.Info("connected", "addr", addr)
	return &Client{conn: conn, r: bufio.NewReader(conn), tmo: DefaultReadTimeout, fix: NoFix()}, nil
}

// WaitReady waits up to timeout for a report to arrive. It returns false
// without error when nothing arrived in time.
func (c *Client) WaitReady(timeout time.Duration) (bool, error) {
	if timeout > 0 {
		c.tmo = timeout
	}
	if c.r.Buffered() > 0 {
		return true, nil
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, errors.Wrap(err, "gpsd")
	}
	defer c.conn.SetReadDeadline(time.Time{})
	if _, err := c.r.Peek(1); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return false, nil
		}
		return false, errors.Wrap(err, "gpsd")
	}
	return true, nil
}

// Read consumes one report and returns the latest fix. Reports other than
// TPV leave the fix unchanged. A report that does not complete within the
// last WaitReady timeout fails with ErrTimeout; the next Read resumes it.
func (c *Client) Read() (*Fix, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.tmo)); err != nil {
		return nil, errors.Wrap(err, "gpsd")
	}
	defer c.conn.SetReadDeadline(time.Time{})
	b, err := c.r.ReadBytes('\n')
	line := append(c.partial, b...)
	c.partial = nil
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			c.partial = line
			return nil, errors.Wrapf(ErrTimeout, "after %d bytes", len(line))
		}
		return nil, errors.Wrap(err, "can't read gpsd report")
	}
	var r tpv
	if err := json.Unmarshal(line, &r); err != nil {
		return nil, errors.Wrapf(err, "bad gpsd report %q", line)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.Class == "TPV" {
		c.fix = r.fix()
	} else {
		logger.Debug("report ignored", "class", r.Class)
	}
	f := c.fix
	return &f, nil
}

// Close disables reports and closes the connection.
func (c *Client) Close() error {
	c.conn.Write([]byte(`?WATCH={"enable":false};` + "\n"))
	return c.conn.Close()
}
