package hci

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/linux/hci/cmd"
	"github.com/opendroneid/transmitter-linux/linux/hci/evt"
	"github.com/opendroneid/transmitter-linux/linux/hci/socket"
)

var logger = transmitter.NewLogger("hci")

// Command ...
type Command = cmd.Command

// CommandRP ...
type CommandRP = cmd.CommandRP

// HCI packet types
const (
	pktTypeCommand uint8 = 0x01
	pktTypeEvent   uint8 = 0x04
)

type pkt struct {
	op   uint16
	done chan []byte
}

// NewHCI returns a hci device.
func NewHCI(opts ...Option) (*HCI, error) {
	h := &HCI{
		id:      -1,
		readTmo: 100 * time.Millisecond,
		cmdTmo:  2 * time.Second,

		states: newStates(),

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	if err := h.Option(opts...); err != nil {
		return nil, err
	}
	return h, nil
}

// HCI drives the advertising of one local controller.
type HCI struct {
	// One command in flight at a time; Command Complete carries no
	// correlation token beyond the opcode.
	sync.Mutex

	skt     io.ReadWriteCloser
	id      int
	readTmo time.Duration
	cmdTmo  time.Duration

	muSent sync.Mutex
	sent   *pkt

	states *states

	muErr    sync.Mutex
	err      error
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}

	started   bool
	closeOnce sync.Once
}

// Init opens the controller and starts the read loop.
func (h *HCI) Init() error {
	if h.started {
		return errors.New("hci: already initialized")
	}
	if h.skt == nil {
		skt, err := socket.NewSocket(h.id, h.readTmo)
		if err != nil {
			return errors.Wrap(err, "can't open hci device")
		}
		h.skt = skt
	}
	h.started = true
	go h.sktLoop()
	h.states.init(h)
	return nil
}

// Option sets the options specified.
func (h *HCI) Option(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return err
		}
	}
	return nil
}

// Error returns the error that stopped the device, if any.
func (h *HCI) Error() error {
	h.muErr.Lock()
	defer h.muErr.Unlock()
	return h.err
}

// fail records the first fatal error and stops the read loop.
func (h *HCI) fail(err error) error {
	h.muErr.Lock()
	if h.err == nil {
		h.err = err
	}
	err = h.err
	h.muErr.Unlock()
	h.quitOnce.Do(func() { close(h.quit) })
	return err
}

// Send sends a command and waits for its Command Complete. A non-zero
// status is returned as ErrCommand. r, if not nil, receives the return
// parameters.
func (h *HCI) Send(c Command, r CommandRP) error {
	b, err := h.send(c)
	if err != nil {
		return err
	}
	if len(b) > 0 && b[0] != 0x00 {
		return errors.Wrap(ErrCommand(b[0]), cmd.Name(c.OpCode()))
	}
	if r != nil {
		return errors.Wrapf(r.Unmarshal(b), "can't unmarshal %s return parameters", cmd.Name(c.OpCode()))
	}
	return nil
}

func (h *HCI) send(c Command) ([]byte, error) {
	h.Lock()
	defer h.Unlock()

	if !h.started {
		return nil, errors.New("hci: not initialized")
	}
	if err := h.Error(); err != nil {
		return nil, err
	}
	name := cmd.Name(c.OpCode())
	b := make([]byte, 4+c.Len())
	b[0] = pktTypeCommand // HCI header
	b[1] = byte(c.OpCode())
	b[2] = byte(c.OpCode() >> 8)
	b[3] = byte(c.Len())
	if err := c.Marshal(b[4:]); err != nil {
		return nil, errors.Wrapf(err, "hci: can't marshal %s", name)
	}

	p := &pkt{op: uint16(c.OpCode()), done: make(chan []byte, 1)}
	h.muSent.Lock()
	h.sent = p
	h.muSent.Unlock()
	defer func() {
		h.muSent.Lock()
		if h.sent == p {
			h.sent = nil
		}
		h.muSent.Unlock()
	}()

	logger.Debug("cmd", "name", name, "pkt", fmt.Sprintf("% X", b))
	if n, err := h.skt.Write(b); err != nil {
		return nil, h.fail(errors.Wrapf(err, "hci: failed to send %s", name))
	} else if n != len(b) {
		return nil, h.fail(errors.Errorf("hci: failed to send whole %s pkt to hci socket", name))
	}

	tmo := time.NewTimer(h.cmdTmo)
	defer tmo.Stop()
	select {
	case rp := <-p.done:
		return rp, nil
	case <-h.done:
		return nil, h.Error()
	case <-tmo.C:
		return nil, errors.Wrap(ErrCommandTimeout, name)
	}
}

func (h *HCI) sktLoop() {
	b := make([]byte, 4096)
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			return
		default:
		}
		n, err := h.skt.Read(b)
		if err != nil {
			if e := errors.Cause(err); e == unix.EAGAIN || e == unix.EINTR {
				continue
			}
			h.fail(errors.Wrap(err, "skt: read failed"))
			return
		}
		if n == 0 {
			continue
		}
		p := make([]byte, n)
		copy(p, b)
		if err := h.handlePkt(p); err != nil {
			logger.Warn("skt: packet dropped", "err", err)
		}
	}
}

func (h *HCI) handlePkt(b []byte) error {
	// Strip the HCI header, and pass down the rest of the packet.
	t, b := b[0], b[1:]
	if t != pktTypeEvent {
		return errors.Errorf("hci: unexpected packet: 0x%02X [ % X ]", t, b)
	}
	if len(b) < 2 || int(b[1]) != len(b[2:]) {
		return errors.Errorf("hci: corrupt event packet: [ % X ]", b)
	}
	switch code := int(b[0]); code {
	case evt.CommandCompleteCode:
		return h.handleCommandComplete(b[2:])
	case evt.CommandStatusCode:
		return h.handleCommandStatus(b[2:])
	case evt.HardwareErrorCode:
		h.fail(errors.Errorf("hci: hardware error 0x%02X", evt.HardwareError(b[2:]).HardwareCode()))
		return nil
	default:
		logger.Debug("hci: event ignored", "code", fmt.Sprintf("0x%02X", code))
		return nil
	}
}

// handleCommandStatus completes the pending command when the controller
// rejects it with a Command Status instead of a Command Complete.
func (h *HCI) handleCommandStatus(b []byte) error {
	e := evt.CommandStatus(b)
	if !e.Valid() {
		return errors.Errorf("hci: short CommandStatus: [ % X ]", b)
	}
	op := e.CommandOpcode()
	if op == 0x0000 || e.Status() == 0x00 {
		return nil
	}

	h.muSent.Lock()
	p := h.sent
	if p != nil && p.op == op {
		h.sent = nil
	}
	h.muSent.Unlock()

	if p == nil || p.op != op {
		logger.Warn("hci: CommandStatus for another command ignored",
			"opcode", fmt.Sprintf("0x%04X", op), "status", fmt.Sprintf("0x%02X", e.Status()))
		return nil
	}
	p.done <- []byte{e.Status()}
	return nil
}

func (h *HCI) handleCommandComplete(b []byte) error {
	e := evt.CommandComplete(b)
	if !e.Valid() {
		return errors.Errorf("hci: short CommandComplete: [ % X ]", b)
	}
	op := e.CommandOpcode()

	// NOP command, used for flow control purpose [Vol 2, Part E, 4.4]
	if op == 0x0000 {
		return nil
	}

	h.muSent.Lock()
	p := h.sent
	if p != nil && p.op == op {
		h.sent = nil
	}
	h.muSent.Unlock()

	if p == nil || p.op != op {
		want := "none"
		if p != nil {
			want = fmt.Sprintf("0x%04X", p.op)
		}
		logger.Warn("hci: CommandComplete for another command ignored",
			"opcode", fmt.Sprintf("0x%04X", op), "expected", want)
		return nil
	}
	p.done <- e.ReturnParameters()
	return nil
}

// Close stops advertising and releases the controller.
func (h *HCI) Close() error {
	var err error
	h.closeOnce.Do(func() {
		if !h.started {
			return
		}
		if h.Error() == nil {
			err = h.Shutdown()
		}
		h.states.close()
		h.fail(ErrClosed)
		<-h.done
		if cerr := h.skt.Close(); err == nil {
			err = cerr
		}
	})
	return err
}
