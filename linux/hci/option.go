package hci

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
)

// An Option is a configuration function, which configures the device.
type Option func(*HCI) error

// OptDeviceID sets HCI device ID. -1 selects the first usable device.
func OptDeviceID(id int) Option {
	return func(h *HCI) error {
		h.id = id
		return nil
	}
}

// OptSocket makes Init use skt instead of opening a HCI socket.
// Reads on skt must return periodically, e.g. with unix.EAGAIN.
func OptSocket(skt io.ReadWriteCloser) Option {
	return func(h *HCI) error {
		h.skt = skt
		return nil
	}
}

// OptCommandTimeout bounds the wait for the Command Complete of a command.
func OptCommandTimeout(d time.Duration) Option {
	return func(h *HCI) error {
		if d <= 0 {
			return errors.Errorf("invalid command timeout %s", d)
		}
		h.cmdTmo = d
		return nil
	}
}

// OptReadTimeout sets how long a socket read blocks before the read loop
// checks for Close.
func OptReadTimeout(d time.Duration) Option {
	return func(h *HCI) error {
		h.readTmo = d
		return nil
	}
}

// OptInterval sets the advertising interval of a flow kind.
func OptInterval(k transmitter.FlowKind, d time.Duration) Option {
	return func(h *HCI) error {
		if d <= 0 {
			return errors.Errorf("invalid %s interval %s", k, d)
		}
		h.states.intervals[k] = d
		return nil
	}
}
