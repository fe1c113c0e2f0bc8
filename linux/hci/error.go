package hci

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrCommandTimeout is returned when no matching Command Complete arrived
	// in time.
	ErrCommandTimeout = errors.New("hci: command timed out")

	// ErrClosed is returned for commands sent after Close.
	ErrClosed = errors.New("hci: closed")

	// ErrNoFlows is returned by Configure without flow kinds.
	ErrNoFlows = errors.New("hci: no advertising flow requested")

	// ErrDuplicateFlow is returned when a flow kind is requested twice.
	ErrDuplicateFlow = errors.New("hci: advertising flow requested twice")
)

// ErrCommand is the non-zero status of a Command Complete event
// [Vol 2, Part D, 1.3].
type ErrCommand byte

// Controller error codes seen while advertising.
const (
	ErrUnknownCommand       ErrCommand = 0x01
	ErrHardware             ErrCommand = 0x03
	ErrMemoryCapacity       ErrCommand = 0x07
	ErrDisallowed           ErrCommand = 0x0C
	ErrLimitedResources     ErrCommand = 0x0D
	ErrUnsupportedParameter ErrCommand = 0x11
	ErrInvalidParameters    ErrCommand = 0x12
	ErrUnspecified          ErrCommand = 0x1F
	ErrUnknownAdvertisingID ErrCommand = 0x42
	ErrLimitReached         ErrCommand = 0x43
	ErrPacketTooLong        ErrCommand = 0x45
)

var errCmd = map[ErrCommand]string{
	ErrUnknownCommand:       "unknown HCI command",
	ErrHardware:             "hardware failure",
	ErrMemoryCapacity:       "memory capacity exceeded",
	ErrDisallowed:           "command disallowed",
	ErrLimitedResources:     "rejected due to limited resources",
	ErrUnsupportedParameter: "unsupported feature or parameter value",
	ErrInvalidParameters:    "invalid HCI command parameters",
	ErrUnspecified:          "unspecified error",
	ErrUnknownAdvertisingID: "unknown advertising identifier",
	ErrLimitReached:         "limit reached",
	ErrPacketTooLong:        "packet too long",
}

func (e ErrCommand) Error() string {
	if s, ok := errCmd[e]; ok {
		return s
	}
	return fmt.Sprintf("hci: status 0x%02X", byte(e))
}
