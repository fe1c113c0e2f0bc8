package evt

import "encoding/binary"

// Event codes.
const (
	CommandCompleteCode = 0x0E
	CommandStatusCode   = 0x0F
	HardwareErrorCode   = 0x10
)

// CommandComplete implements Command Complete (0x0E) [Vol 2, Part E, 7.7.14].
type CommandComplete []byte

// Valid reports whether the event is long enough to carry an opcode.
func (r CommandComplete) Valid() bool { return len(r) >= 3 }

// NumHCICommandPackets returns the NumHCICommandPackets field.
func (r CommandComplete) NumHCICommandPackets() uint8 { return r[0] }

// CommandOpcode returns the CommandOpcode field.
func (r CommandComplete) CommandOpcode() uint16 { return binary.LittleEndian.Uint16(r[1:]) }

// ReturnParameters returns the ReturnParameters field.
func (r CommandComplete) ReturnParameters() []byte { return r[3:] }

// Status returns the first return parameter, which is the status of every
// command this package sends. A completion without return parameters
// reports success.
func (r CommandComplete) Status() uint8 {
	if len(r) < 4 {
		return 0x00
	}
	return r[3]
}

// CommandStatus implements Command Status (0x0F) [Vol 2, Part E, 7.7.15].
type CommandStatus []byte

// Valid reports whether the event carries all of its fields.
func (r CommandStatus) Valid() bool { return len(r) >= 4 }

// Status returns the Status field.
func (r CommandStatus) Status() uint8 { return r[0] }

// NumHCICommandPackets returns the NumHCICommandPackets field.
func (r CommandStatus) NumHCICommandPackets() uint8 { return r[1] }

// CommandOpcode returns the CommandOpcode field.
func (r CommandStatus) CommandOpcode() uint16 { return binary.LittleEndian.Uint16(r[2:]) }

// HardwareError implements Hardware Error (0x10) [Vol 2, Part E, 7.7.16].
type HardwareError []byte

// HardwareCode returns the HardwareCode field.
func (r HardwareError) HardwareCode() uint8 {
	if len(r) == 0 {
		return 0
	}
	return r[0]
}
