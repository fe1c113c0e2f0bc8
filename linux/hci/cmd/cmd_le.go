package cmd

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

func init() {
	for op, n := range map[int]string{
		ResetOpCode:                              "Reset",
		LEReadLocalSupportedFeaturesOpCode:       "LE Read Local Supported Features",
		LESetRandomAddressOpCode:                 "LE Set Random Address",
		LESetAdvertisingParametersOpCode:         "LE Set Advertising Parameters",
		LESetAdvertisingDataOpCode:               "LE Set Advertising Data",
		LESetAdvertiseEnableOpCode:               "LE Set Advertising Enable",
		LESetAdvertisingSetRandomAddressOpCode:   "LE Set Advertising Set Random Address",
		LESetExtendedAdvertisingParametersOpCode: "LE Set Extended Advertising Parameters",
		LESetExtendedAdvertisingDataOpCode:       "LE Set Extended Advertising Data",
		LESetExtendedAdvertisingEnableOpCode:     "LE Set Extended Advertising Enable",
		LERemoveAdvertisingSetOpCode:             "LE Remove Advertising Set",
	} {
		names[op] = n
	}
}

// Opcodes.
const (
	ResetOpCode                              = ogfHostCtl<<10 | 0x0003
	LEReadLocalSupportedFeaturesOpCode       = ogfLECtl<<10 | 0x0003
	LESetRandomAddressOpCode                 = ogfLECtl<<10 | 0x0005
	LESetAdvertisingParametersOpCode         = ogfLECtl<<10 | 0x0006
	LESetAdvertisingDataOpCode               = ogfLECtl<<10 | 0x0008
	LESetAdvertiseEnableOpCode               = ogfLECtl<<10 | 0x000A
	LESetAdvertisingSetRandomAddressOpCode   = ogfLECtl<<10 | 0x0035
	LESetExtendedAdvertisingParametersOpCode = ogfLECtl<<10 | 0x0036
	LESetExtendedAdvertisingDataOpCode       = ogfLECtl<<10 | 0x0037
	LESetExtendedAdvertisingEnableOpCode     = ogfLECtl<<10 | 0x0039
	LERemoveAdvertisingSetOpCode             = ogfLECtl<<10 | 0x003C
)

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2]
type Reset struct{}

// OpCode returns the opcode of the command.
func (c *Reset) OpCode() int { return ResetOpCode }

// Len returns the length of the command.
func (c *Reset) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *Reset) Marshal(b []byte) error { return nil }

// LEReadLocalSupportedFeatures implements LE Read Local Supported Features (0x08|0x0003) [Vol 2, Part E, 7.8.3]
type LEReadLocalSupportedFeatures struct{}

// OpCode returns the opcode of the command.
func (c *LEReadLocalSupportedFeatures) OpCode() int { return LEReadLocalSupportedFeaturesOpCode }

// Len returns the length of the command.
func (c *LEReadLocalSupportedFeatures) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadLocalSupportedFeatures) Marshal(b []byte) error { return nil }

// LEReadLocalSupportedFeaturesRP returns the return parameter of LE Read Local Supported Features
type LEReadLocalSupportedFeaturesRP struct {
	Status     uint8
	LEFeatures uint64
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadLocalSupportedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LESetRandomAddress implements LE Set Random Address (0x08|0x0005) [Vol 2, Part E, 7.8.4]
type LESetRandomAddress struct {
	RandomAddress [6]byte
}

// OpCode returns the opcode of the command.
func (c *LESetRandomAddress) OpCode() int { return LESetRandomAddressOpCode }

// Len returns the length of the command.
func (c *LESetRandomAddress) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *LESetRandomAddress) Marshal(b []byte) error { return marshal(c, b) }

// LESetAdvertisingParameters implements LE Set Advertising Parameters (0x08|0x0006) [Vol 2, Part E, 7.8.5]
type LESetAdvertisingParameters struct {
	AdvertisingIntervalMin  uint16
	AdvertisingIntervalMax  uint16
	AdvertisingType         uint8
	OwnAddressType          uint8
	DirectAddressType       uint8
	DirectAddress           [6]byte
	AdvertisingChannelMap   uint8
	AdvertisingFilterPolicy uint8
}

// OpCode returns the opcode of the command.
func (c *LESetAdvertisingParameters) OpCode() int { return LESetAdvertisingParametersOpCode }

// Len returns the length of the command.
func (c *LESetAdvertisingParameters) Len() int { return 15 }

// Marshal serializes the command parameters into binary form.
func (c *LESetAdvertisingParameters) Marshal(b []byte) error { return marshal(c, b) }

// LESetAdvertisingData implements LE Set Advertising Data (0x08|0x0008) [Vol 2, Part E, 7.8.7]
type LESetAdvertisingData struct {
	AdvertisingDataLength uint8
	AdvertisingData       [31]byte
}

// OpCode returns the opcode of the command.
func (c *LESetAdvertisingData) OpCode() int { return LESetAdvertisingDataOpCode }

// Len returns the length of the command.
func (c *LESetAdvertisingData) Len() int { return 32 }

// Marshal serializes the command parameters into binary form.
func (c *LESetAdvertisingData) Marshal(b []byte) error {
	if c.AdvertisingDataLength > 31 {
		return ErrTooLong
	}
	return marshal(c, b)
}

// LESetAdvertiseEnable implements LE Set Advertise Enable (0x08|0x000A) [Vol 2, Part E, 7.8.9]
type LESetAdvertiseEnable struct {
	AdvertisingEnable uint8
}

// OpCode returns the opcode of the command.
func (c *LESetAdvertiseEnable) OpCode() int { return LESetAdvertiseEnableOpCode }

// Len returns the length of the command.
func (c *LESetAdvertiseEnable) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *LESetAdvertiseEnable) Marshal(b []byte) error { return marshal(c, b) }

// LESetAdvertisingSetRandomAddress implements LE Set Advertising Set Random Address (0x08|0x0035) [Vol 4, Part E, 7.8.52]
type LESetAdvertisingSetRandomAddress struct {
	AdvertisingHandle uint8
	RandomAddress     [6]byte
}

// OpCode returns the opcode of the command.
func (c *LESetAdvertisingSetRandomAddress) OpCode() int {
	return LESetAdvertisingSetRandomAddressOpCode
}

// Len returns the length of the command.
func (c *LESetAdvertisingSetRandomAddress) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *LESetAdvertisingSetRandomAddress) Marshal(b []byte) error { return marshal(c, b) }

// LESetExtendedAdvertisingParameters implements LE Set Extended Advertising Parameters (0x08|0x0036) [Vol 4, Part E, 7.8.53]
type LESetExtendedAdvertisingParameters struct {
	AdvertisingHandle             uint8
	AdvertisingEventProperties    uint16
	PrimaryAdvertisingIntervalMin [3]byte // N * 0.625 msec
	PrimaryAdvertisingIntervalMax [3]byte // N * 0.625 msec
	PrimaryAdvertisingChannelMap  uint8
	OwnAddressType                uint8
	PeerAddressType               uint8
	PeerAddress                   [6]byte
	AdvertisingFilterPolicy       uint8
	AdvertisingTxPower            int8 // 0x7F: no preference
	PrimaryAdvertisingPHY         uint8
	SecondaryAdvertisingMaxSkip   uint8
	SecondaryAdvertisingPHY       uint8
	AdvertisingSID                uint8
	ScanRequestNotificationEnable uint8
}

// OpCode returns the opcode of the command.
func (c *LESetExtendedAdvertisingParameters) OpCode() int {
	return LESetExtendedAdvertisingParametersOpCode
}

// Len returns the length of the command.
func (c *LESetExtendedAdvertisingParameters) Len() int { return 25 }

// Marshal serializes the command parameters into binary form.
func (c *LESetExtendedAdvertisingParameters) Marshal(b []byte) error { return marshal(c, b) }

// LESetExtendedAdvertisingParametersRP returns the return parameter of LE Set Extended Advertising Parameters
type LESetExtendedAdvertisingParametersRP struct {
	Status          uint8
	SelectedTxPower int8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LESetExtendedAdvertisingParametersRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// PutInterval24 stores a 24 bit interval in little endian order.
func PutInterval24(b *[3]byte, v uint32) {
	b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
}

// LESetExtendedAdvertisingData implements LE Set Extended Advertising Data (0x08|0x0037) [Vol 4, Part E, 7.8.54]
type LESetExtendedAdvertisingData struct {
	AdvertisingHandle  uint8
	Operation          uint8 // 0x03: complete extended advertising data
	FragmentPreference uint8 // 0x01: the controller should not fragment
	AdvertisingData    []byte
}

// OpCode returns the opcode of the command.
func (c *LESetExtendedAdvertisingData) OpCode() int { return LESetExtendedAdvertisingDataOpCode }

// Len returns the length of the command.
func (c *LESetExtendedAdvertisingData) Len() int { return 4 + len(c.AdvertisingData) }

// Marshal serializes the command parameters into binary form.
func (c *LESetExtendedAdvertisingData) Marshal(b []byte) error {
	if len(c.AdvertisingData) > 251 {
		return errors.Wrapf(ErrTooLong, "%d bytes of advertising data", len(c.AdvertisingData))
	}
	if len(b) < c.Len() {
		return io.ErrShortBuffer
	}
	b[0] = c.AdvertisingHandle
	b[1] = c.Operation
	b[2] = c.FragmentPreference
	b[3] = uint8(len(c.AdvertisingData))
	copy(b[4:], c.AdvertisingData)
	return nil
}

// AdvertisingSet is one entry of LE Set Extended Advertising Enable.
type AdvertisingSet struct {
	AdvertisingHandle            uint8
	Duration                     uint16 // N * 10 msec, 0: until disabled
	MaxExtendedAdvertisingEvents uint8
}

// LESetExtendedAdvertisingEnable implements LE Set Extended Advertising Enable (0x08|0x0039) [Vol 4, Part E, 7.8.56]
// With Enable 0 and no sets all advertising sets are disabled.
type LESetExtendedAdvertisingEnable struct {
	Enable uint8
	Sets   []AdvertisingSet
}

// OpCode returns the opcode of the command.
func (c *LESetExtendedAdvertisingEnable) OpCode() int {
	return LESetExtendedAdvertisingEnableOpCode
}

// Len returns the length of the command.
func (c *LESetExtendedAdvertisingEnable) Len() int { return 2 + 4*len(c.Sets) }

// Marshal serializes the command parameters into binary form.
// Sets are laid out one after another, as the Linux kernel does.
func (c *LESetExtendedAdvertisingEnable) Marshal(b []byte) error {
	if len(c.Sets) > 63 {
		return errors.Wrapf(ErrTooLong, "%d advertising sets", len(c.Sets))
	}
	if len(b) < c.Len() {
		return io.ErrShortBuffer
	}
	b[0] = c.Enable
	b[1] = uint8(len(c.Sets))
	for i, s := range c.Sets {
		o := b[2+4*i:]
		o[0] = s.AdvertisingHandle
		binary.LittleEndian.PutUint16(o[1:], s.Duration)
		o[3] = s.MaxExtendedAdvertisingEvents
	}
	return nil
}

// LERemoveAdvertisingSet implements LE Remove Advertising Set (0x08|0x003C) [Vol 4, Part E, 7.8.59]
type LERemoveAdvertisingSet struct {
	AdvertisingHandle uint8
}

// OpCode returns the opcode of the command.
func (c *LERemoveAdvertisingSet) OpCode() int { return LERemoveAdvertisingSetOpCode }

// Len returns the length of the command.
func (c *LERemoveAdvertisingSet) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *LERemoveAdvertisingSet) Marshal(b []byte) error { return marshal(c, b) }
