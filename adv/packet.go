package adv

import "encoding/binary"

// Packet is an utility to craft or parse advertising data.
// Refer to Supplement to Bluetooth Core Specification | CSSv6, Part A
type Packet []byte

// Field returns the field data (excluding the initial length and typ byte).
// It returns nil, if the specified field is not found.
func (p Packet) Field(typ byte) []byte {
	b := p
	for len(b) > 0 {
		if len(b) < 2 {
			return nil
		}
		l, t := b[0], b[1]
		if l == 0 || len(b) < int(1+l) {
			return nil
		}
		if t == typ {
			return b[2 : 1+l]
		}
		b = b[1+l:]
	}
	return nil
}

// ServiceData16 returns the 16-bit service UUID and the data of the first
// Service Data field.
func (p Packet) ServiceData16() (uint16, []byte, bool) {
	b := p.Field(ServiceData16)
	if len(b) < 2 {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint16(b), b[2:], true
}

// AppendField appends a BLE advertising packet field.
func (p Packet) AppendField(typ byte, b []byte) Packet {
	p = append(p, byte(len(b)+1))
	p = append(p, typ)
	return append(p, b...)
}

// AppendFlags appends a flag field to the packet.
func (p Packet) AppendFlags(f byte) Packet {
	return p.AppendField(Flags, []byte{f})
}

// AppendServiceData16 appends a Service Data field with a 16-bit UUID.
func (p Packet) AppendServiceData16(id uint16, b []byte) Packet {
	d := make([]byte, 2, 2+len(b))
	binary.LittleEndian.PutUint16(d, id)
	return p.AppendField(ServiceData16, append(d, b...))
}

// Len ...
func (p Packet) Len() int {
	return len(p)
}
