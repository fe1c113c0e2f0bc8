package adv

import "github.com/pkg/errors"

// ErrTooLong is returned when the framed payload does not fit the
// advertising data of the target command.
var ErrTooLong = errors.New("adv: advertising data too long")

// RemoteIDOverhead is the number of bytes RemoteID adds to a payload:
// length, AD type, UUID (2), app code, counter.
const RemoteIDOverhead = 6

// RemoteID frames an encoded message or message pack as a Service Data
// AD structure:
//
//	[len][0x16][0xFA 0xFF][0x0D][counter][payload...]
//
// len counts everything after itself, i.e. 5 + len(payload).
func RemoteID(counter uint8, payload []byte) (Packet, error) {
	if RemoteIDOverhead+len(payload) > MaxExtendedDataLength {
		return nil, errors.Wrapf(ErrTooLong, "%d byte payload", len(payload))
	}
	p := Packet(make([]byte, 0, RemoteIDOverhead+len(payload)))
	d := make([]byte, 0, 2+len(payload))
	d = append(d, AppCodeOpenDroneID, counter)
	d = append(d, payload...)
	return p.AppendServiceData16(ASTMServiceUUID, d), nil
}

// LegacyRemoteID is RemoteID limited to the 31 bytes of legacy advertising.
func LegacyRemoteID(counter uint8, payload []byte) (Packet, error) {
	if RemoteIDOverhead+len(payload) > MaxEIRPacketLength {
		return nil, errors.Wrapf(ErrTooLong, "%d byte payload for legacy advertising", len(payload))
	}
	return RemoteID(counter, payload)
}
