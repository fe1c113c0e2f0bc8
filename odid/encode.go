package odid

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidField is returned when a field can not be represented on the wire.
var ErrInvalidField = errors.New("odid: invalid field")

func header(typ uint8) byte { return typ<<4 | ProtocolVersion }

func invalid(field string, v interface{}) error {
	return errors.Wrapf(ErrInvalidField, "%s: %v", field, v)
}

func putString(b []byte, s string, field string) error {
	if len(s) > len(b) {
		return invalid(field, s)
	}
	copy(b, s)
	return nil
}

func round(f float64) int { return int(math.Floor(f + 0.5)) }

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func encodeLatLon(lat, lon float64) (int32, int32, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, 0, invalid("latitude", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return 0, 0, invalid("longitude", lon)
	}
	return int32(math.Round(lat * 1e7)), int32(math.Round(lon * 1e7)), nil
}

// encodeAltitude maps [-1000, 31767.5] meter onto 0.5 m steps.
func encodeAltitude(alt float64) uint16 {
	if math.IsNaN(alt) {
		alt = InvalidAltitude
	}
	return uint16(clampInt(round((alt-InvalidAltitude)/0.5), 0, math.MaxUint16))
}

func encodeDirection(dir float64) (uint8, bool) {
	if math.IsNaN(dir) || dir < 0 || dir > 360 {
		dir = InvalidDirection
	}
	d := round(dir)
	if d < 180 {
		return uint8(d), false
	}
	return uint8(d - 180), true
}

func encodeSpeedHorizontal(speed float64) (uint8, bool) {
	if math.IsNaN(speed) || speed < 0 || speed >= InvalidSpeedHoriz {
		return math.MaxUint8, true
	}
	if speed <= math.MaxUint8*SpeedMultiplierSmall {
		return uint8(clampInt(round(speed/SpeedMultiplierSmall), 0, math.MaxUint8)), false
	}
	return uint8(clampInt(round((speed-math.MaxUint8*SpeedMultiplierSmall)/SpeedMultiplierLarge), 0, 254)), true
}

func encodeSpeedVertical(speed float64) int8 {
	if math.IsNaN(speed) || speed == InvalidSpeedVert {
		speed = InvalidSpeedVert
	}
	return int8(clampInt(round(speed/0.5), -126, 126))
}

func encodeTimeStamp(ts float64) (uint16, error) {
	if ts == InvalidTimestamp {
		return InvalidTimestamp, nil
	}
	if math.IsNaN(ts) || ts < 0 || ts > 3600 {
		return 0, invalid("timestamp", ts)
	}
	return uint16(round(ts * 10)), nil
}

// EncodeBasicID encodes a Basic ID message.
func EncodeBasicID(in BasicID) (Message, error) {
	var m Message
	if in.UAType > UATypeOther {
		return m, invalid("ua type", in.UAType)
	}
	if in.IDType > IDTypeSpecificSessionID {
		return m, invalid("id type", in.IDType)
	}
	m[0] = header(MessageTypeBasicID)
	m[1] = uint8(in.IDType)<<4 | uint8(in.UAType)
	if err := putString(m[2:2+IDSize], in.UASID, "uas id"); err != nil {
		return m, err
	}
	return m, nil
}

// EncodeLocation encodes a Location/Vector message.
func EncodeLocation(in Location) (Message, error) {
	var m Message
	if in.Status > StatusRemoteIDSystemFailure {
		return m, invalid("status", in.Status)
	}
	lat, lon, err := encodeLatLon(in.Latitude, in.Longitude)
	if err != nil {
		return m, err
	}
	ts, err := encodeTimeStamp(in.TimeStamp)
	if err != nil {
		return m, err
	}
	dir, ew := encodeDirection(in.Direction)
	speed, mult := encodeSpeedHorizontal(in.SpeedHorizontal)

	m[0] = header(MessageTypeLocation)
	m[1] = uint8(in.Status)<<4 | uint8(in.HeightType&1)<<2
	if ew {
		m[1] |= 1 << 1
	}
	if mult {
		m[1] |= 1
	}
	m[2] = dir
	m[3] = speed
	m[4] = byte(encodeSpeedVertical(in.SpeedVertical))
	binary.LittleEndian.PutUint32(m[5:], uint32(lat))
	binary.LittleEndian.PutUint32(m[9:], uint32(lon))
	binary.LittleEndian.PutUint16(m[13:], encodeAltitude(in.AltitudeBaro))
	binary.LittleEndian.PutUint16(m[15:], encodeAltitude(in.AltitudeGeo))
	binary.LittleEndian.PutUint16(m[17:], encodeAltitude(in.Height))
	m[19] = uint8(in.VertAccuracy&0x0F)<<4 | uint8(in.HorizAccuracy&0x0F)
	m[20] = uint8(in.BaroAccuracy&0x0F)<<4 | uint8(in.SpeedAccuracy&0x0F)
	binary.LittleEndian.PutUint16(m[21:], ts)
	m[23] = uint8(in.TSAccuracy & 0x0F)
	return m, nil
}

// EncodeAuth encodes one Authentication message page.
func EncodeAuth(in Auth) (Message, error) {
	var m Message
	if in.DataPage >= AuthMaxPages {
		return m, invalid("auth data page", in.DataPage)
	}
	m[0] = header(MessageTypeAuth)
	m[1] = uint8(in.AuthType)<<4 | in.DataPage&0x0F
	if in.DataPage == 0 {
		if in.LastPageIndex >= AuthMaxPages {
			return m, invalid("auth last page index", in.LastPageIndex)
		}
		m[2] = in.LastPageIndex
		m[3] = in.Length
		binary.LittleEndian.PutUint32(m[4:], in.Timestamp)
		return m, putString(m[8:8+AuthPage0Size], in.AuthData, "auth data")
	}
	return m, putString(m[2:2+AuthPageNSize], in.AuthData, "auth data")
}

// EncodeSelfID encodes a Self-ID message.
func EncodeSelfID(in SelfID) (Message, error) {
	var m Message
	m[0] = header(MessageTypeSelfID)
	m[1] = uint8(in.DescType)
	return m, putString(m[2:2+StrSize], in.Desc, "self id description")
}

// EncodeSystem encodes a System message.
func EncodeSystem(in System) (Message, error) {
	var m Message
	lat, lon, err := encodeLatLon(in.OperatorLatitude, in.OperatorLongitude)
	if err != nil {
		return m, err
	}
	if in.AreaRadius > MaxAreaRadius {
		return m, invalid("area radius", in.AreaRadius)
	}
	m[0] = header(MessageTypeSystem)
	m[1] = uint8(in.ClassificationType&0x07)<<2 | uint8(in.OperatorLocationType&0x03)
	binary.LittleEndian.PutUint32(m[2:], uint32(lat))
	binary.LittleEndian.PutUint32(m[6:], uint32(lon))
	binary.LittleEndian.PutUint16(m[10:], in.AreaCount)
	m[12] = uint8(in.AreaRadius / 10)
	binary.LittleEndian.PutUint16(m[13:], encodeAltitude(in.AreaCeiling))
	binary.LittleEndian.PutUint16(m[15:], encodeAltitude(in.AreaFloor))
	m[17] = uint8(in.CategoryEU&0x0F)<<4 | uint8(in.ClassEU&0x0F)
	binary.LittleEndian.PutUint16(m[18:], encodeAltitude(in.OperatorAltitudeGeo))
	binary.LittleEndian.PutUint32(m[20:], in.Timestamp)
	return m, nil
}

// EncodeOperatorID encodes an Operator ID message.
func EncodeOperatorID(in OperatorID) (Message, error) {
	var m Message
	m[0] = header(MessageTypeOperatorID)
	m[1] = uint8(in.OperatorIDType)
	return m, putString(m[2:2+IDSize], in.OperatorID, "operator id")
}
