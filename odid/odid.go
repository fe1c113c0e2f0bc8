// Package odid encodes Open Drone ID (ASTM F3411 / ASD-STAN prEN 4709-002)
// messages into their fixed 25 byte wire form, and groups them into
// message packs.
package odid

// ProtocolVersion is the version nibble written into every message header.
// 2 = F3411-22a.
const ProtocolVersion = 2

// MessageSize is the size of one encoded message.
const MessageSize = 25

// PackMaxMessages is the maximum number of messages in a message pack.
const PackMaxMessages = 9

// Message types [F3411, 5.4.5.2].
const (
	MessageTypeBasicID    uint8 = 0x0
	MessageTypeLocation   uint8 = 0x1
	MessageTypeAuth       uint8 = 0x2
	MessageTypeSelfID     uint8 = 0x3
	MessageTypeSystem     uint8 = 0x4
	MessageTypeOperatorID uint8 = 0x5
	MessageTypePack       uint8 = 0xF
)

// Field sizes.
const (
	IDSize          = 20
	StrSize         = 23
	AuthPage0Size   = 17
	AuthPageNSize   = 23
	AuthMaxPages    = 16
	BasicIDMaxCount = 2
	AuthPageCount   = 3
)

// UAType classifies the aircraft.
type UAType uint8

// UA types.
const (
	UATypeNone UAType = iota
	UATypeAeroplane
	UATypeHelicopterOrMultirotor
	UATypeGyroplane
	UATypeHybridLift
	UATypeOrnithopter
	UATypeGlider
	UATypeKite
	UATypeFreeBalloon
	UATypeCaptiveBalloon
	UATypeAirship
	UATypeFreeFallParachute
	UATypeRocket
	UATypeTetheredPoweredAircraft
	UATypeGroundObstacle
	UATypeOther
)

// IDType tells how UASID must be interpreted.
type IDType uint8

// ID types.
const (
	IDTypeNone IDType = iota
	IDTypeSerialNumber
	IDTypeCAARegistrationID
	IDTypeUTMAssignedUUID
	IDTypeSpecificSessionID
)

// Status of the aircraft.
type Status uint8

// Aircraft statuses.
const (
	StatusUndeclared Status = iota
	StatusGround
	StatusAirborne
	StatusEmergency
	StatusRemoteIDSystemFailure
)

// HeightRef is the reference of Location.Height.
type HeightRef uint8

// Height references.
const (
	HeightRefOverTakeoff HeightRef = iota
	HeightRefOverGround
)

// HorizontalAccuracy is the encoded horizontal position accuracy class.
type HorizontalAccuracy uint8

// VerticalAccuracy is the encoded vertical position accuracy class.
type VerticalAccuracy uint8

// SpeedAccuracy is the encoded speed accuracy class.
type SpeedAccuracy uint8

// TimestampAccuracy is the encoded timestamp accuracy, in tenths of a second.
type TimestampAccuracy uint8

// AuthType of an authentication message.
type AuthType uint8

// Authentication types.
const (
	AuthNone AuthType = iota
	AuthUASIDSignature
	AuthOperatorIDSignature
	AuthMessageSetSignature
	AuthNetworkRemoteID
	AuthSpecificMethod
)

// DescType of a self-id message.
type DescType uint8

// Self-id description types.
const (
	DescTypeText DescType = iota
	DescTypeEmergency
	DescTypeExtendedStatus
)

// OperatorLocationType of the system message.
type OperatorLocationType uint8

// Operator location types.
const (
	OperatorLocationTakeoff OperatorLocationType = iota
	OperatorLocationLiveGNSS
	OperatorLocationFixed
)

// ClassificationType of the system message.
type ClassificationType uint8

// Classification types.
const (
	ClassificationUndeclared ClassificationType = iota
	ClassificationEU
)

// CategoryEU of the aircraft.
type CategoryEU uint8

// EU categories.
const (
	CategoryEUUndeclared CategoryEU = iota
	CategoryEUOpen
	CategoryEUSpecific
	CategoryEUCertified
)

// ClassEU of the aircraft.
type ClassEU uint8

// EU classes.
const (
	ClassEUUndeclared ClassEU = iota
	ClassEUClass0
	ClassEUClass1
	ClassEUClass2
	ClassEUClass3
	ClassEUClass4
	ClassEUClass5
	ClassEUClass6
)

// OperatorIDType of the operator id message.
type OperatorIDType uint8

// OperatorIDTypeCAA is the only defined operator id type.
const OperatorIDTypeCAA OperatorIDType = 0

// Invalid / unknown values of the location message.
const (
	InvalidDirection     = 361.0
	InvalidSpeedHoriz    = 255.0
	InvalidSpeedVert     = 63.0
	InvalidLat           = 0.0
	InvalidLon           = 0.0
	InvalidAltitude      = -1000.0
	InvalidTimestamp     = 0xFFFF
	MaxSpeedHoriz        = 254.25
	MaxSpeedVert         = 62.0
	MinSpeedVert         = -62.0
	MaxAreaRadius        = 2550
	SpeedMultiplierSmall = 0.25
	SpeedMultiplierLarge = 0.75
)

// BasicID identifies the aircraft.
type BasicID struct {
	UAType UAType
	IDType IDType
	UASID  string
}

// Location is the dynamic part of the message set.
type Location struct {
	Status          Status
	Direction       float64 // degrees from true north, [0, 360], 361 unknown.
	SpeedHorizontal float64 // m/s, 255 unknown.
	SpeedVertical   float64 // m/s, up positive, 63 unknown.
	Latitude        float64
	Longitude       float64
	AltitudeBaro    float64 // meter, -1000 unknown.
	AltitudeGeo     float64 // meter (WGS84-HAE), -1000 unknown.
	HeightType      HeightRef
	Height          float64 // meter, -1000 unknown.
	HorizAccuracy   HorizontalAccuracy
	VertAccuracy    VerticalAccuracy
	BaroAccuracy    VerticalAccuracy
	SpeedAccuracy   SpeedAccuracy
	TSAccuracy      TimestampAccuracy
	TimeStamp       float64 // seconds after the full hour, 0xFFFF unknown.
}

// Auth is one page of authentication data.
type Auth struct {
	DataPage      uint8
	AuthType      AuthType
	LastPageIndex uint8  // page 0 only
	Length        uint8  // page 0 only
	Timestamp     uint32 // page 0 only, seconds since 2019-01-01
	AuthData      string
}

// SelfID is the free text description.
type SelfID struct {
	DescType DescType
	Desc     string
}

// System carries operator position and area information.
type System struct {
	OperatorLocationType OperatorLocationType
	ClassificationType   ClassificationType
	OperatorLatitude     float64
	OperatorLongitude    float64
	AreaCount            uint16
	AreaRadius           uint16 // meter
	AreaCeiling          float64
	AreaFloor            float64
	CategoryEU           CategoryEU
	ClassEU              ClassEU
	OperatorAltitudeGeo  float64
	Timestamp            uint32 // seconds since 2019-01-01
}

// OperatorID identifies the operator.
type OperatorID struct {
	OperatorIDType OperatorIDType
	OperatorID     string
}

// UASData is the complete identification data set that is broadcast.
type UASData struct {
	BasicID    [BasicIDMaxCount]BasicID
	Location   Location
	Auth       [AuthPageCount]Auth
	SelfID     SelfID
	System     System
	OperatorID OperatorID
}

// Message is one encoded message.
type Message [MessageSize]byte

// Type returns the message type from the header.
func (m Message) Type() uint8 { return m[0] >> 4 }
