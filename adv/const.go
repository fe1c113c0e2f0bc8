package adv

// MaxEIRPacketLength is the maximum allowed legacy AdvertisingPacket
// and ScanResponsePacket length.
const MaxEIRPacketLength = 31

// MaxExtendedDataLength is the largest advertising data carried by one
// LE Set Extended Advertising Data command.
const MaxExtendedDataLength = 251

// Advertising data field types
const (
	Flags         = 0x01 // Flags
	ServiceData16 = 0x16 // Service Data - 16-bit UUID
)

// Advertising flags
const (
	FlagGeneralDiscoverable = 0x02 // LE General Discoverable Mode
	FlagLEOnly              = 0x04 // BR/EDR Not Supported. Bit 37 of LMP Feature Mask Definitions (Page 0)
)

// Remote ID service data.
const (
	// ASTMServiceUUID is the 16-bit UUID assigned to ASTM International.
	ASTMServiceUUID uint16 = 0xFFFA

	// AppCodeOpenDroneID is the application code that follows the UUID.
	AppCodeOpenDroneID byte = 0x0D
)
