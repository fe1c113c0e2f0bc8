package hci

import "fmt"

var leFeatures = [...]string{
	"LE Encryption",
	"Connection Parameter Request Procedure",
	"Extended Reject Indication",
	"Slave-initiated Features Exchange",
	"LE Ping",
	"LE Data Packet Length Extension",
	"LL Privacy",
	"Extended Scanner Filter Policies",
	"LE 2M PHY",
	"Stable Modulation Index - Transmitter",
	"Stable Modulation Index - Receiver",
	"LE Coded PHY",
	"LE Extended Advertising",
	"LE Periodic Advertising",
	"Channel Selection Algorithm #2",
	"LE Power Class 1",
	"Minimum Number of Used Channels Procedure",
	"Connection CTE Request",
	"Connection CTE Response",
	"Connectionless CTE Transmitter",
	"Connectionless CTE Receiver",
	"Antenna Switching During CTE Transmission (AoD)",
	"Antenna Switching During CTE Reception (AoA)",
	"Receiving Constant Tone Extensions",
	"Periodic Advertising Sync Transfer - Sender",
	"Periodic Advertising Sync Transfer - Recipient",
	"Sleep Clock Accuracy Updates",
	"Remote Public Key Validation",
	"Connected Isochronous Stream - Master",
	"Connected Isochronous Stream - Slave",
	"Isochronous Broadcaster",
	"Synchronized Receiver",
	"Isochronous Channels (Host Support)",
}

// LE feature bits used by the advertising flows [Vol 6, Part B, 4.6].
const (
	FeatureLECodedPHY          = 11
	FeatureExtendedAdvertising = 12
)

// FeatureNames returns the names of the bits set in an LE feature mask.
// Unknown bits are reported by number.
func FeatureNames(mask uint64) []string {
	var s []string
	for i := uint(0); i < 64; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if int(i) < len(leFeatures) {
			s = append(s, leFeatures[i])
		} else {
			s = append(s, fmt.Sprintf("Unknown feature bit %d", i))
		}
	}
	return s
}
