package hci

import "time"

const intervalUnit = 625 * time.Microsecond

// Interval limits in 0.625 ms units.
const (
	MinInterval         = 0x0020
	MaxLegacyInterval   = 0x4000
	MaxExtendedInterval = 0xFFFFFF
)

func intervalUnits(d time.Duration, max int64) int64 {
	n := (int64(d) + int64(intervalUnit)/2) / int64(intervalUnit)
	if n < MinInterval {
		return MinInterval
	}
	if n > max {
		return max
	}
	return n
}

// LegacyInterval converts d to the 0.625 ms units of LE Set Advertising
// Parameters, rounded to nearest and clamped to [0x0020, 0x4000].
func LegacyInterval(d time.Duration) uint16 {
	return uint16(intervalUnits(d, MaxLegacyInterval))
}

// ExtendedInterval converts d to the 24 bit 0.625 ms units of LE Set
// Extended Advertising Parameters, clamped to [0x000020, 0xFFFFFF].
func ExtendedInterval(d time.Duration) uint32 {
	return uint32(intervalUnits(d, MaxExtendedInterval))
}
