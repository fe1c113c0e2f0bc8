package transmitter

import "time"

// Broadcast cadence.
const (
	// SingleMessagePeriod separates two single messages.
	SingleMessagePeriod = 100 * time.Millisecond

	// PackPeriod separates two message pack repetitions.
	PackPeriod = 4 * time.Second

	// PackRepetitions is the number of times a pack is sent before it is
	// rebuilt from the latest snapshot.
	PackRepetitions = 10
)

// Default advertising intervals.
const (
	DefaultLegacyInterval    = 100 * time.Millisecond
	DefaultStandardInterval  = 300 * time.Millisecond
	DefaultLongRangeInterval = 950 * time.Millisecond
)

// Extended advertising set handles.
const (
	StandardSetHandle  uint8 = 0
	LongRangeSetHandle uint8 = 1
)
