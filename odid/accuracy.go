package odid

import "math"

// Horizontal accuracy classes [F3411, Table 6].
const (
	HorizAccUnknown HorizontalAccuracy = iota
	HorizAcc10NM
	HorizAcc4NM
	HorizAcc2NM
	HorizAcc1NM
	HorizAcc05NM
	HorizAcc03NM
	HorizAcc01NM
	HorizAcc005NM
	HorizAcc30Meter
	HorizAcc10Meter
	HorizAcc3Meter
	HorizAcc1Meter
)

// Vertical accuracy classes.
const (
	VerAccUnknown VerticalAccuracy = iota
	VerAcc150Meter
	VerAcc45Meter
	VerAcc25Meter
	VerAcc10Meter
	VerAcc3Meter
	VerAcc1Meter
)

// Speed accuracy classes.
const (
	SpeedAccUnknown SpeedAccuracy = iota
	SpeedAcc10MPS
	SpeedAcc3MPS
	SpeedAcc1MPS
	SpeedAcc03MPS
)

// HorizAccuracyFromMeters returns the smallest class whose bound contains
// the given horizontal error (95%) in meters.
func HorizAccuracyFromMeters(m float64) HorizontalAccuracy {
	switch {
	case m >= 18520:
		return HorizAccUnknown
	case m >= 7408:
		return HorizAcc10NM
	case m >= 3704:
		return HorizAcc4NM
	case m >= 1852:
		return HorizAcc2NM
	case m >= 926:
		return HorizAcc1NM
	case m >= 555.6:
		return HorizAcc05NM
	case m >= 185.2:
		return HorizAcc03NM
	case m >= 92.6:
		return HorizAcc01NM
	case m >= 30:
		return HorizAcc005NM
	case m >= 10:
		return HorizAcc30Meter
	case m >= 3:
		return HorizAcc10Meter
	case m >= 1:
		return HorizAcc3Meter
	case m > 0:
		return HorizAcc1Meter
	}
	return HorizAccUnknown
}

// VertAccuracyFromMeters classifies a vertical error in meters.
func VertAccuracyFromMeters(m float64) VerticalAccuracy {
	switch {
	case m >= 150:
		return VerAccUnknown
	case m >= 45:
		return VerAcc150Meter
	case m >= 25:
		return VerAcc45Meter
	case m >= 10:
		return VerAcc25Meter
	case m >= 3:
		return VerAcc10Meter
	case m >= 1:
		return VerAcc3Meter
	case m > 0:
		return VerAcc1Meter
	}
	return VerAccUnknown
}

// SpeedAccuracyFromMPS classifies a speed error in m/s.
func SpeedAccuracyFromMPS(mps float64) SpeedAccuracy {
	switch {
	case mps >= 10:
		return SpeedAccUnknown
	case mps >= 3:
		return SpeedAcc10MPS
	case mps >= 1:
		return SpeedAcc3MPS
	case mps >= 0.3:
		return SpeedAcc1MPS
	case mps > 0:
		return SpeedAcc03MPS
	}
	return SpeedAccUnknown
}

// TimestampAccuracyFromSeconds rounds up to tenths of a second; anything
// outside (0, 1.5] is unknown.
func TimestampAccuracyFromSeconds(s float64) TimestampAccuracy {
	if math.IsNaN(s) || s <= 0 || s > 1.5 {
		return 0
	}
	return TimestampAccuracy(math.Ceil(s*10 - 1e-9))
}
