package transmitter

import "github.com/pkg/errors"

// FlowKind is one Bluetooth advertising configuration.
type FlowKind int

// Advertising flow kinds.
const (
	// Legacy uses the Bluetooth 4 advertising command set.
	Legacy FlowKind = iota
	// ExtendedStandard uses extended advertising with legacy PDUs on the 1M PHY.
	ExtendedStandard
	// ExtendedLongRange uses extended advertising on the LE Coded PHY.
	ExtendedLongRange
)

func (k FlowKind) String() string {
	switch k {
	case Legacy:
		return "legacy"
	case ExtendedStandard:
		return "bt4"
	case ExtendedLongRange:
		return "bt5"
	}
	return "unknown"
}

// Extended reports whether k uses the extended advertising command set.
func (k FlowKind) Extended() bool { return k == ExtendedStandard || k == ExtendedLongRange }

// Handle returns the advertising set handle of an extended flow.
func (k FlowKind) Handle() uint8 {
	if k == ExtendedLongRange {
		return LongRangeSetHandle
	}
	return StandardSetHandle
}

// Selection is the set of transports requested at startup.
type Selection struct {
	Beacon bool // Wi-Fi beacon through hostapd
	Legacy bool
	BT4    bool
	BT5    bool
	Packs  bool
	GPS    bool
}

// Empty reports whether no transport is requested.
func (s Selection) Empty() bool {
	return !s.Beacon && !s.Legacy && !s.BT4 && !s.BT5
}

// Bluetooth reports whether any Bluetooth flow is requested.
func (s Selection) Bluetooth() bool { return s.Legacy || s.BT4 || s.BT5 }

// Kinds returns the requested Bluetooth flows.
func (s Selection) Kinds() []FlowKind {
	var k []FlowKind
	if s.Legacy {
		k = append(k, Legacy)
	}
	if s.BT4 {
		k = append(k, ExtendedStandard)
	}
	if s.BT5 {
		k = append(k, ExtendedLongRange)
	}
	return k
}

// Validate checks the selection. Combinations that work but make little
// sense are returned as warnings.
func (s Selection) Validate() (warnings []string, err error) {
	if s.Empty() {
		return nil, ErrNothingSelected
	}
	if s.Legacy && (s.BT4 || s.BT5) {
		return nil, ErrMixedAdvertisingAPI
	}
	if s.Packs && (s.Legacy || s.BT4) {
		return nil, errors.Wrapf(ErrPacksNeedExtended, "packs with %s", s.singleMessageFlow())
	}
	if s.Beacon && !s.Packs {
		warnings = append(warnings, "beacon is normally used with message packs")
	}
	if s.BT4 && s.BT5 {
		warnings = append(warnings, "bt4 and bt5 together may not be supported by the controller")
	}
	if s.BT5 && !s.Packs {
		warnings = append(warnings, "bt5 is normally used with message packs")
	}
	if s.GPS {
		warnings = append(warnings, "location is read from gpsd; the example location is not used")
	}
	return warnings, nil
}

func (s Selection) singleMessageFlow() FlowKind {
	if s.Legacy {
		return Legacy
	}
	return ExtendedStandard
}
