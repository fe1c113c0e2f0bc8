package transmitter

import "github.com/pkg/errors"

var (
	// ErrNothingSelected is returned when no transport was requested.
	ErrNothingSelected = errors.New("no transport selected")

	// ErrMixedAdvertisingAPI is returned when legacy advertising is combined
	// with extended advertising. Controllers reject mixing the two command sets.
	ErrMixedAdvertisingAPI = errors.New("legacy advertising can not be combined with bt4/bt5")

	// ErrPacksNeedExtended is returned when message packs are requested on a
	// legacy-PDU flow, which can only carry a single message.
	ErrPacksNeedExtended = errors.New("message packs need bt5 extended advertising")
)
