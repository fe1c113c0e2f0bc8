package hci

import (
	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/adv"
)

// Configure sets up one advertising flow per kind and enables them.
// Command failures are logged and the sequence continues. Only an engine
// failure, such as a closed socket, is returned.
func (h *HCI) Configure(kinds ...transmitter.FlowKind) error {
	if len(kinds) == 0 {
		return ErrNoFlows
	}
	seen := map[transmitter.FlowKind]bool{}
	var legacy, extended bool
	for _, k := range kinds {
		if seen[k] {
			return errors.Wrapf(ErrDuplicateFlow, "%s", k)
		}
		seen[k] = true
		if k.Extended() {
			extended = true
		} else {
			legacy = true
		}
	}
	if legacy && extended {
		return transmitter.ErrMixedAdvertisingAPI
	}

	s := h.states
	s.Lock()
	s.flows = s.flows[:0]
	for _, k := range kinds {
		f := Flow{Kind: k, Interval: s.intervals[k]}
		if k.Extended() {
			f.Handle = k.Handle()
		}
		s.flows = append(s.flows, f)
	}
	s.Unlock()

	if err := s.set(Configuring); err != nil {
		return errors.Wrap(err, "can't configure advertising")
	}
	if err := s.set(Advertising); err != nil {
		return errors.Wrap(err, "can't enable advertising")
	}
	for _, f := range h.Flows() {
		logger.Info("flow", "kind", f.Kind.String(), "handle", f.Handle, "interval", f.Interval, "enabled", f.Enabled)
	}
	return nil
}

// Shutdown disables advertising and removes the advertising sets. It may
// be called any number of times, with or without a prior Configure.
func (h *HCI) Shutdown() error {
	return h.states.set(StopAdvertising)
}

// SendMessage advertises one encoded message on every flow.
func (h *HCI) SendMessage(msg []byte, counter uint8) error {
	p, err := adv.LegacyRemoteID(counter, msg)
	if err != nil {
		return err
	}
	return h.setData(p, false)
}

// SendPack advertises a message pack on every extended flow. Legacy
// flows can't carry a pack and are skipped.
func (h *HCI) SendPack(pack []byte, counter uint8) error {
	p, err := adv.RemoteID(counter, pack)
	if err != nil {
		return err
	}
	return h.setData(p, true)
}

func (h *HCI) setData(p adv.Packet, pack bool) error {
	s := h.states
	s.Lock()
	s.data = []byte(p)
	s.pack = pack
	s.Unlock()
	return s.set(AdvertisingDataUpdated)
}

// Flows returns a copy of the configured flows.
func (h *HCI) Flows() []Flow {
	h.states.Lock()
	defer h.states.Unlock()
	return append([]Flow(nil), h.states.flows...)
}

// RegisteredSets returns the handles of the advertising sets the
// controller currently holds.
func (h *HCI) RegisteredSets() []uint8 { return h.states.registeredSets() }

// Addr returns the random static address of the session. It is zero
// before the first Configure.
func (h *HCI) Addr() Addr {
	h.states.Lock()
	defer h.states.Unlock()
	return h.states.addr
}
