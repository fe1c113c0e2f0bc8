package hci

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/linux/hci/cmd"
)

// State ...
type State string

type nextState struct {
	s    State
	done chan error
}

// State ...
const (
	Configuring            State = "Configuring"
	Advertising            State = "Advertising"
	AdvertisingDataUpdated State = "AdvertisingDataUpdated"
	StopAdvertising        State = "StopAdvertising"
)

// Flow is one configured advertising flow.
type Flow struct {
	Kind     transmitter.FlowKind
	Handle   uint8 // extended flows only
	Interval time.Duration
	Enabled  bool
}

type states struct {
	sync.Mutex

	hci *HCI

	chState   chan nextState
	done      chan bool
	closeOnce sync.Once
	err       error

	addr       Addr
	intervals  map[transmitter.FlowKind]time.Duration
	flows      []Flow
	registered map[uint8]bool

	// Pending advertising data, framed by the caller.
	data []byte
	pack bool

	advEnable  cmd.LESetAdvertiseEnable
	advDisable cmd.LESetAdvertiseEnable
	extDisable cmd.LESetExtendedAdvertisingEnable
}

func newStates() *states {
	return &states{
		chState: make(chan nextState, 10),
		done:    make(chan bool),

		intervals: map[transmitter.FlowKind]time.Duration{
			transmitter.Legacy:            transmitter.DefaultLegacyInterval,
			transmitter.ExtendedStandard:  transmitter.DefaultStandardInterval,
			transmitter.ExtendedLongRange: transmitter.DefaultLongRangeInterval,
		},
		registered: map[uint8]bool{},

		advEnable:  cmd.LESetAdvertiseEnable{AdvertisingEnable: 1},
		advDisable: cmd.LESetAdvertiseEnable{AdvertisingEnable: 0},
		extDisable: cmd.LESetExtendedAdvertisingEnable{Enable: 0}, // no sets: disable all
	}
}

func (s *states) init(h *HCI) {
	s.hci = h
	go s.loop()
}

func (s *states) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *states) loop() {
	for {
		select {
		case <-s.done:
			return
		case next := <-s.chState:
			s.handle(next)
		}
	}
}

func (s *states) set(next State) error {
	if s.hci == nil {
		return errors.New("hci: not initialized")
	}
	n := nextState{s: next, done: make(chan error, 1)}
	select {
	case s.chState <- n:
	case <-s.done:
		return ErrClosed
	}
	select {
	case err := <-n.done:
		return err
	case <-s.done:
		return ErrClosed
	}
}

// send returns command failures to the caller, and remembers engine
// failures in s.err, which stops the rest of the sequence.
func (s *states) send(c Command, r CommandRP) error {
	if s.err != nil {
		return s.err
	}
	err := s.hci.Send(c, r)
	if err == nil {
		return nil
	}
	if ferr := s.hci.Error(); ferr != nil {
		s.err = ferr
		return ferr
	}
	logger.Warn("command failed", "cmd", cmd.Name(c.OpCode()), "err", err)
	return err
}

func (s *states) handle(n nextState) {
	s.err = nil
	logger.Debug(string(n.s) + " +")
	var err error
	defer func() {
		logger.Debug(string(n.s) + " -")
		if s.err != nil {
			err = s.err
		}
		n.done <- err
	}()
	switch n.s {
	case Configuring:
		s.configure()
	case Advertising:
		s.enable()
	case AdvertisingDataUpdated:
		err = s.updateData()
	case StopAdvertising:
		s.stop()
		s.Lock()
		s.flows = nil
		s.registered = map[uint8]bool{}
		s.Unlock()
	}
}

func (s *states) reset() {
	if s.send(&cmd.Reset{}, nil) != nil {
		return
	}
	// The controller forgets its advertising sets and stops advertising.
	s.Lock()
	s.registered = map[uint8]bool{}
	for i := range s.flows {
		s.flows[i].Enabled = false
	}
	s.Unlock()
}

func (s *states) configure() {
	s.Lock()
	a := s.addr
	s.Unlock()
	if a == (Addr{}) {
		var err error
		if a, err = NewRandomStaticAddr(); err != nil {
			s.err = err
			return
		}
		s.Lock()
		s.addr = a
		s.Unlock()
		logger.Info("session address", "addr", a)
	}
	s.reset()
	s.stop()
	s.readFeatures()

	s.Lock()
	flows := append([]Flow(nil), s.flows...)
	s.Unlock()

	haveSets := false
	for _, f := range flows {
		if s.err != nil {
			return
		}
		if f.Kind.Extended() && haveSets {
			logger.Debug("reset skipped to keep configured advertising sets", "flow", f.Kind.String())
		} else {
			s.reset()
		}
		switch f.Kind {
		case transmitter.Legacy:
			s.setLegacyParams(f)
			s.send(&cmd.LESetRandomAddress{RandomAddress: a}, nil)
		default:
			if s.setExtendedParams(f) == nil {
				haveSets = true
			}
			s.send(&cmd.LESetAdvertisingSetRandomAddress{
				AdvertisingHandle: f.Handle,
				RandomAddress:     a,
			}, nil)
		}
	}
}

func (s *states) readFeatures() {
	rp := cmd.LEReadLocalSupportedFeaturesRP{}
	if s.send(&cmd.LEReadLocalSupportedFeatures{}, &rp) != nil {
		return
	}
	for _, f := range FeatureNames(rp.LEFeatures) {
		logger.Info("supported LE feature", "name", f)
	}
}

func (s *states) setLegacyParams(f Flow) error {
	iv := LegacyInterval(f.Interval)
	return s.send(&cmd.LESetAdvertisingParameters{
		AdvertisingIntervalMin:  iv,        // 0x0020 - 0x4000; N * 0.625 msec
		AdvertisingIntervalMax:  iv,        // 0x0020 - 0x4000; N * 0.625 msec
		AdvertisingType:         0x03,      // 00: ADV_IND, 0x01: DIRECT(HIGH), 0x02: SCAN, 0x03: NONCONN, 0x04: DIRECT(LOW)
		OwnAddressType:          0x01,      // 0x00: public, 0x01: random
		DirectAddressType:       0x00,      // 0x00: public, 0x01: random
		DirectAddress:           [6]byte{}, // Not used for undirected advertising
		AdvertisingChannelMap:   0x7,       // 0x07 0x01: ch37, 0x2: ch38, 0x4: ch39
		AdvertisingFilterPolicy: 0x00,
	}, nil)
}

func (s *states) setExtendedParams(f Flow) error {
	c := cmd.LESetExtendedAdvertisingParameters{
		AdvertisingHandle:             f.Handle,
		AdvertisingEventProperties:    0x0010, // legacy PDUs, non-connectable and non-scannable undirected
		PrimaryAdvertisingChannelMap:  0x07,   // ch37, ch38, ch39
		OwnAddressType:                0x01,   // random
		PeerAddressType:               0x00,
		AdvertisingFilterPolicy:       0x00,
		AdvertisingTxPower:            0x7F, // no preference
		PrimaryAdvertisingPHY:         0x01, // LE 1M
		SecondaryAdvertisingMaxSkip:   0x00,
		SecondaryAdvertisingPHY:       0x01, // LE 1M
		AdvertisingSID:                f.Handle,
		ScanRequestNotificationEnable: 0x00,
	}
	if f.Kind == transmitter.ExtendedLongRange {
		c.AdvertisingEventProperties = 0x0000 // non-connectable and non-scannable undirected
		c.PrimaryAdvertisingPHY = 0x03        // LE Coded
		c.SecondaryAdvertisingPHY = 0x03      // LE Coded
	}
	iv := ExtendedInterval(f.Interval)
	cmd.PutInterval24(&c.PrimaryAdvertisingIntervalMin, iv)
	cmd.PutInterval24(&c.PrimaryAdvertisingIntervalMax, iv)

	rp := cmd.LESetExtendedAdvertisingParametersRP{}
	if err := s.send(&c, &rp); err != nil {
		return err
	}
	logger.Info("advertising set configured", "flow", f.Kind.String(), "handle", f.Handle, "txPower", rp.SelectedTxPower)
	s.Lock()
	s.registered[f.Handle] = true
	s.Unlock()
	return nil
}

func (s *states) enable() {
	s.Lock()
	flows := append([]Flow(nil), s.flows...)
	s.Unlock()

	var sets []cmd.AdvertisingSet
	for _, f := range flows {
		if f.Kind == transmitter.Legacy {
			if s.send(&s.advEnable, nil) == nil {
				s.markEnabled(transmitter.Legacy)
			}
			continue
		}
		sets = append(sets, cmd.AdvertisingSet{AdvertisingHandle: f.Handle})
	}
	if len(sets) == 0 {
		return
	}
	if s.send(&cmd.LESetExtendedAdvertisingEnable{Enable: 1, Sets: sets}, nil) == nil {
		s.markEnabled(transmitter.ExtendedStandard, transmitter.ExtendedLongRange)
	}
}

func (s *states) markEnabled(kinds ...transmitter.FlowKind) {
	s.Lock()
	defer s.Unlock()
	for i := range s.flows {
		for _, k := range kinds {
			if s.flows[i].Kind == k {
				s.flows[i].Enabled = true
			}
		}
	}
}

// stop disables both advertising command sets and removes both extended
// advertising sets. Each step is harmless when nothing is configured.
func (s *states) stop() {
	s.send(&s.advDisable, nil)
	s.send(&s.extDisable, nil)
	for _, h := range []uint8{transmitter.StandardSetHandle, transmitter.LongRangeSetHandle} {
		s.remove(h)
	}
	s.Lock()
	for i := range s.flows {
		s.flows[i].Enabled = false
	}
	s.Unlock()
}

func (s *states) remove(handle uint8) {
	if s.err != nil {
		return
	}
	err := s.hci.Send(&cmd.LERemoveAdvertisingSet{AdvertisingHandle: handle}, nil)
	switch {
	case err == nil:
	case errors.Cause(err) == ErrUnknownAdvertisingID:
		logger.Debug("advertising set not present", "handle", handle)
	default:
		if ferr := s.hci.Error(); ferr != nil {
			s.err = ferr
			return
		}
		logger.Warn("advertising set not removed", "handle", handle, "err", err)
		return
	}
	s.Lock()
	delete(s.registered, handle)
	s.Unlock()
}

func (s *states) updateData() error {
	s.Lock()
	flows := append([]Flow(nil), s.flows...)
	data, pack := s.data, s.pack
	s.Unlock()

	var first error
	note := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for _, f := range flows {
		if f.Kind == transmitter.Legacy {
			if pack {
				logger.Debug("message pack not sent on legacy flow")
				continue
			}
			c := cmd.LESetAdvertisingData{AdvertisingDataLength: uint8(len(data))}
			copy(c.AdvertisingData[:], data)
			note(s.send(&c, nil))
			continue
		}
		note(s.send(&cmd.LESetExtendedAdvertisingData{
			AdvertisingHandle:  f.Handle,
			Operation:          0x03, // complete extended advertising data
			FragmentPreference: 0x01, // should not fragment
			AdvertisingData:    data,
		}, nil))
	}
	return first
}

func (s *states) registeredSets() []uint8 {
	s.Lock()
	defer s.Unlock()
	var h []uint8
	for k := range s.registered {
		h = append(h, k)
	}
	sort.Slice(h, func(i, j int) bool { return h[i] < h[j] })
	return h
}
