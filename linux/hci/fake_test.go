package hci

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/opendroneid/transmitter-linux/linux/hci/cmd"
)

type sentCmd struct {
	op     uint16
	params []byte
}

// fakeController answers HCI commands the way a controller with
// extended advertising support does.
type fakeController struct {
	mu sync.Mutex

	rx      chan []byte
	cmds    []sentCmd
	readErr error

	features   uint64
	registered map[uint8]bool
	enabled    map[uint8]bool
	legacyOn   bool

	// mismatch makes every reply come after a Command Complete for
	// another opcode.
	mismatch bool
	// silent lists opcodes that are never answered.
	silent map[uint16]bool
}

func newFakeController() *fakeController {
	return &fakeController{
		rx:         make(chan []byte, 64),
		features:   1<<FeatureLECodedPHY | 1<<FeatureExtendedAdvertising,
		registered: map[uint8]bool{},
		enabled:    map[uint8]bool{},
		silent:     map[uint16]bool{},
	}
}

func (f *fakeController) Read(b []byte) (int, error) {
	f.mu.Lock()
	err := f.readErr
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	select {
	case p := <-f.rx:
		return copy(b, p), nil
	case <-time.After(time.Millisecond):
		return 0, unix.EAGAIN
	}
}

func (f *fakeController) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(b) < 4 || b[0] != pktTypeCommand || int(b[3]) != len(b[4:]) {
		return 0, unix.EINVAL
	}
	op := binary.LittleEndian.Uint16(b[1:])
	p := append([]byte(nil), b[4:]...)
	f.cmds = append(f.cmds, sentCmd{op: op, params: p})
	if f.silent[op] {
		return len(b), nil
	}
	if f.mismatch {
		f.rx <- commandComplete(op+1, 0x00, nil)
	}
	status, rp := f.exec(op, p)
	f.rx <- commandComplete(op, status, rp)
	return len(b), nil
}

func (f *fakeController) Close() error { return nil }

func (f *fakeController) exec(op uint16, p []byte) (uint8, []byte) {
	switch op {
	case cmd.ResetOpCode:
		f.registered = map[uint8]bool{}
		f.enabled = map[uint8]bool{}
		f.legacyOn = false
	case cmd.LEReadLocalSupportedFeaturesOpCode:
		rp := make([]byte, 8)
		binary.LittleEndian.PutUint64(rp, f.features)
		return 0x00, rp
	case cmd.LESetAdvertiseEnableOpCode:
		f.legacyOn = p[0] == 1
	case cmd.LESetExtendedAdvertisingParametersOpCode:
		f.registered[p[0]] = true
		return 0x00, []byte{7}
	case cmd.LESetAdvertisingSetRandomAddressOpCode, cmd.LESetExtendedAdvertisingDataOpCode:
		if !f.registered[p[0]] {
			return uint8(ErrUnknownAdvertisingID), nil
		}
	case cmd.LESetExtendedAdvertisingEnableOpCode:
		n := int(p[1])
		if p[0] == 0 && n == 0 {
			f.enabled = map[uint8]bool{}
			break
		}
		for i := 0; i < n; i++ {
			if !f.registered[p[2+4*i]] {
				return uint8(ErrUnknownAdvertisingID), nil
			}
		}
		for i := 0; i < n; i++ {
			f.enabled[p[2+4*i]] = p[0] == 1
		}
	case cmd.LERemoveAdvertisingSetOpCode:
		if !f.registered[p[0]] {
			return uint8(ErrUnknownAdvertisingID), nil
		}
		delete(f.registered, p[0])
		delete(f.enabled, p[0])
	}
	return 0x00, nil
}

func commandComplete(op uint16, status uint8, rp []byte) []byte {
	b := []byte{pktTypeEvent, 0x0E, byte(4 + len(rp)), 1, byte(op), byte(op >> 8), status}
	return append(b, rp...)
}

func commandStatus(op uint16, status uint8) []byte {
	return []byte{pktTypeEvent, 0x0F, 4, status, 1, byte(op), byte(op >> 8)}
}

func (f *fakeController) sent(op uint16) []sentCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var c []sentCmd
	for _, s := range f.cmds {
		if s.op == op {
			c = append(c, s)
		}
	}
	return c
}

func (f *fakeController) reset() {
	f.mu.Lock()
	f.cmds = nil
	f.mu.Unlock()
}

func (f *fakeController) state() (registered, enabled int, legacy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, on := range f.enabled {
		if on {
			enabled++
		}
	}
	return len(f.registered), enabled, f.legacyOn
}

func newTestHCI(t *testing.T, f *fakeController, opts ...Option) *HCI {
	t.Helper()
	opts = append([]Option{OptSocket(f), OptCommandTimeout(time.Second)}, opts...)
	h, err := NewHCI(opts...)
	if err != nil {
		t.Fatalf("NewHCI: %v", err)
	}
	if err := h.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}
