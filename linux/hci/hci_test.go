package hci

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux/linux/hci/cmd"
)

func TestSendStatus(t *testing.T) {
	f := newFakeController()
	h := newTestHCI(t, f)
	err := h.Send(&cmd.LERemoveAdvertisingSet{AdvertisingHandle: 5}, nil)
	if errors.Cause(err) != ErrUnknownAdvertisingID {
		t.Errorf("got %v, want %v", err, ErrUnknownAdvertisingID)
	}
}

func TestSendReturnParameters(t *testing.T) {
	f := newFakeController()
	h := newTestHCI(t, f)
	rp := cmd.LEReadLocalSupportedFeaturesRP{}
	if err := h.Send(&cmd.LEReadLocalSupportedFeatures{}, &rp); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if rp.LEFeatures != f.features {
		t.Errorf("features 0x%X, want 0x%X", rp.LEFeatures, f.features)
	}
}

func TestOpcodeMismatchIgnored(t *testing.T) {
	f := newFakeController()
	f.mismatch = true
	h := newTestHCI(t, f)
	rp := cmd.LESetExtendedAdvertisingParametersRP{}
	if err := h.Send(&cmd.LESetExtendedAdvertisingParameters{AdvertisingHandle: 1}, &rp); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if rp.SelectedTxPower != 7 {
		t.Errorf("tx power %d, want 7", rp.SelectedTxPower)
	}
	if err := h.Error(); err != nil {
		t.Errorf("device failed: %v", err)
	}
}

func TestCommandTimeout(t *testing.T) {
	f := newFakeController()
	f.silent[cmd.ResetOpCode] = true
	h := newTestHCI(t, f, OptCommandTimeout(20*time.Millisecond))

	start := time.Now()
	err := h.Send(&cmd.Reset{}, nil)
	if errors.Cause(err) != ErrCommandTimeout {
		t.Fatalf("got %v, want %v", err, ErrCommandTimeout)
	}
	if d := time.Since(start); d < 20*time.Millisecond {
		t.Errorf("returned after %s", d)
	}

	// A timeout is not fatal.
	if err := h.Send(&cmd.LESetAdvertiseEnable{}, nil); err != nil {
		t.Errorf("Send after timeout: %v", err)
	}
}

func TestCommandStatusRejects(t *testing.T) {
	f := newFakeController()
	f.silent[cmd.ResetOpCode] = true
	h := newTestHCI(t, f, OptCommandTimeout(time.Second))

	go func() {
		for len(f.sent(cmd.ResetOpCode)) == 0 {
			time.Sleep(time.Millisecond)
		}
		f.rx <- commandStatus(cmd.ResetOpCode+1, 0x0C)
		f.rx <- commandStatus(cmd.ResetOpCode, 0x0C)
	}()
	start := time.Now()
	if err := h.Send(&cmd.Reset{}, nil); errors.Cause(err) != ErrDisallowed {
		t.Fatalf("got %v, want %v", err, ErrDisallowed)
	}
	if d := time.Since(start); d >= time.Second {
		t.Errorf("returned after %s", d)
	}
	if err := h.Error(); err != nil {
		t.Errorf("device failed: %v", err)
	}
}

func TestHardwareErrorIsFatal(t *testing.T) {
	f := newFakeController()
	h := newTestHCI(t, f)
	f.rx <- []byte{pktTypeEvent, 0x10, 1, 0x05}

	deadline := time.Now().Add(time.Second)
	for h.Error() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := h.Error(); err == nil || !strings.Contains(err.Error(), "hardware error 0x05") {
		t.Fatalf("device error %v", err)
	}
	if err := h.Send(&cmd.Reset{}, nil); err == nil {
		t.Error("Send succeeded after a hardware error")
	}
}

func TestReadFailureIsFatal(t *testing.T) {
	f := newFakeController()
	h := newTestHCI(t, f)
	boom := errors.New("device gone")
	f.mu.Lock()
	f.readErr = boom
	f.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for h.Error() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if errors.Cause(h.Error()) != boom {
		t.Fatalf("device error %v, want %v", h.Error(), boom)
	}
	if err := h.Send(&cmd.Reset{}, nil); err == nil {
		t.Error("Send succeeded on a failed device")
	}
	if err := h.Configure(0); err == nil {
		t.Error("Configure succeeded on a failed device")
	}
}

func TestClose(t *testing.T) {
	f := newFakeController()
	h := newTestHCI(t, f)
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if errors.Cause(h.Error()) != ErrClosed {
		t.Errorf("device error %v, want %v", h.Error(), ErrClosed)
	}
	if err := h.Send(&cmd.Reset{}, nil); errors.Cause(err) != ErrClosed {
		t.Errorf("Send after Close: %v", err)
	}
}

func TestNotInitialized(t *testing.T) {
	h, err := NewHCI()
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Send(&cmd.Reset{}, nil); err == nil {
		t.Error("Send succeeded before Init")
	}
	if err := h.Shutdown(); err == nil {
		t.Error("Shutdown succeeded before Init")
	}
}
