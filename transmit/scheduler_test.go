package transmit

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/odid"
)

type sent struct {
	pack    bool
	b       []byte
	counter uint8
}

type recorder struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recorder) SendMessage(msg []byte, counter uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{b: append([]byte(nil), msg...), counter: counter})
	return nil
}

func (r *recorder) SendPack(pack []byte, counter uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{pack: true, b: append([]byte(nil), pack...), counter: counter})
	return nil
}

func (r *recorder) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sent...)
}

func TestSingleMessageOrder(t *testing.T) {
	r := &recorder{}
	s := New(transmitter.NewSnapshot(odid.ExampleData()), OptTransport(r), OptPeriods(0, 0))
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	want := []struct {
		typ     uint8
		counter uint8
	}{
		{odid.MessageTypeBasicID, 0},
		{odid.MessageTypeBasicID, 1},
		{odid.MessageTypeLocation, 0},
		{odid.MessageTypeAuth, 0},
		{odid.MessageTypeAuth, 1},
		{odid.MessageTypeAuth, 2},
		{odid.MessageTypeSelfID, 0},
		{odid.MessageTypeSystem, 0},
		{odid.MessageTypeOperatorID, 0},
	}
	got := r.all()
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].pack || len(got[i].b) != odid.MessageSize {
			t.Errorf("#%d: not a single message", i)
			continue
		}
		if typ := got[i].b[0] >> 4; typ != w.typ || got[i].counter != w.counter {
			t.Errorf("#%d: type %d counter %d, want type %d counter %d", i, typ, got[i].counter, w.typ, w.counter)
		}
	}
}

func TestCounterWrap(t *testing.T) {
	const cycles = 300
	tests := []struct {
		name  string
		packs bool
		want  map[transmitter.Category]uint8
	}{
		{"single", false, map[transmitter.Category]uint8{
			transmitter.CategoryBasicID:    2 * cycles % 256,
			transmitter.CategoryLocation:   cycles % 256,
			transmitter.CategoryAuth:       3 * cycles % 256,
			transmitter.CategorySelfID:     cycles % 256,
			transmitter.CategorySystem:     cycles % 256,
			transmitter.CategoryOperatorID: cycles % 256,
			transmitter.CategoryPacked:     0,
		}},
		{"packs", true, map[transmitter.Category]uint8{
			transmitter.CategoryBasicID: 0,
			transmitter.CategoryPacked:  cycles * transmitter.PackRepetitions % 256,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(transmitter.NewSnapshot(odid.ExampleData()),
				OptTransport(&recorder{}), OptPacks(tt.packs), OptPeriods(0, 0))
			for i := 0; i < cycles; i++ {
				if err := s.Cycle(context.Background()); err != nil {
					t.Fatalf("Cycle: %v", err)
				}
			}
			c := s.Counters()
			for cat, want := range tt.want {
				if got := c.Value(cat); got != want {
					t.Errorf("%s counter %d, want %d", cat, got, want)
				}
			}
		})
	}
}

func TestPackCycle(t *testing.T) {
	r1, r2 := &recorder{}, &recorder{}
	s := New(transmitter.NewSnapshot(odid.ExampleData()),
		OptTransport(r1, r2), OptPacks(true), OptPeriods(0, 0), OptPackRepetitions(3))
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	for _, r := range []*recorder{r1, r2} {
		got := r.all()
		if len(got) != 3 {
			t.Fatalf("got %d packs, want 3", len(got))
		}
		for i, p := range got {
			if !p.pack || p.counter != uint8(i) {
				t.Errorf("#%d: pack %v counter %d", i, p.pack, p.counter)
			}
			if len(p.b) != odid.PackLen(odid.PackMaxMessages) || p.b[0] != 0xF2 || p.b[1] != 25 || p.b[2] != 9 {
				t.Errorf("#%d: pack header [% X], %d bytes", i, p.b[:3], len(p.b))
			}
		}
	}
}

func TestEncodeFailureSkipsMessage(t *testing.T) {
	d := odid.ExampleData()
	d.SelfID.Desc = strings.Repeat("x", odid.StrSize+1)
	snap := transmitter.NewSnapshot(d)

	r := &recorder{}
	s := New(snap, OptTransport(r), OptPeriods(0, 0))
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if n := len(r.all()); n != 8 {
		t.Errorf("got %d messages, want 8", n)
	}
	c := s.Counters()
	if v := c.Value(transmitter.CategorySelfID); v != 0 {
		t.Errorf("self id counter %d, want 0", v)
	}

	r = &recorder{}
	s = New(snap, OptTransport(r), OptPacks(true), OptPeriods(0, 0), OptPackRepetitions(1))
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	got := r.all()
	if len(got) != 1 || got[0].b[2] != 8 || len(got[0].b) != odid.PackLen(8) {
		t.Errorf("pack %v", got)
	}
}

func TestPackRebuiltFromSnapshot(t *testing.T) {
	snap := transmitter.NewSnapshot(odid.ExampleData())
	r := &recorder{}
	s := New(snap, OptTransport(r), OptPacks(true), OptPeriods(0, 0), OptPackRepetitions(1))
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap.Update(func(d *odid.UASData) { d.Location = odid.ExampleLocation() })
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := r.all()
	if len(got) != 2 {
		t.Fatalf("got %d packs", len(got))
	}
	// Location is the third entry of the pack.
	loc := 3 + 2*odid.MessageSize
	if got[0].b[loc+1] == got[1].b[loc+1] {
		t.Errorf("location status not updated: 0x%02X", got[1].b[loc+1])
	}
}

func TestRunOnce(t *testing.T) {
	r := &recorder{}
	s := New(transmitter.NewSnapshot(odid.ExampleData()), OptTransport(r), OptPeriods(0, 0), OptOnce())
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := len(r.all()); n != 9 {
		t.Errorf("got %d messages, want 9", n)
	}
}

func TestRunCancel(t *testing.T) {
	r := &recorder{}
	s := New(transmitter.NewSnapshot(odid.ExampleData()), OptTransport(r), OptPeriods(time.Millisecond, 0))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if n := len(r.all()); n < 9 {
		t.Errorf("got %d messages, want at least one cycle", n)
	}
}

// broken fails every send; down latches once the failure is permanent.
type broken struct {
	mu    sync.Mutex
	sends int
	down  error
}

func (b *broken) send() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sends++
	if b.sends == 3 {
		b.down = errors.New("controller gone")
	}
	return errors.New("send failed")
}

func (b *broken) SendMessage(msg []byte, counter uint8) error { return b.send() }
func (b *broken) SendPack(pack []byte, counter uint8) error   { return b.send() }

func (b *broken) Error() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.down
}

func TestRunStopsOnFailedTransport(t *testing.T) {
	for _, packs := range []bool{false, true} {
		b := &broken{}
		r := &recorder{}
		s := New(transmitter.NewSnapshot(odid.ExampleData()),
			OptTransport(b, r), OptPacks(packs), OptPeriods(0, 0))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.Run(ctx)
		late := ctx.Err() != nil
		cancel()
		if errors.Cause(err) == nil || errors.Cause(err).Error() != "controller gone" {
			t.Errorf("packs %v: Run = %v, want controller gone", packs, err)
		}
		if late {
			t.Errorf("packs %v: Run returned only after the deadline", packs)
		}
		if b.sends != 3 {
			t.Errorf("packs %v: %d sends, want 3", packs, b.sends)
		}
	}
}

func TestRunKeepsGoingOnSendError(t *testing.T) {
	s := New(transmitter.NewSnapshot(odid.ExampleData()),
		OptTransport(&flaky{}), OptOnce(), OptPeriods(0, 0))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

type flaky struct{}

func (flaky) SendMessage(msg []byte, counter uint8) error { return errors.New("busy") }
func (flaky) SendPack(pack []byte, counter uint8) error   { return errors.New("busy") }
