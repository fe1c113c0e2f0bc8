// Package transmit broadcasts the identification data over one or more
// transports, either one message at a time or as message packs.
package transmit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/odid"
)

var logger = transmitter.NewLogger("transmit")

// Transport broadcasts encoded messages. counter is the message counter
// of the message category, or of packs.
type Transport interface {
	SendMessage(msg []byte, counter uint8) error
	SendPack(pack []byte, counter uint8) error
}

// A Failer is a transport that can fail for good. Once Error returns
// non-nil, the scheduler stops with that error.
type Failer interface {
	Error() error
}

// An Option configures a Scheduler.
type Option func(*Scheduler)

// OptTransport adds transports.
func OptTransport(t ...Transport) Option {
	return func(s *Scheduler) { s.transports = append(s.transports, t...) }
}

// OptPacks selects message packs instead of single messages.
func OptPacks(packs bool) Option {
	return func(s *Scheduler) { s.packs = packs }
}

// OptOnce makes Run return after one cycle.
func OptOnce() Option {
	return func(s *Scheduler) { s.once = true }
}

// OptPeriods sets the pause between two single messages and between two
// pack repetitions. Zero disables pacing.
func OptPeriods(msg, pack time.Duration) Option {
	return func(s *Scheduler) {
		s.msgPeriod = msg
		s.packPeriod = pack
	}
}

// OptPackRepetitions sets how many times a pack is sent before it is
// rebuilt.
func OptPackRepetitions(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.reps = n
		}
	}
}

// Scheduler is one transmission session. It owns the message counters.
type Scheduler struct {
	snap       *transmitter.Snapshot
	transports []Transport

	packs      bool
	once       bool
	msgPeriod  time.Duration
	packPeriod time.Duration
	reps       int

	msgLimiter  *rate.Limiter
	packLimiter *rate.Limiter

	counters transmitter.Counters
}

// New returns a scheduler broadcasting the content of snap.
func New(snap *transmitter.Snapshot, opts ...Option) *Scheduler {
	s := &Scheduler{
		snap:       snap,
		msgPeriod:  transmitter.SingleMessagePeriod,
		packPeriod: transmitter.PackPeriod,
		reps:       transmitter.PackRepetitions,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.msgLimiter = newLimiter(s.msgPeriod)
	s.packLimiter = newLimiter(s.packPeriod)
	return s
}

func newLimiter(period time.Duration) *rate.Limiter {
	if period <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(period), 1)
}

// wait blocks until l allows the next send. Wait refuses early when the
// deadline of ctx comes first; that is reported as the cancellation.
func wait(ctx context.Context, l *rate.Limiter) error {
	if err := l.Wait(ctx); err != nil {
		<-ctx.Done()
		return errors.Wrap(ctx.Err(), "transmit")
	}
	return nil
}

// Run repeats Cycle until ctx is done, or once with OptOnce.
// Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		err := s.Cycle(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil || s.once {
			return err
		}
	}
}

// Cycle broadcasts the current data once: every message in single mode,
// or one pack repeated in pack mode.
func (s *Scheduler) Cycle(ctx context.Context) error {
	d := s.snap.Load()
	msgs := d.Messages(func(typ uint8, err error) {
		logger.Warn("message skipped", "type", transmitter.CategoryOf(typ).String(), "err", err)
	})
	if s.packs {
		return s.sendPack(ctx, msgs)
	}
	return s.sendMessages(ctx, msgs)
}

// Counters returns the message counters. Call it from the goroutine
// running the scheduler, or after Run returned.
func (s *Scheduler) Counters() transmitter.Counters { return s.counters }

func (s *Scheduler) sendMessages(ctx context.Context, msgs []odid.Message) error {
	for i := range msgs {
		if err := wait(ctx, s.msgLimiter); err != nil {
			return err
		}
		cat := transmitter.CategoryOf(msgs[i].Type())
		c := s.counters.Value(cat)
		for _, t := range s.transports {
			if err := t.SendMessage(msgs[i][:], c); err != nil {
				logger.Warn("can't send message", "type", cat.String(), "err", err)
				if err := failed(t); err != nil {
					return err
				}
			}
		}
		s.counters.Next(cat)
	}
	return nil
}

func (s *Scheduler) sendPack(ctx context.Context, msgs []odid.Message) error {
	pack, err := odid.EncodePack(msgs)
	if err != nil {
		logger.Error("can't build message pack", "err", err)
		// Keep the cadence while there is nothing to send.
		if err := wait(ctx, s.packLimiter); err != nil {
			return err
		}
		return nil
	}
	logger.Debug("message pack", "messages", len(msgs), "len", len(pack))
	for i := 0; i < s.reps; i++ {
		if err := wait(ctx, s.packLimiter); err != nil {
			return err
		}
		c := s.counters.Value(transmitter.CategoryPacked)
		for _, t := range s.transports {
			if err := t.SendPack(pack, c); err != nil {
				logger.Warn("can't send message pack", "err", err)
				if err := failed(t); err != nil {
					return err
				}
			}
		}
		s.counters.Next(transmitter.CategoryPacked)
	}
	return nil
}

func failed(t Transport) error {
	f, ok := t.(Failer)
	if !ok {
		return nil
	}
	if err := f.Error(); err != nil {
		return errors.Wrap(err, "transport failed")
	}
	return nil
}
