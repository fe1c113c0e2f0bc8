// Package location keeps the location message of the snapshot current
// with fixes read from a position source.
package location

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/gpsd"
	"github.com/opendroneid/transmitter-linux/odid"
)

var logger = transmitter.NewLogger("location")

// Retry limits. Exceeding one terminates the sampler.
const (
	MaxWaitRetries = 60
	MaxReadRetries = 5
)

// DefaultWaitTimeout bounds one wait for data.
const DefaultWaitTimeout = 500 * time.Millisecond

var (
	// ErrMaxWaitRetries is returned when the source stayed silent too long.
	ErrMaxWaitRetries = errors.New("location: max wait retries reached")

	// ErrMaxReadRetries is returned after too many consecutive read failures.
	ErrMaxReadRetries = errors.New("location: max read retries reached")
)

// Source delivers fixes, e.g. a *gpsd.Client.
type Source interface {
	WaitReady(timeout time.Duration) (bool, error)
	Read() (*gpsd.Fix, error)
}

// State of the sampler.
type State int32

// Sampler states.
const (
	WaitingForData State = iota
	Reading
	Updating
	Terminated
)

func (s State) String() string {
	switch s {
	case WaitingForData:
		return "WaitingForData"
	case Reading:
		return "Reading"
	case Updating:
		return "Updating"
	case Terminated:
		return "Terminated"
	}
	return "Unknown"
}

// An Option configures a Sampler.
type Option func(*Sampler)

// OptWaitTimeout sets how long one wait for data may take.
func OptWaitTimeout(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.waitTmo = d
		}
	}
}

// Sampler reads fixes from a source into a snapshot.
type Sampler struct {
	src     Source
	snap    *transmitter.Snapshot
	waitTmo time.Duration
	state   int32
}

// NewSampler returns a sampler updating snap from src.
func NewSampler(src Source, snap *transmitter.Snapshot, opts ...Option) *Sampler {
	s := &Sampler{src: src, snap: snap, waitTmo: DefaultWaitTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Sampler) State() State { return State(atomic.LoadInt32(&s.state)) }

func (s *Sampler) set(st State) { atomic.StoreInt32(&s.state, int32(st)) }

// Run samples until ctx is done, which is not an error, or until a retry
// limit is exceeded.
func (s *Sampler) Run(ctx context.Context) error {
	defer s.set(Terminated)
	waits, reads := 0, 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.set(WaitingForData)
		ok, err := s.src.WaitReady(s.waitTmo)
		if err != nil {
			logger.Warn("wait failed", "err", err)
		}
		if !ok {
			waits++
			logger.Debug("no data, retrying", "retries", waits)
			if waits > MaxWaitRetries {
				return errors.Wrapf(ErrMaxWaitRetries, "after %d waits", waits)
			}
			continue
		}
		waits = 0

		s.set(Reading)
		fix, err := s.src.Read()
		if err != nil {
			reads++
			logger.Warn("read failed, retrying", "retries", reads, "err", err)
			if reads > MaxReadRetries {
				return errors.Wrapf(ErrMaxReadRetries, "after %d reads", reads)
			}
			continue
		}
		reads = 0

		s.set(Updating)
		s.snap.UpdateLocation(func(loc *odid.Location, sys odid.System) {
			Apply(loc, sys, fix)
		})
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Apply merges fix into loc. Position and track need a 2D fix; heights,
// speeds and accuracies a 3D fix. Fields the fix lacks keep their value.
func Apply(loc *odid.Location, sys odid.System, fix *gpsd.Fix) {
	if fix == nil {
		return
	}
	if fix.Mode >= gpsd.Mode2D {
		loc.Latitude = fix.Latitude
		loc.Longitude = fix.Longitude
		if finite(fix.Track) {
			loc.Direction = fix.Track
		}
		if !fix.Time.IsZero() {
			t := fix.Time.UTC()
			loc.TimeStamp = float64(t.Minute()*60+t.Second()) + float64(t.Nanosecond()/1e8)/10
		}
	}
	if fix.Mode < gpsd.Mode3D {
		return
	}

	alt := fix.AltMSL
	if !finite(alt) {
		alt = fix.Altitude
	}
	if finite(alt) {
		loc.AltitudeGeo = alt
		loc.AltitudeBaro = alt
		loc.Height = alt - sys.OperatorAltitudeGeo
	}
	if finite(fix.Speed) {
		loc.SpeedHorizontal = fix.Speed
	}
	if finite(fix.Climb) {
		loc.SpeedVertical = fix.Climb
	}
	if finite(fix.EPH) {
		loc.HorizAccuracy = odid.HorizAccuracyFromMeters(fix.EPH)
	}
	if finite(fix.EPV) {
		loc.VertAccuracy = odid.VertAccuracyFromMeters(fix.EPV)
	}
	if finite(fix.EPS) {
		loc.SpeedAccuracy = odid.SpeedAccuracyFromMPS(fix.EPS)
	}
}
