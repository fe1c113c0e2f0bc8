package transmit

import (
	"context"
	"sync/atomic"
)

type job struct {
	pack    bool
	b       []byte
	counter uint8
}

// Async decouples a slow transport. It holds at most one pending send; a
// newer one replaces it.
type Async struct {
	t       Transport
	slot    chan job
	dropped uint64
}

// NewAsync wraps t. Sends reach t only while Run is running.
func NewAsync(t Transport) *Async {
	return &Async{t: t, slot: make(chan job, 1)}
}

// SendMessage queues msg and returns immediately.
func (a *Async) SendMessage(msg []byte, counter uint8) error {
	a.put(job{b: append([]byte(nil), msg...), counter: counter})
	return nil
}

// SendPack queues pack and returns immediately.
func (a *Async) SendPack(pack []byte, counter uint8) error {
	a.put(job{pack: true, b: append([]byte(nil), pack...), counter: counter})
	return nil
}

// Dropped returns the number of sends that were replaced before they
// reached the transport.
func (a *Async) Dropped() uint64 { return atomic.LoadUint64(&a.dropped) }

func (a *Async) put(j job) {
	for {
		select {
		case a.slot <- j:
			return
		default:
		}
		select {
		case <-a.slot:
			atomic.AddUint64(&a.dropped, 1)
		default:
		}
	}
}

// Run forwards queued sends until ctx is done.
func (a *Async) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-a.slot:
			var err error
			if j.pack {
				err = a.t.SendPack(j.b, j.counter)
			} else {
				err = a.t.SendMessage(j.b, j.counter)
			}
			if err != nil {
				logger.Warn("async send failed", "err", err)
			}
		}
	}
}
