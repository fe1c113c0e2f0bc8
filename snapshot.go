package transmitter

import (
	"sync"

	"github.com/opendroneid/transmitter-linux/odid"
)

// Snapshot is the identification data shared between the location sampler,
// the configuration watcher and the transmission scheduler.
type Snapshot struct {
	mu   sync.RWMutex
	data odid.UASData
}

// NewSnapshot returns a snapshot holding d.
func NewSnapshot(d odid.UASData) *Snapshot {
	return &Snapshot{data: d}
}

// Load returns a copy of the current data.
func (s *Snapshot) Load() odid.UASData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Update applies f under the write lock.
func (s *Snapshot) Update(f func(*odid.UASData)) {
	s.mu.Lock()
	f(&s.data)
	s.mu.Unlock()
}

// UpdateLocation applies f to the location. The system message is passed
// along since heights are computed relative to the operator altitude.
func (s *Snapshot) UpdateLocation(f func(*odid.Location, odid.System)) {
	s.mu.Lock()
	f(&s.data.Location, s.data.System)
	s.mu.Unlock()
}
