package hostapd

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Vendor specific element fields: ASD-STAN OUI and the Remote ID type.
const (
	ElementID   = 0xDD
	OUI         = "FA0BBC"
	OUITypeODID = 0x0D
)

// VendorElement returns the vendor_elements value carrying payload:
// element id, length, OUI, type, counter, payload, in hex.
func VendorElement(counter uint8, payload []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%02x%02X%s%02X%02X", ElementID, 5+len(payload), OUI, OUITypeODID, counter)
	sb.WriteString(strings.ToUpper(hex.EncodeToString(payload)))
	return sb.String()
}

// BeaconOption configures a Beacon.
type BeaconOption func(*Beacon)

// OptSettle sets the pause hostapd gets after a beacon update.
func OptSettle(d time.Duration) BeaconOption {
	return func(b *Beacon) { b.settle = d }
}

// Beacon broadcasts Remote ID in the beacon of a hostapd access point.
// Each send blocks for the settle time; wrap it with transmit.NewAsync.
type Beacon struct {
	c      *Conn
	settle time.Duration
}

// NewBeacon returns a beacon transport on c.
func NewBeacon(c *Conn, opts ...BeaconOption) *Beacon {
	b := &Beacon{c: c, settle: time.Second}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SendMessage puts one message into the beacon.
func (b *Beacon) SendMessage(msg []byte, counter uint8) error {
	return b.send(VendorElement(counter, msg), false)
}

// SendPack puts a message pack into the beacon.
func (b *Beacon) SendPack(pack []byte, counter uint8) error {
	return b.send(VendorElement(counter, pack), true)
}

func (b *Beacon) send(elem string, pack bool) error {
	if err := b.c.Set("vendor_elements", elem); err != nil {
		return err
	}
	if pack {
		time.Sleep(b.settle)
	}
	if err := b.c.UpdateBeacon(); err != nil {
		return err
	}
	time.Sleep(b.settle)
	return nil
}
