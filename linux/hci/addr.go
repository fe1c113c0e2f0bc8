package hci

import (
	"crypto/rand"
	"fmt"

	"github.com/pkg/errors"
)

// Addr is a device address in HCI (little endian) byte order.
type Addr [6]byte

// NewRandomStaticAddr returns a random static device address
// [Vol 6, Part B, 1.3.2.1]: the two most significant bits are 1.
func NewRandomStaticAddr() (Addr, error) {
	var a Addr
	if _, err := rand.Read(a[:]); err != nil {
		return a, errors.Wrap(err, "can't generate random address")
	}
	a[5] |= 0xC0
	return a, nil
}

// String returns the address in the usual most significant byte first form.
func (a Addr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}
