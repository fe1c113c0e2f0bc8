// Package linux opens the Bluetooth controller of a Linux host for
// Remote ID advertising.
package linux

import (
	"github.com/pkg/errors"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/linux/hci"
)

// NewDevice returns an initialized HCI device.
func NewDevice(opts ...hci.Option) (*Device, error) {
	dev, err := hci.NewHCI(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "can't create hci")
	}
	if err = dev.Init(); err != nil {
		return nil, errors.Wrap(err, "can't init hci")
	}
	return &Device{HCI: dev}, nil
}

// Device is a Bluetooth controller advertising Remote ID flows.
type Device struct {
	HCI *hci.HCI
}

// Advertise configures and enables one advertising flow per kind.
func (d *Device) Advertise(kinds ...transmitter.FlowKind) error {
	return d.HCI.Configure(kinds...)
}

// SendMessage advertises one encoded message on every flow.
func (d *Device) SendMessage(msg []byte, counter uint8) error {
	return d.HCI.SendMessage(msg, counter)
}

// SendPack advertises a message pack on every extended flow.
func (d *Device) SendPack(pack []byte, counter uint8) error {
	return d.HCI.SendPack(pack, counter)
}

// Error returns the error that made the controller unusable, if any.
func (d *Device) Error() error {
	return d.HCI.Error()
}

// Close stops advertising and releases the controller.
func (d *Device) Close() error {
	return d.HCI.Close()
}
