//go:build linux

package socket

import (
	"io"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/opendroneid/transmitter-linux"
)

var logger = transmitter.NewLogger("socket")

// ErrBusy is returned when a controller handle is already open in this
// process.
var ErrBusy = errors.New("hci socket already open")

var (
	muOpen sync.Mutex
	open   bool
)

func ioR(t, nr, size uintptr) uintptr {
	return (2 << 30) | (t << 8) | nr | (size << 16)
}

func ioW(t, nr, size uintptr) uintptr {
	return (1 << 30) | (t << 8) | nr | (size << 16)
}

func ioctl(fd, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, op, arg); ep != 0 {
		return syscall.Errno(ep)
	}
	return nil
}

const (
	ioctlSize     = 4
	hciMaxDevices = 16
	typHCI        = 72 // 'H'

	solHCI    = 0 // SOL_HCI
	hciFilter = 2 // HCI_FILTER

	pktTypeEvent       = 0x04
	evtCommandComplete = 0x0E
)

var (
	hciUpDevice      = ioW(typHCI, 201, ioctlSize) // HCIDEVUP
	hciGetDeviceList = ioR(typHCI, 210, ioctlSize) // HCIGETDEVLIST
	hciGetDeviceInfo = ioR(typHCI, 211, ioctlSize) // HCIGETDEVINFO
)

type devRequest struct {
	id  uint16
	opt uint32
}

type devListRequest struct {
	devNum     uint16
	devRequest [hciMaxDevices]devRequest
}

type hciDevInfo struct {
	id         uint16
	name       [8]byte
	bdaddr     [6]byte
	flags      uint32
	devType    uint8
	features   [8]uint8
	pktType    uint32
	linkPolicy uint32
	linkMode   uint32
	aclMtu     uint16
	aclPkts    uint16
	scoMtu     uint16
	scoPkts    uint16

	stats [10]uint32
}

// filter mirrors struct hci_filter.
type filter struct {
	typeMask  uint32
	eventMask [2]uint32
	opcode    uint16
}

type skt struct {
	fd   int
	dev  int
	name string
	rmu  *sync.Mutex
	wmu  *sync.Mutex
}

// NewSocket opens the HCI raw channel of device n, or of the first usable
// device if n is -1. Reads time out after readTmo with unix.EAGAIN, and only
// Command Complete events are delivered.
func NewSocket(n int, readTmo time.Duration) (io.ReadWriteCloser, error) {
	muOpen.Lock()
	defer muOpen.Unlock()
	if open {
		return nil, ErrBusy
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "can't create hci socket")
	}
	s, err := pick(fd, n)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := s.setFilter(); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't set hci filter")
	}
	if readTmo > 0 {
		tv := unix.NsecToTimeval(readTmo.Nanoseconds())
		if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			unix.Close(fd)
			return nil, errors.Wrap(err, "can't set read timeout")
		}
	}
	open = true
	logger.Info("dev opened", "name", s.name, "id", s.dev)
	return s, nil
}

func pick(fd, n int) (*skt, error) {
	if n != -1 {
		return bind(fd, n)
	}
	req := devListRequest{devNum: hciMaxDevices}
	if err := ioctl(uintptr(fd), hciGetDeviceList, uintptr(unsafe.Pointer(&req))); err != nil {
		return nil, errors.Wrap(err, "can't list hci devices")
	}
	for i := 0; i < int(req.devNum); i++ {
		s, err := bind(fd, int(req.devRequest[i].id))
		if err == nil {
			return s, nil
		}
		logger.Debug("dev skipped", "id", req.devRequest[i].id, "err", err)
	}
	return nil, errors.New("no supported devices available")
}

func bind(fd, n int) (*skt, error) {
	i := hciDevInfo{id: uint16(n)}
	if err := ioctl(uintptr(fd), hciGetDeviceInfo, uintptr(unsafe.Pointer(&i))); err != nil {
		return nil, errors.Wrapf(err, "can't get info of hci%d", n)
	}
	name := unix.ByteSliceToString(i.name[:])
	if err := ioctl(uintptr(fd), hciUpDevice, uintptr(n)); err != nil && err != syscall.EALREADY {
		return nil, errors.Wrapf(err, "can't bring %s up", name)
	}
	sa := unix.SockaddrHCI{Dev: uint16(n), Channel: unix.HCI_CHANNEL_RAW}
	if err := unix.Bind(fd, &sa); err != nil {
		return nil, errors.Wrapf(err, "can't bind to %s", name)
	}
	return &skt{
		fd:   fd,
		dev:  n,
		name: name,
		rmu:  &sync.Mutex{},
		wmu:  &sync.Mutex{},
	}, nil
}

// setFilter lets only event packets carrying Command Complete through.
func (s *skt) setFilter() error {
	f := filter{typeMask: 1 << pktTypeEvent}
	f.eventMask[evtCommandComplete>>5] = 1 << (evtCommandComplete & 31)
	_, _, ep := unix.Syscall6(unix.SYS_SETSOCKOPT, uintptr(s.fd), solHCI, hciFilter,
		uintptr(unsafe.Pointer(&f)), unsafe.Sizeof(f), 0)
	if ep != 0 {
		return syscall.Errno(ep)
	}
	return nil
}

func (s *skt) Read(b []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	return unix.Read(s.fd, b)
}

func (s *skt) Write(b []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return unix.Write(s.fd, b)
}

func (s *skt) Close() error {
	muOpen.Lock()
	defer muOpen.Unlock()
	open = false
	logger.Info("dev closed", "name", s.name)
	return unix.Close(s.fd)
}
