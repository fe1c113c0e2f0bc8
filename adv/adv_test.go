package adv

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestRemoteID(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 25)
	p, err := RemoteID(7, payload)
	if err != nil {
		t.Fatalf("RemoteID error: %v", err)
	}
	want := append([]byte{30, 0x16, 0xFA, 0xFF, 0x0D, 7}, payload...)
	if !bytes.Equal(p, want) {
		t.Fatalf("RemoteID = % x\nwant % x", p, want)
	}
	id, data, ok := p.ServiceData16()
	if !ok || id != ASTMServiceUUID || data[0] != AppCodeOpenDroneID || data[1] != 7 {
		t.Fatalf("ServiceData16 = %#x % x %v", id, data, ok)
	}
}

func TestRemoteIDPackLength(t *testing.T) {
	for k := 1; k <= 9; k++ {
		pack := make([]byte, 3+k*25)
		p, err := RemoteID(0, pack)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if int(p[0]) != 5+3+k*25 {
			t.Fatalf("k=%d: service length = %d, want %d", k, p[0], 5+3+k*25)
		}
		if p.Len() != 1+5+3+k*25 {
			t.Fatalf("k=%d: total = %d, want %d", k, p.Len(), 1+5+3+k*25)
		}
	}
}

func TestRemoteIDTooLong(t *testing.T) {
	if _, err := LegacyRemoteID(0, make([]byte, 26)); errors.Cause(err) != ErrTooLong {
		t.Fatalf("legacy 26 bytes: err = %v", err)
	}
	if _, err := LegacyRemoteID(0, make([]byte, 25)); err != nil {
		t.Fatalf("legacy 25 bytes: err = %v", err)
	}
	if _, err := RemoteID(0, make([]byte, 246)); errors.Cause(err) != ErrTooLong {
		t.Fatalf("extended 246 bytes: err = %v", err)
	}
}

func TestField(t *testing.T) {
	p := Packet(nil).AppendFlags(FlagGeneralDiscoverable | FlagLEOnly)
	if f := p.Field(Flags); len(f) != 1 || f[0] != FlagGeneralDiscoverable|FlagLEOnly {
		t.Fatalf("Field(Flags) = % x", f)
	}
	if f := p.Field(ServiceData16); f != nil {
		t.Fatalf("Field(ServiceData16) = % x", f)
	}
	p = p.AppendServiceData16(ASTMServiceUUID, []byte{AppCodeOpenDroneID, 0x07})
	if id, b, ok := p.ServiceData16(); !ok || id != ASTMServiceUUID || len(b) != 2 {
		t.Fatalf("ServiceData16() = %04x, % x, %v", id, b, ok)
	}
	if f := Packet([]byte{5, ServiceData16, 0xFA}).Field(ServiceData16); f != nil {
		t.Fatalf("truncated field = % x", f)
	}
}
