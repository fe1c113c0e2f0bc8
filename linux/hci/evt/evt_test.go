package evt

import "testing"

func TestCommandComplete(t *testing.T) {
	e := CommandComplete([]byte{0x01, 0x36, 0x20, 0x00, 0x09})
	if !e.Valid() {
		t.Fatal("Valid() = false")
	}
	if e.NumHCICommandPackets() != 1 || e.CommandOpcode() != 0x2036 {
		t.Fatalf("got %d packets, opcode 0x%04X", e.NumHCICommandPackets(), e.CommandOpcode())
	}
	if e.Status() != 0 || len(e.ReturnParameters()) != 2 {
		t.Fatalf("status %d, return parameters % X", e.Status(), e.ReturnParameters())
	}
	if CommandComplete([]byte{0x01, 0x00}).Valid() {
		t.Fatal("short event is valid")
	}
	if s := CommandComplete([]byte{0x01, 0x3C, 0x20, 0x42}).Status(); s != 0x42 {
		t.Fatalf("Status() = %#x", s)
	}
}

func TestCommandStatus(t *testing.T) {
	e := CommandStatus([]byte{0x0C, 0x01, 0x39, 0x20})
	if !e.Valid() {
		t.Fatal("Valid() = false")
	}
	if e.Status() != 0x0C || e.NumHCICommandPackets() != 1 || e.CommandOpcode() != 0x2039 {
		t.Fatalf("status %#x, %d packets, opcode 0x%04X", e.Status(), e.NumHCICommandPackets(), e.CommandOpcode())
	}
	if CommandStatus([]byte{0x00, 0x01, 0x39}).Valid() {
		t.Fatal("short event is valid")
	}
	if c := HardwareError([]byte{0x05}).HardwareCode(); c != 0x05 {
		t.Fatalf("HardwareCode() = %#x", c)
	}
}
