package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opendroneid/transmitter-linux/odid"
)

const sample = `
hci:
  device: 1
  bt5_interval: 1s
gpsd:
  wait_timeout: 2s
identity:
  basic_id:
    - ua_type: 2
      id_type: 1
      uas_id: "SERIAL0001"
  self_id:
    desc: "Survey flight"
  system:
    operator_latitude: 52.1
    operator_longitude: 4.3
    operator_altitude_geo: 12.5
  operator_id:
    id: "FIN87astrdge12k8"
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := Default()
	if c.HCI.Device != 1 || c.HCI.LongRange != time.Second || c.HCI.Standard != def.HCI.Standard {
		t.Errorf("hci %+v", c.HCI)
	}
	if c.GPSD.WaitTimeout != 2*time.Second || c.GPSD.Addr != def.GPSD.Addr {
		t.Errorf("gpsd %+v", c.GPSD)
	}
	if c.Hostapd != def.Hostapd {
		t.Errorf("hostapd %+v", c.Hostapd)
	}

	d := odid.ExampleData()
	d.Location = odid.ExampleLocation()
	c.Identity.Apply(&d)
	if d.BasicID[0].UASID != "SERIAL0001" || d.BasicID[0].UAType != odid.UATypeHelicopterOrMultirotor {
		t.Errorf("basic id %+v", d.BasicID[0])
	}
	if d.BasicID[1] != odid.ExampleData().BasicID[1] {
		t.Errorf("second basic id changed: %+v", d.BasicID[1])
	}
	if d.SelfID.Desc != "Survey flight" || d.System.OperatorAltitudeGeo != 12.5 || d.OperatorID.OperatorID != "FIN87astrdge12k8" {
		t.Errorf("identity %+v", d)
	}
	if d.Location != odid.ExampleLocation() {
		t.Errorf("location changed: %+v", d.Location)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", "hci: [1"},
		{"duration", "hci:\n  bt4_interval: 0s\n"},
		{"basic ids", "identity:\n  basic_id: [{uas_id: a}, {uas_id: b}, {uas_id: c}]\n"},
		{"uas id", "identity:\n  basic_id: [{uas_id: \"123456789012345678901\"}]\n"},
		{"self id", "identity:\n  self_id: {desc: \"123456789012345678901234\"}\n"},
	}
	for _, tt := range tests {
		if _, err := Parse([]byte(tt.in)); err == nil {
			t.Errorf("%s: no error", tt.name)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("no error for a missing file")
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ridtx.yaml")
	if err := os.WriteFile(path, []byte("hci:\n  device: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 10*time.Millisecond, func(c *Config) { got <- c })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.HCI.Device != 3 {
				t.Fatalf("device %d, want 3", c.HCI.Device)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch: %v", err)
			}
			return
		case <-tick.C:
			os.WriteFile(path, []byte("hci:\n  device: 3\n"), 0o644)
		case <-deadline:
			t.Fatal("no reload")
		}
	}
}
