// Package config loads the optional YAML configuration of the transmitter.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	yaml "go.yaml.in/yaml/v3"

	"github.com/opendroneid/transmitter-linux"
	"github.com/opendroneid/transmitter-linux/gpsd"
	"github.com/opendroneid/transmitter-linux/hostapd"
	"github.com/opendroneid/transmitter-linux/odid"
)

var logger = transmitter.NewLogger("config")

// Config is the content of the configuration file. Absent values keep
// their defaults.
type Config struct {
	HCI      HCI       `yaml:"hci"`
	GPSD     GPSD      `yaml:"gpsd"`
	Hostapd  Hostapd   `yaml:"hostapd"`
	Identity *Identity `yaml:"identity"`
}

// HCI selects the Bluetooth controller and the advertising intervals.
type HCI struct {
	Device    int           `yaml:"device"` // -1: first usable
	Legacy    time.Duration `yaml:"legacy_interval"`
	Standard  time.Duration `yaml:"bt4_interval"`
	LongRange time.Duration `yaml:"bt5_interval"`
}

// GPSD locates the gpsd daemon.
type GPSD struct {
	Addr        string        `yaml:"addr"`
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

// Hostapd locates the hostapd control socket.
type Hostapd struct {
	Ctrl   string        `yaml:"ctrl"`
	Settle time.Duration `yaml:"settle"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		HCI: HCI{
			Device:    -1,
			Legacy:    transmitter.DefaultLegacyInterval,
			Standard:  transmitter.DefaultStandardInterval,
			LongRange: transmitter.DefaultLongRangeInterval,
		},
		GPSD:    GPSD{Addr: gpsd.DefaultAddress, WaitTimeout: 500 * time.Millisecond},
		Hostapd: Hostapd{Ctrl: hostapd.DefaultCtrlPath, Settle: time.Second},
	}
}

// Parse decodes b over the defaults.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "can't parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't read config")
	}
	c, err := Parse(b)
	return c, errors.Wrap(err, path)
}

// Validate checks the values that can't be encoded.
func (c *Config) Validate() error {
	for _, d := range []time.Duration{c.HCI.Legacy, c.HCI.Standard, c.HCI.LongRange, c.GPSD.WaitTimeout} {
		if d <= 0 {
			return errors.Errorf("config: non-positive duration %s", d)
		}
	}
	if c.Hostapd.Settle < 0 {
		return errors.Errorf("config: negative hostapd settle time %s", c.Hostapd.Settle)
	}
	if c.Identity == nil {
		return nil
	}
	return c.Identity.validate()
}

// Identity holds the static identification data. Sections that are absent
// keep the data they are applied to.
type Identity struct {
	BasicID    []BasicID   `yaml:"basic_id"`
	Auth       []Auth      `yaml:"auth"`
	SelfID     *SelfID     `yaml:"self_id"`
	System     *System     `yaml:"system"`
	OperatorID *OperatorID `yaml:"operator_id"`
}

// BasicID ...
type BasicID struct {
	UAType uint8  `yaml:"ua_type"`
	IDType uint8  `yaml:"id_type"`
	UASID  string `yaml:"uas_id"`
}

// Auth is one authentication page.
type Auth struct {
	Type          uint8  `yaml:"type"`
	Page          uint8  `yaml:"page"`
	LastPageIndex uint8  `yaml:"last_page_index"`
	Length        uint8  `yaml:"length"`
	Timestamp     uint32 `yaml:"timestamp"`
	Data          string `yaml:"data"`
}

// SelfID ...
type SelfID struct {
	DescType uint8  `yaml:"desc_type"`
	Desc     string `yaml:"desc"`
}

// System ...
type System struct {
	OperatorLocationType uint8   `yaml:"operator_location_type"`
	ClassificationType   uint8   `yaml:"classification_type"`
	OperatorLatitude     float64 `yaml:"operator_latitude"`
	OperatorLongitude    float64 `yaml:"operator_longitude"`
	OperatorAltitudeGeo  float64 `yaml:"operator_altitude_geo"`
	AreaCount            uint16  `yaml:"area_count"`
	AreaRadius           uint16  `yaml:"area_radius"`
	AreaCeiling          float64 `yaml:"area_ceiling"`
	AreaFloor            float64 `yaml:"area_floor"`
	CategoryEU           uint8   `yaml:"category_eu"`
	ClassEU              uint8   `yaml:"class_eu"`
	Timestamp            uint32  `yaml:"timestamp"`
}

// OperatorID ...
type OperatorID struct {
	Type uint8  `yaml:"type"`
	ID   string `yaml:"id"`
}

func (id *Identity) validate() error {
	if len(id.BasicID) > odid.BasicIDMaxCount {
		return errors.Errorf("config: %d basic ids, at most %d", len(id.BasicID), odid.BasicIDMaxCount)
	}
	if len(id.Auth) > odid.AuthPageCount {
		return errors.Errorf("config: %d auth pages, at most %d", len(id.Auth), odid.AuthPageCount)
	}
	for _, b := range id.BasicID {
		if len(b.UASID) > odid.IDSize {
			return errors.Errorf("config: uas id %q longer than %d", b.UASID, odid.IDSize)
		}
	}
	if id.OperatorID != nil && len(id.OperatorID.ID) > odid.IDSize {
		return errors.Errorf("config: operator id %q longer than %d", id.OperatorID.ID, odid.IDSize)
	}
	if id.SelfID != nil && len(id.SelfID.Desc) > odid.StrSize {
		return errors.Errorf("config: self id %q longer than %d", id.SelfID.Desc, odid.StrSize)
	}
	return nil
}

// Apply writes the identity into d. The location is left alone.
func (id *Identity) Apply(d *odid.UASData) {
	for i, b := range id.BasicID {
		d.BasicID[i] = odid.BasicID{UAType: odid.UAType(b.UAType), IDType: odid.IDType(b.IDType), UASID: b.UASID}
	}
	for i, a := range id.Auth {
		d.Auth[i] = odid.Auth{
			DataPage:      a.Page,
			AuthType:      odid.AuthType(a.Type),
			LastPageIndex: a.LastPageIndex,
			Length:        a.Length,
			Timestamp:     a.Timestamp,
			AuthData:      a.Data,
		}
	}
	if s := id.SelfID; s != nil {
		d.SelfID = odid.SelfID{DescType: odid.DescType(s.DescType), Desc: s.Desc}
	}
	if s := id.System; s != nil {
		d.System = odid.System{
			OperatorLocationType: odid.OperatorLocationType(s.OperatorLocationType),
			ClassificationType:   odid.ClassificationType(s.ClassificationType),
			OperatorLatitude:     s.OperatorLatitude,
			OperatorLongitude:    s.OperatorLongitude,
			AreaCount:            s.AreaCount,
			AreaRadius:           s.AreaRadius,
			AreaCeiling:          s.AreaCeiling,
			AreaFloor:            s.AreaFloor,
			CategoryEU:           odid.CategoryEU(s.CategoryEU),
			ClassEU:              odid.ClassEU(s.ClassEU),
			OperatorAltitudeGeo:  s.OperatorAltitudeGeo,
			Timestamp:            s.Timestamp,
		}
	}
	if o := id.OperatorID; o != nil {
		d.OperatorID = odid.OperatorID{OperatorIDType: odid.OperatorIDType(o.Type), OperatorID: o.ID}
	}
}
