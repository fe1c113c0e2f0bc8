package gpsd

import (
	"math"
	"time"
)

// Fix modes reported in TPV.
const (
	ModeUnknown = 0
	ModeNoFix   = 1
	Mode2D      = 2
	Mode3D      = 3
)

// Fix is the latest position report. Fields gpsd did not report are NaN.
type Fix struct {
	Mode      int
	Time      time.Time
	Latitude  float64
	Longitude float64
	Altitude  float64 // meter, height above ellipsoid
	AltMSL    float64 // meter, above mean sea level
	Track     float64 // degrees from true north
	Speed     float64 // m/s
	Climb     float64 // m/s
	EPH       float64 // meter, horizontal position error
	EPV       float64 // meter, vertical position error
	EPS       float64 // m/s, speed error
}

// NoFix returns a fix without any data.
func NoFix() Fix {
	nan := math.NaN()
	return Fix{
		Latitude:  nan,
		Longitude: nan,
		Altitude:  nan,
		AltMSL:    nan,
		Track:     nan,
		Speed:     nan,
		Climb:     nan,
		EPH:       nan,
		EPV:       nan,
		EPS:       nan,
	}
}

// tpv is a TPV report as sent by gpsd. Older daemons send "alt" only,
// newer ones "altHAE" and "altMSL".
type tpv struct {
	Class  string   `json:"class"`
	Mode   int      `json:"mode"`
	Time   string   `json:"time"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Alt    *float64 `json:"alt"`
	AltHAE *float64 `json:"altHAE"`
	AltMSL *float64 `json:"altMSL"`
	Track  *float64 `json:"track"`
	Speed  *float64 `json:"speed"`
	Climb  *float64 `json:"climb"`
	EPH    *float64 `json:"eph"`
	EPX    *float64 `json:"epx"`
	EPY    *float64 `json:"epy"`
	EPV    *float64 `json:"epv"`
	EPS    *float64 `json:"eps"`
}

func val(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func (r *tpv) fix() Fix {
	f := Fix{
		Mode:      r.Mode,
		Latitude:  val(r.Lat),
		Longitude: val(r.Lon),
		Altitude:  val(r.AltHAE),
		AltMSL:    val(r.AltMSL),
		Track:     val(r.Track),
		Speed:     val(r.Speed),
		Climb:     val(r.Climb),
		EPH:       val(r.EPH),
		EPV:       val(r.EPV),
		EPS:       val(r.EPS),
	}
	if math.IsNaN(f.Altitude) {
		f.Altitude = val(r.Alt)
	}
	if math.IsNaN(f.EPH) && r.EPX != nil && r.EPY != nil {
		f.EPH = math.Max(*r.EPX, *r.EPY)
	}
	if t, err := time.Parse(time.RFC3339Nano, r.Time); err == nil {
		f.Time = t
	}
	return f
}
