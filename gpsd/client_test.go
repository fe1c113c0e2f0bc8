package gpsd

import (
	"bufio"
	"math"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// serve accepts one client, checks the WATCH request and writes reports.
func serve(t *testing.T, reports <-chan string) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		req, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil || !strings.HasPrefix(req, "?WATCH=") {
			t.Errorf("request %q, %v", req, err)
			return
		}
		for r := range reports {
			if _, err := conn.Write([]byte(r + "\n")); err != nil {
				return
			}
		}
	}()
	return l.Addr().String()
}

func TestClient(t *testing.T) {
	reports := make(chan string, 4)
	c, err := Dial(serve(t, reports))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	ok, err := c.WaitReady(20 * time.Millisecond)
	if ok || err != nil {
		t.Fatalf("WaitReady without data = %v, %v", ok, err)
	}

	reports <- `{"class":"VERSION","release":"3.22"}`
	reports <- `{"class":"TPV","mode":3,"time":"2024-05-01T10:17:05.500Z","lat":51.4791,"lon":-0.0013,"altHAE":110.0,"altMSL":64.2,"track":12.5,"speed":3.1,"climb":-0.4,"epx":4.0,"epy":6.0,"epv":9.5}`
	close(reports)

	tests := []struct {
		mode int
		lat  float64
	}{
		{ModeUnknown, math.NaN()},
		{Mode3D, 51.4791},
	}
	for i, tt := range tests {
		ok, err := c.WaitReady(time.Second)
		if !ok || err != nil {
			t.Fatalf("#%d: WaitReady = %v, %v", i, ok, err)
		}
		f, err := c.Read()
		if err != nil {
			t.Fatalf("#%d: Read: %v", i, err)
		}
		if f.Mode != tt.mode {
			t.Errorf("#%d: mode %d, want %d", i, f.Mode, tt.mode)
		}
		if math.IsNaN(tt.lat) != math.IsNaN(f.Latitude) || (!math.IsNaN(tt.lat) && f.Latitude != tt.lat) {
			t.Errorf("#%d: latitude %v, want %v", i, f.Latitude, tt.lat)
		}
	}

	f, _ := c.Read()
	if f != nil {
		t.Errorf("Read after close returned %+v", f)
	}
}

func TestTPV(t *testing.T) {
	alt, msl, epx, epy := 110.0, 64.2, 4.0, 6.0
	r := tpv{Class: "TPV", Mode: 3, AltHAE: &alt, AltMSL: &msl, EPX: &epx, EPY: &epy, Time: "2024-05-01T10:17:05.5Z"}
	f := r.fix()
	if f.Altitude != 110 || f.AltMSL != 64.2 {
		t.Errorf("altitudes %v %v", f.Altitude, f.AltMSL)
	}
	if f.EPH != 6 {
		t.Errorf("eph %v, want 6", f.EPH)
	}
	if !math.IsNaN(f.Speed) || !math.IsNaN(f.EPV) {
		t.Errorf("absent fields not NaN: speed %v epv %v", f.Speed, f.EPV)
	}
	if f.Time.Minute() != 17 || f.Time.Nanosecond() != 5e8 {
		t.Errorf("time %v", f.Time)
	}

	old := 95.0
	r = tpv{Class: "TPV", Mode: 3, Alt: &old}
	if f := r.fix(); f.Altitude != 95 || !math.IsNaN(f.AltMSL) {
		t.Errorf("legacy alt: %v %v", f.Altitude, f.AltMSL)
	}
}

func TestReadIncompleteReport(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	rest := make(chan string)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		conn.Write([]byte(`{"class":"TPV","mode":3,`))
		for r := range rest {
			conn.Write([]byte(r))
		}
	}()

	c, err := Dial(l.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if ok, err := c.WaitReady(time.Second); !ok || err != nil {
		t.Fatalf("WaitReady = %v, %v", ok, err)
	}
	c.WaitReady(50 * time.Millisecond)
	start := time.Now()
	if _, err := c.Read(); errors.Cause(err) != ErrTimeout {
		t.Fatalf("Read of a partial report = %v, want %v", err, ErrTimeout)
	}
	if d := time.Since(start); d > time.Second {
		t.Errorf("Read blocked for %v", d)
	}

	rest <- `"lat":1.5,"lon":2.5}` + "\n"
	close(rest)
	if ok, err := c.WaitReady(time.Second); !ok || err != nil {
		t.Fatalf("WaitReady for the rest = %v, %v", ok, err)
	}
	f, err := c.Read()
	if err != nil {
		t.Fatalf("Read after the report completed: %v", err)
	}
	if f.Mode != Mode3D || f.Latitude != 1.5 || f.Longitude != 2.5 {
		t.Errorf("fix %+v", f)
	}
}
