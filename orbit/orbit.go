// Package orbit propagates the ISS orbit from a two-line element set so the
// tracker map has a position even when no live feed is reachable.
package orbit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// ErrInvalidTLE is returned for element sets that fail format checks.
var ErrInvalidTLE = errors.New("invalid TLE")

// Embedded fallback element set for the ISS (ZARYA).
const (
	DefaultName  = "ISS (ZARYA)"
	DefaultLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  30153-3 0  9999"
	DefaultLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.49815350432481"
)

// Position is a geodetic fix. Angles are in degrees, altitude in km and
// velocity in km/s.
type Position struct {
	Time      time.Time `json:"time" yaml:"time"`
	Latitude  float64   `json:"latitude" yaml:"latitude"`
	Longitude float64   `json:"longitude" yaml:"longitude"`
	Altitude  float64   `json:"altitude_km" yaml:"altitude_km"`
	Velocity  float64   `json:"velocity_kms" yaml:"velocity_kms"`
}

// Tracker propagates a single satellite with SGP4.
type Tracker struct {
	name  string
	epoch time.Time
	sat   satellite.Satellite
}

// NewTracker builds a tracker from TLE lines. The lines are checked before
// they reach the propagator, which aborts the process on malformed input.
func NewTracker(name, line1, line2 string) (*Tracker, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)
	if err := validate(line1, line2); err != nil {
		return nil, err
	}
	epoch, err := parseEpoch(line1)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		name:  name,
		epoch: epoch,
		sat:   satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
	}
	if _, err := t.At(epoch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTLE, err)
	}
	return t, nil
}

// DefaultTracker returns a tracker for the embedded ISS element set.
func DefaultTracker() *Tracker {
	t, err := NewTracker(DefaultName, DefaultLine1, DefaultLine2)
	if err != nil {
		panic(fmt.Sprintf("orbit: embedded TLE: %v", err))
	}
	return t
}

// Name returns the satellite name.
func (t *Tracker) Name() string { return t.name }

// Epoch returns the element set epoch.
func (t *Tracker) Epoch() time.Time { return t.epoch }

// At propagates to tm and converts the result to latitude, longitude and
// altitude.
func (t *Tracker) At(tm time.Time) (Position, error) {
	tm = tm.UTC()
	year, month, day := tm.Date()
	hour, min, sec := tm.Clock()

	eci, _ := satellite.Propagate(t.sat, year, int(month), day, hour, min, sec)
	if !finite(eci.X) || !finite(eci.Y) || !finite(eci.Z) {
		return Position{}, fmt.Errorf("propagate %s to %s: non-finite position", t.name, tm.Format(time.RFC3339))
	}

	gmst := satellite.ThetaG_JD(satellite.JDay(year, int(month), day, hour, min, sec))
	alt, vel, ll := satellite.ECIToLLA(eci, gmst)

	return Position{
		Time:      tm,
		Latitude:  ll.Latitude * 180 / math.Pi,
		Longitude: wrapLongitude(ll.Longitude * 180 / math.Pi),
		Altitude:  alt,
		Velocity:  vel,
	}, nil
}

// GroundTrack returns n fixes spaced by step starting at start.
func (t *Tracker) GroundTrack(start time.Time, step time.Duration, n int) ([]Position, error) {
	out := make([]Position, 0, n)
	for i := 0; i < n; i++ {
		p, err := t.At(start.Add(time.Duration(i) * step))
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

func validate(line1, line2 string) error {
	for i, l := range []string{line1, line2} {
		if len(l) != 69 {
			return fmt.Errorf("%w: line%d length %d, expected 69", ErrInvalidTLE, i+1, len(l))
		}
		if want := byte('1' + i); l[0] != want {
			return fmt.Errorf("%w: line%d must start with %q", ErrInvalidTLE, i+1, want)
		}
		if sum := checksum(l); int(l[68]-'0') != sum {
			return fmt.Errorf("%w: line%d checksum %c, computed %d", ErrInvalidTLE, i+1, l[68], sum)
		}
	}
	if line1[2:7] != line2[2:7] {
		return fmt.Errorf("%w: catalog numbers differ (%s, %s)", ErrInvalidTLE, line1[2:7], line2[2:7])
	}
	return checkFields(line1, line2)
}

// numericField is a column the propagator parses. build reproduces the
// text it hands to strconv.
type numericField struct {
	name  string
	line  int
	isInt bool
	build func(l string) string
}

func squeeze(s string) string { return strings.Replace(s, " ", "", 2) }

var numericFields = []numericField{
	{"catalog number", 1, true, func(l string) string { return strings.TrimSpace(l[2:7]) }},
	{"epoch year", 1, true, func(l string) string { return l[18:20] }},
	{"epoch day", 1, false, func(l string) string { return l[20:32] }},
	{"mean motion derivative", 1, false, func(l string) string { return squeeze(l[33:43]) }},
	{"mean motion second derivative", 1, false, func(l string) string {
		return squeeze(l[44:45] + "." + l[45:50] + "e" + l[50:52])
	}},
	{"bstar", 1, false, func(l string) string { return squeeze(l[53:54] + "." + l[54:59] + "e" + l[59:61]) }},
	{"inclination", 2, false, func(l string) string { return squeeze(l[8:16]) }},
	{"right ascension", 2, false, func(l string) string { return squeeze(l[17:25]) }},
	{"eccentricity", 2, false, func(l string) string { return "." + l[26:33] }},
	{"argument of perigee", 2, false, func(l string) string { return squeeze(l[34:42]) }},
	{"mean anomaly", 2, false, func(l string) string { return squeeze(l[43:51]) }},
	{"mean motion", 2, false, func(l string) string { return squeeze(l[52:63]) }},
}

// checkFields parses every column go-satellite reads, since it calls
// log.Fatal on the first one that does not parse.
func checkFields(line1, line2 string) error {
	for _, f := range numericFields {
		l := line1
		if f.line == 2 {
			l = line2
		}
		text := f.build(l)
		var err error
		if f.isInt {
			_, err = strconv.ParseInt(text, 10, 0)
		} else {
			_, err = strconv.ParseFloat(text, 64)
		}
		if err != nil {
			return fmt.Errorf("%w: line%d %s %q", ErrInvalidTLE, f.line, f.name, text)
		}
	}
	return nil
}

// checksum is the modulo-10 sum of digits with '-' counted as 1.
func checksum(line string) int {
	sum := 0
	for _, c := range line[:68] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// parseEpoch reads the YYDDD.DDDDDDDD epoch field of line 1.
func parseEpoch(line1 string) (time.Time, error) {
	field := strings.TrimSpace(line1[18:32])
	if len(field) < 5 {
		return time.Time{}, fmt.Errorf("%w: epoch %q", ErrInvalidTLE, field)
	}
	yy, err := strconv.Atoi(field[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: epoch year %q", ErrInvalidTLE, field[:2])
	}
	days, err := strconv.ParseFloat(field[2:], 64)
	if err != nil || days < 1 {
		return time.Time{}, fmt.Errorf("%w: epoch day %q", ErrInvalidTLE, field[2:])
	}
	year := 2000 + yy
	if yy >= 57 {
		year = 1900 + yy
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((days - 1) * float64(24*time.Hour))), nil
}

func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
