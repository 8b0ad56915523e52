package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ClockTime is a wall-clock time of day held as minutes since midnight.
// It marshals as "HH:MM". 24:00 is accepted as an end-of-day bound.
type ClockTime int

const endOfDay ClockTime = 24 * 60

func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

// MustClock is ParseClock for literals; it panics on bad input.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add returns c shifted by the given number of minutes.
func (c ClockTime) Add(minutes int) ClockTime {
	return c + ClockTime(minutes)
}

// Valid reports whether c lies within a single day.
func (c ClockTime) Valid() bool {
	return c >= 0 && c <= endOfDay
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start ClockTime `json:"start" yaml:"start"`
	End   ClockTime `json:"end" yaml:"end"`
}

func (r TimeRange) Minutes() int {
	return int(r.End - r.Start)
}

// Overlaps reports whether [a,b) and [c,d) intersect, i.e. a<d && c<b.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r TimeRange) Validate() error {
	if !r.Start.Valid() || !r.End.Valid() {
		return fmt.Errorf("time range %s-%s outside of day", r.Start, r.End)
	}
	if r.Start >= r.End {
		return fmt.Errorf("time range start %s must be before end %s", r.Start, r.End)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Weekday names as used in working-hour tables.
func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}
