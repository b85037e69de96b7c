package schedule

import (
	"fmt"
	"time"
)

const (
	dayStart = time.Duration(0)
	dayEnd   = 23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond
)

// Clock is a local wall-clock time in minute resolution, written as HH:MM.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts exactly the 24-hour HH:MM form.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return Clock{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Offset is the time elapsed since midnight.
func (c Clock) Offset() time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute
}

func (c Clock) Before(o Clock) bool {
	return c.Offset() < o.Offset()
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
