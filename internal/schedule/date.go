package schedule

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day with no time component and no location.
// It is combined with a clock time and the viewer's location only when an
// absolute instant is needed.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool {
	return d.utc().Before(o.utc())
}

func (d Date) After(o Date) bool {
	return d.utc().After(o.utc())
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.utc().Weekday()
}

// DaysUntil returns the number of calendar days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.utc().Sub(d.utc()).Hours() / 24)
}

// At combines the day with a clock offset in loc.
func (d Date) At(offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	s := int(offset % time.Minute / time.Second)
	ns := int(offset % time.Second)
	return time.Date(d.Year, d.Month, d.Day, h, m, s, ns, loc)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthDays lists every day of the given month in order.
func MonthDays(year int, month time.Month) []Date {
	first := NewDate(year, month, 1)
	var days []Date
	for d := first; d.Month == first.Month; d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
