package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zone = time.FixedZone("UTC+2", 2*60*60)

// 2024-07-29 is a Monday.
func at(day, hh, mm int) time.Time {
	return time.Date(2024, time.July, day, hh, mm, 0, 0, zone)
}

func clock(t *testing.T, s string) *Clock {
	t.Helper()
	c, err := ParseClock(s)
	require.NoError(t, err)
	return &c
}

func date(t *testing.T, s string) *Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return &d
}

func nineToTen(t *testing.T) Schedule {
	return Schedule{StartTime: clock(t, "09:00"), EndTime: clock(t, "10:00")}
}

func TestComputeStatus_TimedTaskWithoutDates(t *testing.T) {
	s := nineToTen(t)

	tests := []struct {
		name      string
		now       time.Time
		want      Status
		countdown time.Duration
	}{
		{"before start", at(29, 8, 0), StatusPending, time.Hour},
		{"inside window", at(29, 9, 30), StatusLive, 30 * time.Minute},
		{"at start edge", at(29, 9, 0), StatusLive, time.Hour},
		{"at end edge", at(29, 10, 0), StatusLive, 0},
		{"after end", at(29, 11, 0), StatusOverdue, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(s, tt.now))

			d, ok := ComputeCountdown(s, tt.now)
			require.True(t, ok)
			assert.Equal(t, tt.countdown, d)
		})
	}
}

func TestComputeStatus_RecurringOffDay(t *testing.T) {
	s := Schedule{
		StartTime:     clock(t, "09:00"),
		EndTime:       clock(t, "10:00"),
		RecurringDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	}

	for h := 0; h < 24; h++ {
		now := at(30, h, 15) // Tuesday
		assert.Equal(t, StatusNotScheduledToday, ComputeStatus(s, now), "hour %d", h)
		_, ok := ComputeCountdown(s, now)
		assert.False(t, ok)
	}

	assert.Equal(t, StatusLive, ComputeStatus(s, at(31, 9, 15)))
}

func TestComputeStatus_CompletionTimestamps(t *testing.T) {
	day := NewDate(2024, time.July, 29)

	onTime := nineToTen(t)
	onTime.Completions = map[Date]time.Time{day: at(29, 9, 55)}
	assert.Equal(t, StatusCompletedOnTime, ComputeStatus(onTime, at(29, 12, 0)))

	late := nineToTen(t)
	late.Completions = map[Date]time.Time{day: at(29, 10, 5)}
	assert.Equal(t, StatusCompletedLate, ComputeStatus(late, at(29, 12, 0)))

	_, ok := ComputeCountdown(late, at(29, 12, 0))
	assert.False(t, ok)
}

func TestComputeStatus_CompletionIsPerOccurrence(t *testing.T) {
	s := nineToTen(t)
	s.Completions = map[Date]time.Time{NewDate(2024, time.July, 28): at(28, 9, 30)}

	assert.Equal(t, StatusPending, ComputeStatus(s, at(29, 8, 0)))
}

func TestComputeStatus_UnconstrainedTaskIsAlwaysScheduled(t *testing.T) {
	var s Schedule

	start := at(1, 0, 0)
	for now := start; now.Before(start.AddDate(0, 0, 14)); now = now.Add(37 * time.Minute) {
		st := ComputeStatus(s, now)
		assert.NotEqual(t, StatusNotScheduledToday, st, now.String())
		assert.Equal(t, StatusLive, st)
	}
}

func TestComputeStatus_Idempotent(t *testing.T) {
	s := nineToTen(t)
	s.RecurringDays = []time.Weekday{time.Monday}
	now := at(29, 9, 42)

	assert.Equal(t, Evaluate(s, now), Evaluate(s, now))
}

func TestComputeStatus_MonotonicThroughSingleDay(t *testing.T) {
	rank := map[Status]int{StatusPending: 0, StatusLive: 1, StatusOverdue: 2}

	schedules := map[string]Schedule{
		"timed":      nineToTen(t),
		"single day": {StartDate: date(t, "2024-07-29"), StartTime: clock(t, "13:15"), EndTime: clock(t, "17:45")},
		"end only":   {EndTime: clock(t, "06:00")},
		"start only": {StartTime: clock(t, "22:30")},
	}

	for name, s := range schedules {
		t.Run(name, func(t *testing.T) {
			prev := -1
			seen := map[Status]bool{}
			for now := at(29, 0, 0); DateOf(now) == NewDate(2024, time.July, 29); now = now.Add(time.Minute) {
				st := ComputeStatus(s, now)
				r, ok := rank[st]
				require.True(t, ok, "unexpected status %s at %s", st, now)
				require.GreaterOrEqual(t, r, prev, "went backwards at %s", now)
				prev = r
				seen[st] = true
			}
			assert.True(t, seen[StatusLive])
		})
	}
}

func TestComputeStatus_MultiDayOneOff(t *testing.T) {
	s := Schedule{
		StartDate: date(t, "2024-07-29"),
		EndDate:   date(t, "2024-07-31"),
		StartTime: clock(t, "09:00"),
		EndTime:   clock(t, "10:00"),
	}

	assert.Equal(t, StatusNotScheduledToday, ComputeStatus(s, at(28, 9, 30)))
	assert.Equal(t, StatusLive, ComputeStatus(s, at(29, 9, 30)))

	snap := Evaluate(s, at(29, 11, 0))
	assert.Equal(t, StatusPending, snap.Status)
	assert.Equal(t, 22*time.Hour, snap.Countdown)
	assert.Equal(t, at(30, 9, 0), snap.Start)
	assert.Equal(t, at(31, 10, 0), snap.Due)

	assert.Equal(t, StatusLive, ComputeStatus(s, at(31, 9, 59)))

	snap = Evaluate(s, at(31, 11, 0))
	assert.Equal(t, StatusOverdue, snap.Status)
	assert.Equal(t, time.Hour, snap.Countdown)

	assert.Equal(t, StatusNotScheduledToday, ComputeStatus(s, time.Date(2024, time.August, 1, 9, 30, 0, 0, zone)))
}

func TestComputeStatus_MultiDayOneOffCompletion(t *testing.T) {
	s := Schedule{
		StartDate: date(t, "2024-07-29"),
		EndDate:   date(t, "2024-07-31"),
		EndTime:   clock(t, "18:00"),
	}
	anchor := NewDate(2024, time.July, 31)

	s.Completions = map[Date]time.Time{anchor: at(30, 12, 0)}
	assert.Equal(t, StatusCompletedOnTime, ComputeStatus(s, at(29, 8, 0)))
	assert.Equal(t, StatusCompletedOnTime, ComputeStatus(s, at(31, 20, 0)))

	s.Completions = map[Date]time.Time{anchor: at(31, 18, 30)}
	assert.Equal(t, StatusCompletedLate, ComputeStatus(s, at(31, 19, 0)))
}

func TestComputeStatus_EndDateWithoutStartDate(t *testing.T) {
	s := Schedule{EndDate: date(t, "2024-07-30")}

	assert.Equal(t, StatusNotScheduledToday, ComputeStatus(s, at(29, 12, 0)))
	assert.Equal(t, StatusLive, ComputeStatus(s, at(30, 12, 0)))
	assert.Equal(t, StatusNotScheduledToday, ComputeStatus(s, at(31, 12, 0)))
}

func TestComputeStatus_RecurringWithinRange(t *testing.T) {
	s := Schedule{
		StartDate:     date(t, "2024-07-30"),
		EndDate:       date(t, "2024-08-10"),
		RecurringDays: []time.Weekday{time.Monday},
	}

	assert.Equal(t, StatusNotScheduledToday, ComputeStatus(s, at(29, 12, 0)), "monday before range")
	assert.Equal(t, StatusLive, ComputeStatus(s, time.Date(2024, time.August, 5, 12, 0, 0, 0, zone)))
}

func TestComputeStatus_UsesViewerLocation(t *testing.T) {
	s := Schedule{StartDate: date(t, "2024-07-29")}

	// 23:30 on the 29th in UTC+2 is still the 29th for the viewer,
	// even though it is 21:30 UTC.
	assert.Equal(t, StatusLive, ComputeStatus(s, at(29, 23, 30)))
	// 01:00 on the 30th in UTC+2 is the 29th in UTC, but the viewer sees the 30th.
	assert.Equal(t, StatusNotScheduledToday, ComputeStatus(s, at(30, 1, 0)))
}

func TestComputeDayStatus_Recurring(t *testing.T) {
	s := Schedule{
		RecurringDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Completions: map[Date]time.Time{
			NewDate(2024, time.July, 22): at(22, 10, 0),
		},
	}
	now := at(29, 12, 0)

	tests := []struct {
		day  Date
		want DayStatus
	}{
		{NewDate(2024, time.July, 22), DayCompleted},
		{NewDate(2024, time.July, 24), DayMissed},
		{NewDate(2024, time.July, 23), DayNone},
		{NewDate(2024, time.July, 29), DayToday},
		{NewDate(2024, time.July, 31), DayScheduled},
		{NewDate(2024, time.July, 30), DayNone},
	}
	for _, tt := range tests {
		t.Run(tt.day.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDayStatus(s, tt.day, now))
		})
	}
}

func TestComputeDayStatus_OneOffRange(t *testing.T) {
	s := Schedule{
		StartDate: date(t, "2024-07-26"),
		EndDate:   date(t, "2024-08-02"),
	}
	now := at(29, 12, 0)

	assert.Equal(t, DayNone, ComputeDayStatus(s, NewDate(2024, time.July, 25), now))
	assert.Equal(t, DayScheduled, ComputeDayStatus(s, NewDate(2024, time.July, 27), now), "not missed before the due day passes")
	assert.Equal(t, DayToday, ComputeDayStatus(s, NewDate(2024, time.July, 29), now))
	assert.Equal(t, DayScheduled, ComputeDayStatus(s, NewDate(2024, time.August, 2), now))

	later := time.Date(2024, time.August, 5, 12, 0, 0, 0, zone)
	assert.Equal(t, DayMissed, ComputeDayStatus(s, NewDate(2024, time.July, 27), later))

	s.Completions = map[Date]time.Time{NewDate(2024, time.August, 2): at(30, 8, 0)}
	assert.Equal(t, DayCompleted, ComputeDayStatus(s, NewDate(2024, time.July, 27), later))
	assert.Equal(t, DayNone, ComputeDayStatus(s, NewDate(2024, time.August, 3), later))
}

func TestOccurrenceKey(t *testing.T) {
	day := NewDate(2024, time.July, 29)

	assert.Equal(t, day, Schedule{}.OccurrenceKey(day))
	assert.Equal(t, day, Schedule{StartDate: date(t, "2024-07-01"), RecurringDays: []time.Weekday{time.Monday}}.OccurrenceKey(day))
	assert.Equal(t, NewDate(2024, time.August, 2), Schedule{StartDate: date(t, "2024-07-26"), EndDate: date(t, "2024-08-02")}.OccurrenceKey(day))
}

func TestSnapshotLabel(t *testing.T) {
	s := nineToTen(t)

	assert.Equal(t, "Starts in: 01:00:00", Evaluate(s, at(29, 8, 0)).Label())
	assert.Equal(t, "Time left: 00:30:00", Evaluate(s, at(29, 9, 30)).Label())
	assert.Equal(t, "Overdue by: 01:00:00", Evaluate(s, at(29, 11, 0)).Label())
}
