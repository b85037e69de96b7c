package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	loc = time.FixedZone("UTC+2", 2*60*60)
	// Monday
	now = time.Date(2024, 7, 29, 9, 0, 0, 0, loc)
)

func newTask(t *testing.T, in model.TaskInput) model.Task {
	t.Helper()
	require.NoError(t, in.Validate())
	return model.NewTask(in, now)
}

func at(day, hour int) time.Time {
	return time.Date(2024, 7, day, hour, 0, 0, 0, loc)
}

func sampleFlow(t *testing.T) *model.Flow {
	f := model.NewFlow("Morning", nil, now)
	f.AddTask(newTask(t, model.TaskInput{Title: "Standup", StartTime: "10:00", EndTime: "11:00"}), now)
	f.AddTask(newTask(t, model.TaskInput{Title: "Gym", RecurringDays: []int{2}}), now)

	water := newTask(t, model.TaskInput{Title: "Water plants"})
	_, err := water.ToggleCompletion(at(29, 8))
	require.NoError(t, err)
	f.AddTask(water, now)
	return f
}

func TestStatuses(t *testing.T) {
	fs := Statuses(sampleFlow(t), now)

	require.Len(t, fs.Tasks, 3)
	assert.Equal(t, 2, fs.Scheduled)
	assert.Equal(t, 1, fs.Completed)

	standup := fs.Tasks[0]
	assert.Equal(t, schedule.StatusPending, standup.Status)
	assert.Equal(t, "01:00:00", standup.Countdown)
	assert.Equal(t, int64(3600), standup.CountdownSeconds)
	assert.Equal(t, "Starts in: 01:00:00", standup.Label)
	require.NotNil(t, standup.Start)
	assert.True(t, standup.Start.Equal(at(29, 10)))

	gym := fs.Tasks[1]
	assert.Equal(t, schedule.StatusNotScheduledToday, gym.Status)
	assert.Nil(t, gym.Start)
	assert.Empty(t, gym.Countdown)

	water := fs.Tasks[2]
	assert.Equal(t, schedule.StatusCompletedOnTime, water.Status)
	require.NotNil(t, water.CompletedAt)
	assert.True(t, water.CompletedAt.Equal(at(29, 8)))
}

func TestAgenda_TimedTasksSortedByStart(t *testing.T) {
	work := model.NewFlow("Work", nil, now)
	work.AddTask(newTask(t, model.TaskInput{Title: "Review", StartTime: "14:00"}), now)
	work.AddTask(newTask(t, model.TaskInput{Title: "Inbox"}), now)

	home := model.NewFlow("Home", nil, now)
	home.AddTask(newTask(t, model.TaskInput{Title: "Run", StartTime: "07:00", EndTime: "08:00"}), now)
	home.AddTask(newTask(t, model.TaskInput{Title: "Piano", StartTime: "06:00", RecurringDays: []int{3}}), now)

	items := Agenda([]*model.Flow{work, home}, now)
	require.Len(t, items, 2)
	assert.Equal(t, "Run", items[0].Title)
	assert.Equal(t, "Home", items[0].FlowTitle)
	assert.Equal(t, schedule.StatusOverdue, items[0].Status)
	assert.Equal(t, "Review", items[1].Title)
	assert.Equal(t, schedule.StatusPending, items[1].Status)
}

func TestMonthCalendar(t *testing.T) {
	task := newTask(t, model.TaskInput{Title: "Weekly review", RecurringDays: []int{1}})
	_, err := task.ToggleCompletion(at(22, 10))
	require.NoError(t, err)

	cal := MonthCalendar(&task, 2024, time.July, now)
	require.Len(t, cal.Days, 31)
	assert.Equal(t, 1, cal.Completed)
	assert.Equal(t, 3, cal.Missed)

	byDay := map[int]schedule.DayStatus{}
	for _, d := range cal.Days {
		byDay[d.Date.Day] = d.Status
	}
	assert.Equal(t, schedule.DayMissed, byDay[1])
	assert.Equal(t, schedule.DayCompleted, byDay[22])
	assert.Equal(t, schedule.DayToday, byDay[29])
	assert.Equal(t, schedule.DayNone, byDay[30])
}

func TestAnalyze_CountsAndStreaks(t *testing.T) {
	task := newTask(t, model.TaskInput{Title: "Journal", RecurringDays: []int{0, 1, 2, 3, 4, 5, 6}})
	for _, day := range []int{22, 23, 25, 26, 27, 28} {
		_, err := task.ToggleCompletion(at(day, 12))
		require.NoError(t, err)
	}
	f := model.NewFlow("Habits", nil, now)
	f.AddTask(task, now)

	a, err := Analyze(f, schedule.NewDate(2024, time.July, 22), schedule.NewDate(2024, time.July, 29), now)
	require.NoError(t, err)

	require.Len(t, a.Days, 8)
	assert.Equal(t, 6, a.Completed)
	assert.Equal(t, 1, a.Missed)
	assert.InDelta(t, 6.0/7.0, a.CompletionRate, 1e-9)
	assert.Equal(t, 4, a.LongestStreak)
	assert.Equal(t, 4, a.CurrentStreak)
	assert.Equal(t, 1, a.Days[7].Scheduled)
}

func TestAnalyze_DateRangeTaskCountedOnce(t *testing.T) {
	essay := newTask(t, model.TaskInput{Title: "Essay", StartDate: "2024-07-22", EndDate: "2024-07-24"})
	_, err := essay.ToggleCompletion(at(23, 10))
	require.NoError(t, err)
	move := newTask(t, model.TaskInput{Title: "Move flat", StartDate: "2024-07-25", EndDate: "2024-07-27"})

	cal := MonthCalendar(&essay, 2024, time.July, now)
	assert.Equal(t, 1, cal.Completed)
	assert.Equal(t, schedule.DayCompleted, cal.Days[21].Status)
	assert.Equal(t, schedule.DayCompleted, cal.Days[23].Status)

	f := model.NewFlow("Chores", nil, now)
	f.AddTask(essay, now)
	f.AddTask(move, now)

	a, err := Analyze(f, schedule.NewDate(2024, time.July, 20), schedule.NewDate(2024, time.July, 29), now)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Completed)
	assert.Equal(t, 1, a.Missed)
	assert.Zero(t, a.Days[2].Completed)
	assert.Equal(t, 1, a.Days[4].Completed)
	assert.Zero(t, a.Days[5].Missed)
	assert.Equal(t, 1, a.Days[7].Missed)
	assert.Equal(t, 1, a.LongestStreak)
	assert.Zero(t, a.CurrentStreak)
}

func TestAnalyze_InvalidRange(t *testing.T) {
	f := model.NewFlow("x", nil, now)
	from := schedule.NewDate(2024, time.July, 29)

	_, err := Analyze(f, from, from.AddDays(-1), now)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Analyze(f, from, from.AddDays(MaxRangeDays), now)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleFlow(t), now))

	out := buf.String()
	assert.Contains(t, out, "Flow: Morning")
	assert.Contains(t, out, "Standup")
	assert.Contains(t, out, "Starts in: 01:00:00")
	assert.Contains(t, out, "10:00-11:00")
	assert.Contains(t, out, "Tue")
	assert.Contains(t, out, "Completed today: 1/2")

	buf.Reset()
	require.NoError(t, WriteText(&buf, model.NewFlow("Empty", nil, now), now))
	assert.Contains(t, buf.String(), "No tasks.")
}

func TestBuildICS_RecurringTimed(t *testing.T) {
	task := newTask(t, model.TaskInput{
		Title:         "Swim",
		StartDate:     "2024-07-30",
		EndDate:       "2024-08-31",
		StartTime:     "07:00",
		EndTime:       "07:30",
		RecurringDays: []int{3, 1},
	})

	ics, err := BuildICS(&task, loc, now)
	require.NoError(t, err)

	assert.Contains(t, ics, "BEGIN:VCALENDAR\r\n")
	assert.Contains(t, ics, "DTSTART:20240731T050000Z\r\n")
	assert.Contains(t, ics, "DTEND:20240731T053000Z\r\n")
	assert.Contains(t, ics, "RRULE:FREQ=WEEKLY;BYDAY=MO,WE;UNTIL=20240831T050000Z\r\n")
	assert.Contains(t, ics, "UID:task-"+task.ID.String()+"@taskflow")
}

func TestBuildICS_AllDayRange(t *testing.T) {
	task := newTask(t, model.TaskInput{
		Title:       "Read, write; repeat",
		Description: "line one\nline two",
		StartDate:   "2024-08-01",
		EndDate:     "2024-08-03",
	})

	ics, err := BuildICS(&task, loc, now)
	require.NoError(t, err)

	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240801\r\n")
	assert.Contains(t, ics, "DTEND;VALUE=DATE:20240804\r\n")
	assert.Contains(t, ics, `SUMMARY:Read\, write\; repeat`)
	assert.Contains(t, ics, `DESCRIPTION:line one\nline two`)
	assert.NotContains(t, ics, "RRULE")
}

func TestBuildICS_UndatedIsDaily(t *testing.T) {
	task := newTask(t, model.TaskInput{Title: "Vitamins"})

	ics, err := BuildICS(&task, loc, now)
	require.NoError(t, err)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240729\r\n")
	assert.Contains(t, ics, "RRULE:FREQ=DAILY\r\n")
}

func TestBuildICS_NoOccurrence(t *testing.T) {
	task := newTask(t, model.TaskInput{
		Title:         "Never",
		StartDate:     "2024-07-29",
		EndDate:       "2024-07-29",
		RecurringDays: []int{0},
	})

	_, err := BuildICS(&task, loc, now)
	assert.ErrorIs(t, err, ErrNoOccurrence)
}
