// Package report builds the read models served to clients from flows and
// the schedule engine.
package report

import (
	"slices"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/schedule"
	"github.com/google/uuid"
)

type TaskStatus struct {
	TaskID           uuid.UUID       `json:"taskId"`
	Title            string          `json:"title"`
	Status           schedule.Status `json:"status"`
	Label            string          `json:"label"`
	Countdown        string          `json:"countdown,omitempty"`
	CountdownSeconds int64           `json:"countdownSeconds,omitempty"`
	Start            *time.Time      `json:"start,omitempty"`
	End              *time.Time      `json:"end,omitempty"`
	Due              *time.Time      `json:"due,omitempty"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

type FlowStatus struct {
	FlowID    uuid.UUID    `json:"flowId"`
	Title     string       `json:"title"`
	At        time.Time    `json:"at"`
	Completed int          `json:"completed"`
	Scheduled int          `json:"scheduled"`
	Tasks     []TaskStatus `json:"tasks"`
}

func StatusOf(t *model.Task, now time.Time) TaskStatus {
	snap := schedule.Evaluate(t.Schedule(), now)
	ts := TaskStatus{
		TaskID: t.ID,
		Title:  t.Title,
		Status: snap.Status,
		Label:  snap.Label(),
	}
	if snap.Status == schedule.StatusNotScheduledToday {
		return ts
	}

	ts.Start, ts.End, ts.Due = timePtr(snap.Start), timePtr(snap.End), timePtr(snap.Due)
	if snap.Status.Completed() {
		ts.CompletedAt = timePtr(snap.CompletedAt)
	}
	if snap.HasCountdown {
		ts.Countdown = schedule.FormatCountdown(snap.Countdown)
		ts.CountdownSeconds = int64(snap.Countdown / time.Second)
	}
	return ts
}

// Statuses evaluates every task of flow at now, keeping the flow's order.
func Statuses(flow *model.Flow, now time.Time) FlowStatus {
	fs := FlowStatus{
		FlowID: flow.ID,
		Title:  flow.Title,
		At:     now,
		Tasks:  make([]TaskStatus, 0, len(flow.Tasks)),
	}
	for i := range flow.Tasks {
		ts := StatusOf(&flow.Tasks[i], now)
		if ts.Status != schedule.StatusNotScheduledToday {
			fs.Scheduled++
		}
		if ts.Status.Completed() {
			fs.Completed++
		}
		fs.Tasks = append(fs.Tasks, ts)
	}
	return fs
}

type AgendaItem struct {
	FlowID    uuid.UUID `json:"flowId"`
	FlowTitle string    `json:"flowTitle"`
	TaskStatus
}

// Agenda lists the timed tasks scheduled on now's day across flows, ordered
// by start time. Tasks without an explicit start time are left out.
func Agenda(flows []*model.Flow, now time.Time) []AgendaItem {
	today := schedule.DateOf(now)
	items := []AgendaItem{}
	for _, f := range flows {
		for i := range f.Tasks {
			t := &f.Tasks[i]
			if t.StartTime == nil || !t.Schedule().IsScheduledOn(today) {
				continue
			}
			items = append(items, AgendaItem{
				FlowID:     f.ID,
				FlowTitle:  f.Title,
				TaskStatus: StatusOf(t, now),
			})
		}
	}

	slices.SortStableFunc(items, func(a, b AgendaItem) int {
		return a.Start.Compare(*b.Start)
	})
	return items
}

func timePtr(t time.Time) *time.Time {
	return &t
}
