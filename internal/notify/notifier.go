// Package notify sends reminders shortly before a task's explicit start or
// end time.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/queue"
	"github.com/Raisondetr3/taskflow-service/internal/schedule"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultWindow   = 10 * time.Minute
)

type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

type Reminder struct {
	FlowID    string        `json:"flowId"`
	FlowTitle string        `json:"flowTitle"`
	TaskID    string        `json:"taskId"`
	Title     string        `json:"title"`
	Edge      Edge          `json:"edge"`
	Day       schedule.Date `json:"day"`
	At        time.Time     `json:"at"`
}

// Message is the text a user sees.
func (r Reminder) Message() string {
	if r.Edge == EdgeStart {
		return "Starting soon: " + r.Title
	}
	return "Ending soon: " + r.Title
}

func (r Reminder) key() string {
	return r.TaskID + "|" + string(r.Edge) + "|" + r.Day.String()
}

type Sink interface {
	Notify(ctx context.Context, r Reminder) error
}

type FlowLister interface {
	List(ctx context.Context) ([]*model.Flow, error)
}

// Due returns the reminders whose edge lies in (now, now+window]. Only
// explicitly set times produce reminders, and occurrences already
// completed are skipped. A window crossing midnight also covers the next
// day's edges.
func Due(flows []*model.Flow, now time.Time, window time.Duration) []Reminder {
	days := []schedule.Date{schedule.DateOf(now)}
	if last := schedule.DateOf(now.Add(window)); last != days[0] {
		days = append(days, days[0].AddDays(1))
	}
	var out []Reminder

	for _, f := range flows {
		for i := range f.Tasks {
			t := &f.Tasks[i]
			if t.StartTime == nil && t.EndTime == nil {
				continue
			}
			s := t.Schedule()

			for _, day := range days {
				if !s.IsScheduledOn(day) || schedule.ComputeDayStatus(s, day, now) == schedule.DayCompleted {
					continue
				}

				edges := []struct {
					edge  Edge
					clock *schedule.Clock
				}{{EdgeStart, t.StartTime}, {EdgeEnd, t.EndTime}}

				for _, e := range edges {
					if e.clock == nil {
						continue
					}
					at := day.At(e.clock.Offset(), now.Location())
					if !at.After(now) || at.Sub(now) > window {
						continue
					}
					out = append(out, Reminder{
						FlowID:    f.ID.String(),
						FlowTitle: f.Title,
						TaskID:    t.ID.String(),
						Title:     t.Title,
						Edge:      e.edge,
						Day:       day,
						At:        at,
					})
				}
			}
		}
	}
	return out
}

type Notifier struct {
	flows    FlowLister
	sink     Sink
	interval time.Duration
	window   time.Duration
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]schedule.Date
}

func NewNotifier(flows FlowLister, sink Sink, interval, window time.Duration) *Notifier {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Notifier{
		flows:    flows,
		sink:     sink,
		interval: interval,
		window:   window,
		now:      time.Now,
		sent:     map[string]schedule.Date{},
	}
}

// Run polls until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Notifier started",
		slog.Duration("interval", n.interval),
		slog.Duration("window", n.window))

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		if _, err := n.Check(ctx); err != nil && ctx.Err() == nil {
			logger.LogError(ctx, err, "notifier_check")
		}

		select {
		case <-ctx.Done():
			slog.Info("Notifier stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Check runs one polling pass and returns how many reminders were sent.
// A reminder that fails to send is retried on the next pass. The sink is
// called without holding the lock; claimed reminders are released again
// on failure.
func (n *Notifier) Check(ctx context.Context) (int, error) {
	flows, err := n.flows.List(ctx)
	if err != nil {
		return 0, err
	}

	now := n.now()
	n.mu.Lock()
	n.prune(schedule.DateOf(now))
	var pending []Reminder
	for _, r := range Due(flows, now, n.window) {
		if _, done := n.sent[r.key()]; done {
			continue
		}
		n.sent[r.key()] = r.Day
		pending = append(pending, r)
	}
	n.mu.Unlock()

	sent := 0
	for _, r := range pending {
		err := n.sink.Notify(ctx, r)
		logger.LogNotification(ctx, r.TaskID, r.Title, string(r.Edge), r.At, err)
		if err != nil {
			n.mu.Lock()
			delete(n.sent, r.key())
			n.mu.Unlock()
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *Notifier) prune(today schedule.Date) {
	for k, day := range n.sent {
		if day.Before(today) {
			delete(n.sent, k)
		}
	}
}

// QueueSink publishes reminders as task.reminder events.
type QueueSink struct {
	publisher queue.Publisher
}

func NewQueueSink(p queue.Publisher) *QueueSink {
	return &QueueSink{publisher: p}
}

func (s *QueueSink) Notify(ctx context.Context, r Reminder) error {
	return s.publisher.Publish(ctx, queue.Event{
		Type:   queue.EventTaskReminder,
		FlowID: r.FlowID,
		TaskID: r.TaskID,
		Data: map[string]any{
			"message": r.Message(),
			"edge":    r.Edge,
			"at":      r.At,
		},
	})
}

// LogSink writes reminders to the service log only.
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, r Reminder) error {
	slog.InfoContext(ctx, r.Message(),
		slog.String("task_id", r.TaskID),
		slog.String("flow", r.FlowTitle),
		slog.Time("at", r.At))
	return nil
}
