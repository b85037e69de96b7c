package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const (
	EventFlowCreated   = "flow.created"
	EventFlowUpdated   = "flow.updated"
	EventFlowDeleted   = "flow.deleted"
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventTaskDeleted   = "task.deleted"
	EventTaskToggled   = "task.toggled"
	EventTaskReordered = "task.reordered"
	EventTaskReminder  = "task.reminder"
)

type Event struct {
	Type      string    `json:"type"`
	FlowID    string    `json:"flowId,omitempty"`
	TaskID    string    `json:"taskId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Key partitions events of one flow together.
func (e Event) Key() string {
	if e.FlowID != "" {
		return e.FlowID
	}
	return e.TaskID
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	start := time.Now()
	payload, err := json.Marshal(ev)
	if err == nil {
		err = p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(ev.Key()),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(ev.Type)},
			},
		})
	}
	logger.LogEventPublish(ctx, p.topic, ev.Type, ev.Key(), time.Since(start), err)
	return err
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only records events in the log. It is used when no broker
// is configured.
type LogPublisher struct {
	topic string
}

func NewLogPublisher(topic string) *LogPublisher {
	return &LogPublisher{topic: topic}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	logger.LogEventPublish(ctx, p.topic, ev.Type, ev.Key(), 0, nil)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
