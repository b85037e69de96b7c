package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, topic: "taskflow.events"}

	err := p.Publish(context.Background(), Event{
		Type:   EventTaskToggled,
		FlowID: "flow-1",
		TaskID: "task-1",
		Data:   map[string]bool{"completed": true},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "flow-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventTaskToggled, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, EventTaskToggled, decoded.Type)
	assert.Equal(t, "task-1", decoded.TaskID)
	assert.False(t, decoded.Timestamp.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_ReturnsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{writer: &recordingWriter{err: boom}, topic: "t"}

	assert.ErrorIs(t, p.Publish(context.Background(), Event{Type: EventFlowCreated}), boom)
}

func TestEventKeyFallsBackToTask(t *testing.T) {
	assert.Equal(t, "task-9", Event{TaskID: "task-9"}.Key())
	assert.NoError(t, NewLogPublisher("t").Publish(context.Background(), Event{Type: EventTaskReminder}))
}
