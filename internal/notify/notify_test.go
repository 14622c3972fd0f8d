package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/config"
	"dataroom/internal/logger"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Notify(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(nil, ch, "dataroom.notifications", logger.Discard())
	p.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := p.Notify(context.Background(), Notification{
		Recipients: []string{"owner-1"},
		Template:   TemplateAccessRequested,
		Data:       map[string]any{"room_id": "room-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "dataroom.notifications", ch.exchange)
	assert.Equal(t, TemplateAccessRequested, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var got Notification
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, []string{"owner-1"}, got.Recipients)
	assert.Equal(t, "room-1", got.Data["room_id"])
	assert.Equal(t, 2025, got.CreatedAt.Year())

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_NotifyError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newPublisher(nil, ch, "x", logger.Discard())

	err := p.Notify(context.Background(), Notification{Template: TemplateShareLinkIssued})

	assert.ErrorContains(t, err, "channel closed")
}

func TestNew_WithoutBrokerFallsBackToLog(t *testing.T) {
	n, closeFn, err := New(config.RabbitMQConfig{}, logger.Discard())

	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)
	assert.NoError(t, n.Notify(context.Background(), Notification{Template: TemplateAccessReviewed}))
	assert.NoError(t, closeFn())
}
