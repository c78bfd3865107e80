package push

import (
	"context"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"
	"github.com/assitosante/notification-agent/internal/rabbitMQ"

	"github.com/google/uuid"
)

// RelayMessage is what out-of-band delivery consumers (SMS, mail) receive
// for every shown notification.
type RelayMessage struct {
	ID     string                   `json:"id"`
	Title  string                   `json:"title"`
	Body   string                   `json:"body"`
	Tag    string                   `json:"tag"`
	Data   *entity.NotificationData `json:"data,omitempty"`
	SentAt time.Time                `json:"sent_at"`
}

// AMQPSender relays notifications onto a message queue so delivery channels
// outside this agent can pick them up.
type AMQPSender struct {
	queue rabbitMQ.Queue
}

func NewAMQPSender(queue rabbitMQ.Queue) *AMQPSender {
	return &AMQPSender{queue: queue}
}

func (s *AMQPSender) Send(ctx context.Context, title string, opts Options) error {
	return s.queue.Publish(ctx, RelayMessage{
		ID:     uuid.New().String(),
		Title:  title,
		Body:   opts.Body,
		Tag:    opts.Tag,
		Data:   opts.Data,
		SentAt: time.Now(),
	})
}
