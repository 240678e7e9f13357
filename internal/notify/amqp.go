package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"kos-manager/internal/service"
)

// ReminderMessage is the JSON body published for each reminder.
type ReminderMessage struct {
	service.Reminder
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// EncodeReminder builds the message body for r.
func EncodeReminder(r service.Reminder, now time.Time) ([]byte, error) {
	return json.Marshal(ReminderMessage{Reminder: r, Text: r.Message(), SentAt: now.UTC()})
}

// AMQPNotifier publishes reminders to a durable direct exchange so a
// separate mailer/SMS worker can deliver them.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	log      *zap.Logger

	mu sync.Mutex // serialises publishes on the channel
}

func NewAMQPNotifier(url, exchange, queue string, log *zap.Logger) (*AMQPNotifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	n := &AMQPNotifier{conn: conn, channel: ch, exchange: exchange, queue: queue, log: log}
	if err := n.setup(); err != nil {
		n.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return n, nil
}

func (n *AMQPNotifier) setup() error {
	if err := n.channel.ExchangeDeclare(
		n.exchange, // name
		"direct",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := n.channel.QueueDeclare(
		n.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key = queue name
	if err := n.channel.QueueBind(n.queue, n.queue, n.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, r service.Reminder) error {
	now := time.Now()
	body, err := EncodeReminder(r, now)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n.mu.Lock()
	err = n.channel.PublishWithContext(ctx,
		n.exchange,
		n.queue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			MessageId:    fmt.Sprintf("payment-%d-%d", r.PaymentID, now.Unix()),
			Body:         body,
		},
	)
	n.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish reminder: %w", err)
	}

	n.log.Info("reminder published",
		zap.Uint("payment_id", r.PaymentID),
		zap.String("exchange", n.exchange),
		zap.String("queue", n.queue))
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
