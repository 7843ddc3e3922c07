package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel to the broker. The returned closer releases the
// underlying connection.
type Dialer func(url string) (Channel, io.Closer, error)

func dialAMQP(url string) (Channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("channel open failed: %w", err)
	}
	return ch, conn, nil
}

// AMQPPublisher forwards events as persistent JSON messages to a durable
// RabbitMQ queue so other services can consume them.
type AMQPPublisher struct {
	url     string
	queue   string
	events  chan Event
	dial    Dialer
	timeout time.Duration
}

// NewAMQPPublisher returns a publisher for queue on the broker at url.
func NewAMQPPublisher(url, queue string, bufferSize int) *AMQPPublisher {
	return &AMQPPublisher{
		url:     url,
		queue:   queue,
		events:  make(chan Event, bufferSize),
		dial:    dialAMQP,
		timeout: 5 * time.Second,
	}
}

// Start publishes queued events until ctx is done.
func (p *AMQPPublisher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case ev := <-p.events:
				pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
				if err := p.Publish(pubCtx, ev); err != nil {
					log.Printf("rabbitmq: %s for user %d not published: %v", ev.Kind, ev.UserID, err)
				}
				cancel()
			case <-ctx.Done():
				log.Println("rabbitmq: publisher shutting down")
				return
			}
		}
	}()
}

// Publish sends one event synchronously. A connection is opened per call.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	ch, conn, err := p.dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare failed: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         string(ev.Kind),
			Body:         body,
		})
}

func (p *AMQPPublisher) enqueue(ev Event) {
	select {
	case p.events <- ev:
	default:
		log.Printf("rabbitmq: buffer full, dropping %s for user %d", ev.Kind, ev.UserID)
	}
}

func (p *AMQPPublisher) NotifyConfirmed(userID int64, roomName string, start, end time.Time) {
	p.enqueue(Event{Kind: KindConfirmed, UserID: userID, RoomName: roomName, Start: start, End: end})
}

func (p *AMQPPublisher) NotifyCancelled(userID int64, roomName string, start, end time.Time) {
	p.enqueue(Event{Kind: KindCancelled, UserID: userID, RoomName: roomName, Start: start, End: end})
}

func (p *AMQPPublisher) NotifyReminder(userID int64, roomName string, start time.Time) {
	p.enqueue(Event{Kind: KindReminder, UserID: userID, RoomName: roomName, Start: start})
}
