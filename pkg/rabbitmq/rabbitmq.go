package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"katalog/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	amqp "github.com/streadway/amqp"
)

// EventProductSaved is the type of the event published after a product is stored.
const EventProductSaved = "product.saved"

// ErrUnprocessable marks a message that can never be handled, however often it is
// redelivered. Handlers wrap it so the consumer drops the message instead of
// requeueing it.
var ErrUnprocessable = errors.New("unprocessable message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     zerolog.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// ProductSavedEvent is the JSON body of a product.saved message.
type ProductSavedEvent struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	SavedAt   time.Time       `json:"saved_at"`
}

// NewProductSavedEvent describes a stored product.
func NewProductSavedEvent(product *models.Product, savedAt time.Time) ProductSavedEvent {
	event := ProductSavedEvent{
		EventID:   uuid.New().String(),
		Type:      EventProductSaved,
		ProductID: product.ID,
		Status:    string(product.Status),
		SavedAt:   savedAt.UTC(),
	}
	if product.Title != nil {
		event.Title = *product.Title
	}
	if product.Price != nil {
		event.Price = *product.Price
	}
	return event
}

// DecodeProductSavedEvent parses a message body produced by PublishProductSaved.
func DecodeProductSavedEvent(body []byte) (ProductSavedEvent, error) {
	var event ProductSavedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return ProductSavedEvent{}, fmt.Errorf("%w: failed to decode product event: %w", ErrUnprocessable, err)
	}
	if event.Type != EventProductSaved {
		return ProductSavedEvent{}, fmt.Errorf("%w: unexpected event type %q", ErrUnprocessable, event.Type)
	}
	return event, nil
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, opens a channel and declares the durable event queue.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", cfg.Queue, err)
	}

	log.Info().Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishProductSaved publishes a product.saved event for product to the event queue.
func (c *Client) PublishProductSaved(product *models.Product) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	event := NewProductSavedEvent(product, time.Now())
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.SavedAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug().Str("event_id", event.EventID).Int64("product_id", event.ProductID).Msg("product event published")
	return nil
}

// ConsumeProductEvents delivers every message on the event queue to handler in a
// background goroutine. A nil handler error acks the message, an error wrapping
// ErrUnprocessable rejects it without requeue, and any other error nacks it for
// redelivery.
func (c *Client) ConsumeProductEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel, c.queue)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info().Str("queue", queue.Name).Msg("waiting for product events")

	go func() {
		for msg := range msgs {
			err := handler(msg)
			ack, requeue := settle(err)
			if ack {
				if ackErr := msg.Ack(false); ackErr != nil {
					c.log.Error().Err(ackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to ack message")
				}
				continue
			}
			c.log.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Bool("requeue", requeue).Msg("failed to process message")
			if nackErr := msg.Nack(false, requeue); nackErr != nil {
				c.log.Error().Err(nackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to nack message")
			}
		}
	}()

	return nil
}

// settle decides how a delivery is answered once its handler returns.
func settle(err error) (ack, requeue bool) {
	switch {
	case err == nil:
		return true, false
	case errors.Is(err, ErrUnprocessable):
		return false, false
	default:
		return false, true
	}
}
