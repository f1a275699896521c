package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ayuta/internal/events"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DefaultQueue is the queue cross-page signals are published to.
const DefaultQueue = "ayuta_signals"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, sets up a channel and declares the signal queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

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

	logger.Info("RabbitMQ client connected", zap.String("queue", cfg.Queue))

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		logger:  logger,
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

// Close closes the RabbitMQ connection and channel.
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

// PublishSignal publishes a signal message to the signal queue as JSON.
func (c *Client) PublishSignal(msg events.SignalMessage) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal signal to JSON: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         string(msg.Signal),
		})
	if err != nil {
		return fmt.Errorf("failed to publish signal: %w", err)
	}

	c.logger.Debug("signal published", zap.String("signal", string(msg.Signal)), zap.String("client_id", msg.ClientID))
	return nil
}

// ConsumeSignals starts a goroutine that hands every delivery on the signal queue
// to handler. A nil handler result acks the delivery; an error nacks it without requeue.
func (c *Client) ConsumeSignals(handler func(msg events.SignalMessage) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
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

	go func() {
		for d := range msgs {
			if err := handleDelivery(d, handler); err != nil {
				c.logger.Warn("failed to process signal", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
				if nackErr := d.Nack(false, false); nackErr != nil {
					c.logger.Warn("failed to nack signal", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(nackErr))
				}
				continue
			}
			if ackErr := d.Ack(false); ackErr != nil {
				c.logger.Warn("failed to ack signal", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(ackErr))
			}
		}
	}()

	return nil
}

func handleDelivery(d amqp.Delivery, handler func(events.SignalMessage) error) error {
	msg, err := DecodeSignal(d.Body)
	if err != nil {
		return err
	}
	return handler(msg)
}

// DecodeSignal parses a delivery body into a SignalMessage.
func DecodeSignal(body []byte) (events.SignalMessage, error) {
	var msg events.SignalMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("failed to decode signal: %w", err)
	}
	if msg.Signal != events.StateUpdated && msg.Signal != events.AuthUpdated {
		return msg, fmt.Errorf("unknown signal %q", msg.Signal)
	}
	return msg, nil
}
