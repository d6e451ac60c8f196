package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"skillbridge/internal/config"

	"github.com/streadway/amqp"
)

// Client consumes analysis requests and publishes analysis updates.
type Client struct {
	conn    *amqp.Connection
	consume *amqp.Channel
	publish *amqp.Channel
	pubMu   sync.Mutex
	cfg     config.QueueConfig
	logger  *log.Logger
}

func Dial(cfg config.QueueConfig, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("RABBITMQ_URL not configured")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	c := &Client{conn: conn, cfg: cfg, logger: logger}

	if c.consume, err = conn.Channel(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open consume channel: %w", err)
	}
	if c.publish, err = conn.Channel(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open publish channel: %w", err)
	}

	if _, err := c.consume.QueueDeclare(
		cfg.RequestQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.RequestQueue, err)
	}
	if err := c.publish.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	prefetch := cfg.Workers
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := c.consume.Qos(prefetch, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return c, nil
}

// Consume streams requests until ctx ends or the broker closes the channel.
// Messages must be acked or rejected by the caller.
func (c *Client) Consume(ctx context.Context) (<-chan Message, error) {
	deliveries, err := c.consume.Consume(
		c.cfg.RequestQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.cfg.RequestQueue, err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					c.logger.Printf("[Queue] delivery channel closed queue=%s", c.cfg.RequestQueue)
					return
				}
				select {
				case out <- delivery{d: d}:
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) PublishUpdate(ctx context.Context, update AnalysisUpdate) error {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return c.publishJSON(ctx, c.cfg.Exchange, RoutingKey(update.RequestID), body)
}

// PublishRequest enqueues a request on the default exchange.
func (c *Client) PublishRequest(ctx context.Context, req AnalysisRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return c.publishJSON(ctx, "", c.cfg.RequestQueue, body)
}

func (c *Client) publishJSON(ctx context.Context, exchange, key string, body []byte) error {
	if c == nil || c.publish == nil {
		return fmt.Errorf("nil queue client")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	return c.publish.Publish(
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

type delivery struct {
	d amqp.Delivery
}

func (m delivery) Body() []byte  { return m.d.Body }
func (m delivery) Ack() error    { return m.d.Ack(false) }
func (m delivery) Reject() error { return m.d.Reject(false) }
