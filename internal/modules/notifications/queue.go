package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
)

const defaultExchange = "notifications.exchange"

// Publisher offloads dispatch from the webhook path onto a topic exchange.
// Publish failures are logged only: the payment is already durably recorded
// and a lost notification is recoverable from the report logs.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *slog.Logger
}

func NewPublisher(url, exchange string, logger *slog.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = defaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func (p *Publisher) publishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// CheckoutPaid and CheckoutFailed make Publisher a processor notifier.

func (p *Publisher) CheckoutPaid(ctx context.Context, co checkouts.CheckoutRequest, bks []bookings.Booking) {
	ids := make([]string, 0, len(bks))
	for _, b := range bks {
		ids = append(ids, b.ID)
	}
	ev := CheckoutPaid{CheckoutID: co.ID, BookingIDs: ids}
	if err := p.publishJSON(ctx, RKCheckoutPaid, ev); err != nil {
		p.logger.ErrorContext(ctx, "publish checkout.paid failed", "checkout_id", co.ID, "err", err)
	}
}

func (p *Publisher) CheckoutFailed(ctx context.Context, co checkouts.CheckoutRequest) {
	if err := p.publishJSON(ctx, RKCheckoutFailed, CheckoutFailed{CheckoutID: co.ID}); err != nil {
		p.logger.ErrorContext(ctx, "publish checkout.failed failed", "checkout_id", co.ID, "err", err)
	}
}

// Consumer drains the notification queue and performs the actual dispatch.
// Runs in the same binary as the web server, off the request path.
type Consumer struct {
	url      string
	exchange string
	queue    string

	ledger     *checkouts.Repo
	bookings   *bookings.Repo
	dispatcher *Dispatcher
	logger     *slog.Logger

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(url, exchange, queue string, ledger *checkouts.Repo, bks *bookings.Repo, d *Dispatcher, logger *slog.Logger) *Consumer {
	if exchange == "" {
		exchange = defaultExchange
	}
	if queue == "" {
		queue = "notifications.dispatch"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		url: url, exchange: exchange, queue: queue,
		ledger: ledger, bookings: bks, dispatcher: d, logger: logger,
	}
}

func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange failed: %w", err)
	}
	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue failed: %w", err)
	}
	for _, key := range []string{RKCheckoutPaid, RKCheckoutFailed} {
		if err := ch.QueueBind(q.Name, key, c.exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("bind queue key=%s failed: %w", key, err)
		}
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, "notifications", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.handleDelivery(ctx, d); err != nil {
				c.logger.ErrorContext(ctx, "notification delivery failed, requeueing",
					"routing_key", d.RoutingKey, "err", err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case RKCheckoutPaid:
		ev, err := decodeEvent[CheckoutPaid](d.Body)
		if err != nil {
			return err
		}
		co, err := c.ledger.FindByID(ctx, ev.CheckoutID)
		if err != nil {
			return err
		}
		bks, err := c.bookings.ListByOrderID(ctx, ev.CheckoutID)
		if err != nil {
			return err
		}
		// dispatch outcomes are final here; failed sends are in the report
		// logs, not requeued (retrying could double-email the successes)
		c.dispatcher.DispatchPaid(ctx, co, bks)
		return nil

	case RKCheckoutFailed:
		ev, err := decodeEvent[CheckoutFailed](d.Body)
		if err != nil {
			return err
		}
		co, err := c.ledger.FindByID(ctx, ev.CheckoutID)
		if err != nil {
			if errors.Is(err, checkouts.ErrNotFound) {
				c.logger.WarnContext(ctx, "checkout vanished before dispatch", "checkout_id", ev.CheckoutID)
				return nil
			}
			return err
		}
		c.dispatcher.DispatchFailed(ctx, co)
		return nil

	default:
		c.logger.WarnContext(ctx, "unknown routing key, dropping", "routing_key", d.RoutingKey)
		return nil
	}
}
