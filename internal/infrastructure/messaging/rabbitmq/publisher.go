package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
	pkgctx "github.com/simulado-cea/simulado-service/internal/pkg/context"
)

const (
	DefaultExchange = "simulado.events"

	appID       = "simulado-service"
	confirmWait = 2 * time.Second
)

// Routing keys.
const (
	KeyUserStatusChanged    = "simulado.user.status.changed"
	KeyUserDeleted          = "simulado.user.deleted"
	KeyPaymentStatusChanged = "simulado.payment.status.changed"
)

var errConfirmClosed = errors.New("confirm channel closed")

// Publisher sends domain events to a durable topic exchange and waits for
// the broker confirm of each one. Events are not mandatory: nothing bound
// to a key means the broker drops it and still acks.
type Publisher struct {
	url      string
	exchange string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}
	if err := p.open(); err != nil {
		return nil, domain.ErrRabbitUnavailable(err)
	}
	return p, nil
}

func (p *Publisher) PublishUserStatusChanged(ctx context.Context, evt domain.UserStatusChangedEvent) error {
	return p.publish(ctx, KeyUserStatusChanged, evt)
}

func (p *Publisher) PublishUserDeleted(ctx context.Context, evt domain.UserDeletedEvent) error {
	return p.publish(ctx, KeyUserDeleted, evt)
}

func (p *Publisher) PublishPaymentStatusChanged(ctx context.Context, evt domain.PaymentStatusChangedEvent) error {
	return p.publish(ctx, KeyPaymentStatusChanged, evt)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drop()
	return nil
}

// open dials, declares the exchange and switches the channel to confirm mode.
func (p *Publisher) open() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := setupChannel(conn, p.exchange)
	if err != nil {
		_ = conn.Close()
		return err
	}
	p.conn, p.ch = conn, ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return nil
}

func setupChannel(conn *amqp.Connection, exchange string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	const durable, autoDelete, internal, noWait = true, false, false, false
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, durable, autoDelete, internal, noWait, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("exchange declare %s: %w", exchange, err)
	}
	if err := ch.Confirm(noWait); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("confirm mode: %w", err)
	}
	return ch, nil
}

func (p *Publisher) healthy() bool {
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil
}

func (p *Publisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch, p.confirms = nil, nil, nil
}

func (p *Publisher) publish(ctx context.Context, key string, payload any) error {
	msg, err := newMessage(ctx, key, payload)
	if err != nil {
		return domain.ErrInternal(err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, confirmWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.healthy() {
		p.drop()
		if err := p.open(); err != nil {
			return domain.ErrRabbitUnavailable(err)
		}
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		p.drop()
		return domain.ErrRabbitUnavailable(fmt.Errorf("publish %s: %w", key, err))
	}
	if err := p.awaitConfirm(ctx); err != nil {
		return domain.ErrRabbitUnavailable(fmt.Errorf("publish %s: %w", key, err))
	}

	logger.WithCtx(ctx).Debug().
		Str("routing_key", key).
		Str("message_id", msg.MessageId).
		Msg("event published")
	return nil
}

// awaitConfirm must run with p.mu held.
func (p *Publisher) awaitConfirm(ctx context.Context) error {
	select {
	case conf, ok := <-p.confirms:
		if !ok {
			p.drop()
			return errConfirmClosed
		}
		if !conf.Ack {
			return fmt.Errorf("broker nack tag=%d", conf.DeliveryTag)
		}
		return nil
	case <-ctx.Done():
		// a late confirm would be attributed to the next publish
		p.drop()
		return fmt.Errorf("confirm wait: %w", ctx.Err())
	}
}

func newMessage(ctx context.Context, key string, payload any) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s: %w", key, err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: pkgctx.GetRequestID(ctx),
		AppId:         appID,
		Type:          key,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	}, nil
}
