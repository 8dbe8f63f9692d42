package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPConfig locates the broker and the exchange.
type AMQPConfig struct {
	URL      string
	Exchange string
	// DialTimeout bounds the TCP dial and protocol handshake of one
	// connect attempt, so a hung broker cannot stall the retry loop.
	DialTimeout time.Duration
}

// AMQPSink publishes to a durable topic exchange over AMQP 0-9-1 with the
// channel in confirm mode.
type AMQPSink struct {
	cfg AMQPConfig
	log *slog.Logger

	conn  *amqp.Connection
	ch    *amqp.Channel
	alive atomic.Bool
}

// NewAMQPSink builds an unconnected sink; Connect dials.
func NewAMQPSink(cfg AMQPConfig, log *slog.Logger) *AMQPSink {
	return &AMQPSink{cfg: cfg, log: log}
}

// Connect dials the broker, opens a channel and enables publisher confirms.
// Any partially established resources are released on failure.
func (s *AMQPSink) Connect(ctx context.Context) error {
	timeout := s.cfg.DialTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := amqp.DialConfig(s.cfg.URL, amqp.Config{
		Dial: amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("enable confirms: %w", err)
	}

	s.conn = conn
	s.ch = ch
	s.alive.Store(true)

	closes := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if reason, ok := <-closes; ok && reason != nil {
			s.log.Warn("broker closed connection", slog.Any("err", reason))
		}
		s.alive.Store(false)
	}()

	return nil
}

// DeclareDestination ensures the durable topic exchange exists. Declaring
// an existing exchange with the same parameters is a no-op on the broker.
func (s *AMQPSink) DeclareDestination(ctx context.Context) error {
	if s.ch == nil {
		return fmt.Errorf("declare exchange: channel not open")
	}
	if err := s.ch.ExchangeDeclare(
		s.cfg.Exchange, // name
		"topic",        // kind
		true,           // durable
		false,          // auto-delete
		false,          // internal
		false,          // no-wait
		nil,            // args
	); err != nil {
		return fmt.Errorf("declare exchange %q: %w", s.cfg.Exchange, err)
	}
	return nil
}

// Publish sends one persistent message and waits for the broker ack within
// the caller's context. A missing or negative ack is reported as
// ErrUnconfirmed.
func (s *AMQPSink) Publish(ctx context.Context, env Envelope) error {
	if s.ch == nil {
		return fmt.Errorf("publish: channel not open")
	}

	confirm, err := s.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		s.cfg.Exchange,
		env.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.MessageID,
			Timestamp:    env.Timestamp,
			Body:         env.Body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %q: %w", env.RoutingKey, err)
	}
	if confirm == nil {
		return nil
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnconfirmed, err)
	}
	if !acked {
		return fmt.Errorf("%w: broker nacked delivery", ErrUnconfirmed)
	}
	return nil
}

// Alive reports whether the peer still holds the connection open.
func (s *AMQPSink) Alive() bool {
	return s.alive.Load()
}

// Close releases channel then connection. Safe to call repeatedly.
func (s *AMQPSink) Close() error {
	s.alive.Store(false)

	var firstErr error
	if s.ch != nil {
		if err := s.ch.Close(); err != nil && err != amqp.ErrClosed {
			firstErr = err
		}
		s.ch = nil
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil && err != amqp.ErrClosed && firstErr == nil {
			firstErr = err
		}
		s.conn = nil
	}
	return firstErr
}
