package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig locates the brokers and the destination topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaSink satisfies the same capability interface against Kafka. The
// routing key travels as the message key; all-replica acks stand in for
// AMQP publisher confirms, so a successful write is a confirmed delivery.
type KafkaSink struct {
	cfg    KafkaConfig
	log    *slog.Logger
	writer *kafka.Writer
}

// NewKafkaSink builds an unconnected sink; Connect verifies reachability
// and creates the writer.
func NewKafkaSink(cfg KafkaConfig, log *slog.Logger) *KafkaSink {
	return &KafkaSink{cfg: cfg, log: log}
}

// Connect dials the first broker to verify reachability, then builds the
// writer. The writer itself connects lazily per batch.
func (s *KafkaSink) Connect(ctx context.Context) error {
	if len(s.cfg.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", s.cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	conn.Close()

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      s.cfg.Brokers,
		Topic:        s.cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  1, // retry policy belongs to the publisher
		RequiredAcks: -1,
	})
	w.AllowAutoTopicCreation = true
	s.writer = w
	return nil
}

// DeclareDestination is satisfied by auto topic creation on first write;
// nothing to declare up front.
func (s *KafkaSink) DeclareDestination(ctx context.Context) error {
	if s.writer == nil {
		return fmt.Errorf("declare topic: writer not connected")
	}
	return nil
}

// Publish writes one message keyed by the routing key and waits for
// all-replica acknowledgment.
func (s *KafkaSink) Publish(ctx context.Context, env Envelope) error {
	if s.writer == nil {
		return fmt.Errorf("publish: writer not connected")
	}

	msg := kafka.Message{
		Key:   []byte(env.RoutingKey),
		Value: env.Body,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "message_id", Value: []byte(env.MessageID)},
			{Key: "content_type", Value: []byte("application/json")},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %q: %w", s.cfg.Topic, err)
	}
	return nil
}

// Alive reports whether the sink holds a writer. Broker loss shows up as a
// write error, which the publisher answers by closing and reconnecting.
func (s *KafkaSink) Alive() bool {
	return s.writer != nil
}

// Close releases the writer. Safe to call repeatedly.
func (s *KafkaSink) Close() error {
	if s.writer == nil {
		return nil
	}
	err := s.writer.Close()
	s.writer = nil
	return err
}
