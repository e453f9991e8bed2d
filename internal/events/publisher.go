// Package events fans created notifications out to a Kafka topic so push and
// email consumers can deliver them.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrPublisherUnavailable is returned while the breaker is open.
var ErrPublisherUnavailable = errors.New("notification publisher unavailable")

// NotificationEvent is the message value written to the topic.
type NotificationEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category,omitempty"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[any]
	timeout time.Duration
	log     *zap.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}
	return newKafkaPublisher(w, cfg, log)
}

func newKafkaPublisher(w messageWriter, cfg config.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	log = log.Named("events")
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "kafka-notifications",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &KafkaPublisher{writer: w, breaker: breaker, timeout: cfg.WriteTimeout, log: log}
}

// Publish writes n keyed by user id so a user's notifications stay ordered
// within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, n *notification.Record) error {
	value, err := json.Marshal(NotificationEvent{
		ID:          n.ID.String(),
		UserID:      n.UserID.String(),
		Category:    string(n.Category),
		SubCategory: n.SubCategory,
		Message:     n.Message,
		Timestamp:   n.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("encoding notification event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.UserID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "category", Value: []byte(n.Category)},
		},
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrPublisherUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("writing notification event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every notification. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *notification.Record) error { return nil }

func (NopPublisher) Close() error { return nil }
