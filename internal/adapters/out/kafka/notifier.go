// Package kafka publishes order notifications for the email and ticketing
// collaborator.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"buyback/internal/core/ports"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var _ ports.Notifier = &Notifier{}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Notifier writes each notification as one JSON message keyed by order id,
// so all messages of an order land on the same partition in order.
type Notifier struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

func NewNotifier(brokers []string, topic string, logger *zap.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		WriteTimeout: 10 * time.Second,
	}
	return NewNotifierWithWriter(w, topic, logger)
}

func NewNotifierWithWriter(w messageWriter, topic string, logger *zap.Logger) *Notifier {
	return &Notifier{
		writer: w,
		topic:  topic,
		logger: logger.With(zap.String("component", "kafka_notifier"), zap.String("topic", topic)),
	}
}

func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(notification.OrderID, 10)),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(notification.Kind)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for order %d: %w", notification.Kind, notification.OrderID, err)
	}

	n.logger.Debug("notification published",
		zap.String("kind", notification.Kind),
		zap.Int64("order_id", notification.OrderID))
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
