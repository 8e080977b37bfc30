package memory

import (
	"context"
	"sync"

	"buyback/internal/core/ports"

	"go.uber.org/zap"
)

var _ ports.Notifier = &Notifier{}

// Notifier logs notifications and keeps them for inspection. It stands in
// for the message broker in dev mode.
type Notifier struct {
	mu     sync.Mutex
	sent   []ports.Notification
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger.With(zap.String("component", "log_notifier"))}
}

func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	n.sent = append(n.sent, notification)
	n.mu.Unlock()

	n.logger.Info("notification",
		zap.String("kind", notification.Kind),
		zap.Int64("order_id", notification.OrderID),
		zap.String("status", notification.Status))
	return nil
}

// Sent returns the notifications seen so far, oldest first.
func (n *Notifier) Sent() []ports.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Notification(nil), n.sent...)
}
