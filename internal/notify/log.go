// Package notify delivers payment reminders.
package notify

import (
	"context"

	"go.uber.org/zap"

	"kos-manager/internal/service"
)

// LogNotifier writes reminders to the application log instead of sending
// them anywhere. It is the default when no broker is configured.
type LogNotifier struct {
	Log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{Log: log}
}

func (n *LogNotifier) Notify(_ context.Context, r service.Reminder) error {
	n.Log.Info(r.Message(),
		zap.Uint("payment_id", r.PaymentID),
		zap.String("tenant", r.TenantName),
		zap.String("email", r.TenantEmail),
		zap.String("phone", r.TenantPhone),
		zap.String("room", r.RoomNumber),
		zap.Time("due_date", r.DueDate),
		zap.String("status", r.Status),
	)
	return nil
}
