package shipping

import (
	"context"

	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/models"
	"github.com/vastrika/storefront-backend-go/store"
)

// Event is a post-commit side effect produced by the orchestrator as pure
// data. Delivery happens separately in the Dispatcher, so a failed side
// effect can never roll back the shipment that produced it.
type Event interface {
	eventKind() string
}

type StatusLogEvent struct {
	Entry models.OrderStatusLogEntry
}

func (StatusLogEvent) eventKind() string { return "status_log" }

type NotificationEvent struct {
	Notification models.Notification
}

func (NotificationEvent) eventKind() string { return "notification" }

// Dispatcher delivers post-commit events. Each event's failure is caught and
// logged independently.
type Dispatcher struct {
	store store.Store
	log   *zap.Logger
}

func NewDispatcher(st store.Store, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: st, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, ev := range events {
		var err error
		switch e := ev.(type) {
		case StatusLogEvent:
			err = d.store.AppendStatusLog(ctx, e.Entry)
		case NotificationEvent:
			err = d.store.InsertNotification(ctx, e.Notification)
		default:
			continue
		}
		if err != nil {
			d.log.Error("failed to deliver post-commit event",
				zap.String("kind", ev.eventKind()),
				zap.Error(err))
		}
	}
}
