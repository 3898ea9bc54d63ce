package store

import (
	"context"
	"errors"
	"time"

	"github.com/vastrika/storefront-backend-go/models"
)

var (
	// ErrNotFound is returned when a lookup resolves to no order.
	ErrNotFound = errors.New("order not found")

	// ErrAlreadyShipped is returned by ApplyShipment when the order already
	// carries a waybill. Waybills are allocated at most once per order.
	ErrAlreadyShipped = errors.New("order already has a waybill")
)

// ShipmentUpdate is the set of shipment fields written in a single
// conditional update when a waybill is recorded against an order.
type ShipmentUpdate struct {
	WaybillID             string
	TrackingURL           string
	CourierName           string
	Status                models.OrderStatus
	EstimatedShippingCost float64
	ChargedWeight         float64
	PricingCheckedAt      *time.Time
}

// Store is the order persistence collaborator. The production implementation
// talks to the managed document store; the in-memory implementation backs
// tests and local development.
type Store interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByWaybill(ctx context.Context, waybill string) (*models.Order, error)
	GetOrders(ctx context.Context, ids []string) ([]models.Order, error)

	// ApplyShipment sets the shipment fields in one conditional update keyed
	// by order id, guarded on no waybill being present yet.
	ApplyShipment(ctx context.Context, orderID string, upd ShipmentUpdate) error

	// UpdateStatus sets the order's current status, courier attribution and
	// last-status timestamp. Last write wins; ordering across deliveries is
	// reconciled through the append-only log.
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, courier string, at time.Time) error

	AppendStatusLog(ctx context.Context, entry models.OrderStatusLogEntry) error
	InsertNotification(ctx context.Context, n models.Notification) error

	GetStatusLog(ctx context.Context, orderID string) ([]models.OrderStatusLogEntry, error)

	DeleteOrder(ctx context.Context, id string) error
}
