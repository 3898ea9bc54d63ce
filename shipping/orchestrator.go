package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/carriers"
	"github.com/vastrika/storefront-backend-go/metrics"
	"github.com/vastrika/storefront-backend-go/models"
	"github.com/vastrika/storefront-backend-go/store"
)

// ErrUnknownCarrier is returned when a shipment names a carrier no adapter
// is registered for.
var ErrUnknownCarrier = errors.New("unknown carrier")

const defaultItemWeightGrams = 500

// CreateOptions controls a carrier-integrated shipment creation.
type CreateOptions struct {
	Carrier string
	Mode    carriers.ShipmentMode
	// SkipRate skips the rate lookup; estimated cost falls back to the
	// order's previous estimate (or zero).
	SkipRate bool
}

// ManualShipmentInput records a shipment handed to a courier outside the
// integrated flow: the operator supplies the courier name and AWB directly.
type ManualShipmentInput struct {
	CourierName string `json:"courierName"`
	WaybillID   string `json:"waybillId"`
	TrackingURL string `json:"trackingUrl,omitempty"`
}

// Orchestrator drives the ship-this-order action: rate lookup, waybill
// creation, persistence, and post-commit events. Steps are strictly
// sequential; each failure surfaces to the operator and nothing is retried
// automatically.
type Orchestrator struct {
	store    store.Store
	carriers map[string]carriers.Carrier
	log      *zap.Logger
}

func NewOrchestrator(st store.Store, adapters []carriers.Carrier, log *zap.Logger) *Orchestrator {
	byName := make(map[string]carriers.Carrier, len(adapters))
	for _, c := range adapters {
		byName[strings.ToLower(c.Name())] = c
	}
	return &Orchestrator{store: st, carriers: byName, log: log}
}

// Carrier resolves a registered adapter by case-insensitive name.
func (o *Orchestrator) Carrier(name string) (carriers.Carrier, bool) {
	c, ok := o.carriers[strings.ToLower(name)]
	return c, ok
}

func orderWeightGrams(order *models.Order) float64 {
	var total float64
	for _, item := range order.Items {
		w := item.WeightGrams
		if w == 0 {
			w = defaultItemWeightGrams
		}
		total += w * float64(item.Quantity)
	}
	if total == 0 {
		total = defaultItemWeightGrams
	}
	return total
}

// CreateShipment runs the integrated shipment flow for an order and returns
// the updated order plus the post-commit events to dispatch. The waybill is
// allocated at most once; an order that already carries one is rejected
// before any carrier call is made.
func (o *Orchestrator) CreateShipment(ctx context.Context, orderID string, opts CreateOptions) (*models.Order, []Event, error) {
	order, err := o.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.WaybillID != "" {
		return nil, nil, store.ErrAlreadyShipped
	}

	carrier, ok := o.Carrier(opts.Carrier)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCarrier, opts.Carrier)
	}

	weight := orderWeightGrams(order)

	estimatedCost := order.EstimatedShippingCost
	chargedWeight := weight
	var pricingCheckedAt *time.Time
	if !opts.SkipRate {
		quote, err := carrier.CalculateShipping(ctx, carriers.RateParams{
			WeightGrams: weight,
			DestPin:     order.Customer.Address.PostalCode,
			Mode:        opts.Mode,
			PaymentType: order.PaymentMethod,
			Amount:      order.Total,
		})
		if err != nil {
			metrics.ShipmentFailuresTotal.WithLabelValues(carrier.Name()).Inc()
			return nil, nil, fmt.Errorf("rate lookup failed: %w", err)
		}
		estimatedCost = quote.TotalAmount
		if quote.WeightUsed > 0 {
			chargedWeight = quote.WeightUsed
		}
		now := time.Now()
		pricingCheckedAt = &now
	}

	result, err := carrier.CreateOrder(ctx, carriers.ShipmentRequest{
		OrderID:       order.ID,
		Name:          order.CustomerName(),
		Phone:         order.Customer.Phone,
		Address:       order.Customer.Address,
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
		Items:         order.Items,
		Mode:          opts.Mode,
		WeightGrams:   weight,
	})
	if err != nil {
		metrics.ShipmentFailuresTotal.WithLabelValues(carrier.Name()).Inc()
		return nil, nil, err
	}

	if result.ChargedWeight > 0 {
		chargedWeight = result.ChargedWeight
	}

	upd := store.ShipmentUpdate{
		WaybillID:             result.WaybillID,
		TrackingURL:           result.TrackingURL,
		CourierName:           result.CourierName,
		Status:                models.OrderStatusShipped,
		EstimatedShippingCost: estimatedCost,
		ChargedWeight:         chargedWeight,
		PricingCheckedAt:      pricingCheckedAt,
	}
	if err := o.store.ApplyShipment(ctx, order.ID, upd); err != nil {
		// The waybill already exists at the carrier; this inconsistency
		// window is accepted and reconciled manually rather than attempting
		// a rollback the carrier API does not support.
		o.log.Error("shipment persisted at carrier but store update failed",
			zap.String("order_id", order.ID),
			zap.String("waybill", result.WaybillID),
			zap.Error(err))
		return nil, nil, fmt.Errorf("waybill %s allocated but order update failed: %w", result.WaybillID, err)
	}

	metrics.ShipmentsCreatedTotal.WithLabelValues(result.CourierName).Inc()

	updated, err := o.store.GetOrder(ctx, order.ID)
	if err != nil {
		updated = order
	}

	return updated, o.shipmentEvents(order.ID, result.CourierName, result.WaybillID, result.TrackingURL), nil
}

// RecordManualShipment persists an operator-supplied courier/AWB pair. It
// converges on the same persistence contract as the integrated flow, so
// downstream consumers cannot tell the two apart except by courier name.
func (o *Orchestrator) RecordManualShipment(ctx context.Context, orderID string, input ManualShipmentInput) (*models.Order, []Event, error) {
	if input.CourierName == "" || input.WaybillID == "" {
		return nil, nil, fmt.Errorf("courier name and waybill are required")
	}

	order, err := o.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.WaybillID != "" {
		return nil, nil, store.ErrAlreadyShipped
	}

	upd := store.ShipmentUpdate{
		WaybillID:             input.WaybillID,
		TrackingURL:           input.TrackingURL,
		CourierName:           input.CourierName,
		Status:                models.OrderStatusShipped,
		EstimatedShippingCost: order.EstimatedShippingCost,
		ChargedWeight:         order.ChargedWeight,
	}
	if err := o.store.ApplyShipment(ctx, order.ID, upd); err != nil {
		return nil, nil, err
	}

	metrics.ShipmentsCreatedTotal.WithLabelValues(input.CourierName).Inc()

	updated, err := o.store.GetOrder(ctx, order.ID)
	if err != nil {
		updated = order
	}

	return updated, o.shipmentEvents(order.ID, input.CourierName, input.WaybillID, input.TrackingURL), nil
}

func (o *Orchestrator) shipmentEvents(orderID, courier, waybill, trackingURL string) []Event {
	now := time.Now()
	message := fmt.Sprintf("Your order has been shipped via %s. Track it with AWB %s.", courier, waybill)
	if trackingURL != "" {
		message = fmt.Sprintf("%s %s", message, trackingURL)
	}
	return []Event{
		StatusLogEvent{Entry: models.OrderStatusLogEntry{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Status:    string(models.OrderStatusShipped),
			Timestamp: now,
			Remarks:   fmt.Sprintf("Shipment created via %s, AWB %s", courier, waybill),
		}},
		NotificationEvent{Notification: models.Notification{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Type:      "shipment_created",
			Message:   message,
			CreatedAt: now,
		}},
	}
}
