package carriers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vastrika/storefront-backend-go/models"
)

// ErrMissingCredential is returned by transactional carrier calls when no API
// token is configured. Serviceability checks instead fail open, since they are
// advisory and must not block checkout on missing configuration.
var ErrMissingCredential = errors.New("carrier API token not configured")

// FailureKind classifies a business failure embedded in a carrier response.
type FailureKind string

const (
	FailureGeneric             FailureKind = "generic"
	FailureInsufficientBalance FailureKind = "insufficient_balance"
)

// BusinessError is a carrier-side failure delivered inside an HTTP 200
// response, e.g. a waybill allocation rejected with a remarks string. It is
// distinct from a transport error and carries the carrier's raw remarks.
type BusinessError struct {
	Courier string
	Kind    FailureKind
	Remarks string
}

func (e *BusinessError) Error() string {
	if e.Kind == FailureInsufficientBalance {
		return fmt.Sprintf("%s: insufficient wallet balance: %s", e.Courier, e.Remarks)
	}
	return fmt.Sprintf("%s: shipment creation failed: %s", e.Courier, e.Remarks)
}

// ClassifyRemarks maps a carrier remarks string to a failure kind.
func ClassifyRemarks(remarks string) FailureKind {
	if strings.Contains(strings.ToLower(remarks), "balance") {
		return FailureInsufficientBalance
	}
	return FailureGeneric
}

// ServiceabilityResult is advisory: the check never fails hard. A transport
// or API error is reported in the Error field with Serviceable false.
type ServiceabilityResult struct {
	Serviceable  bool   `json:"serviceable"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	CODAvailable bool   `json:"codAvailable"`
	Details      string `json:"details,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ShipmentMode selects the carrier service level.
type ShipmentMode string

const (
	ModeSurface ShipmentMode = "surface"
	ModeExpress ShipmentMode = "express"
)

type RateParams struct {
	WeightGrams float64
	OriginPin   string
	DestPin     string
	Mode        ShipmentMode
	PaymentType models.PaymentMethod
	// Amount is the order total; required when PaymentType is COD so the
	// carrier can price cash collection.
	Amount float64
}

type ShipmentRequest struct {
	OrderID       string
	Name          string
	Phone         string
	Address       models.Address
	PaymentMethod models.PaymentMethod
	Total         float64
	Items         []models.OrderItem
	Mode          ShipmentMode
	WeightGrams   float64
}

type ShipmentResult struct {
	WaybillID     string
	TrackingURL   string
	CourierName   string
	ChargedWeight float64
}

type TrackingEvent struct {
	Status    string `json:"status"`
	Location  string `json:"location,omitempty"`
	Remarks   string `json:"remarks,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type TrackingResult struct {
	WaybillID string          `json:"waybillId"`
	Status    string          `json:"status"`
	Location  string          `json:"location,omitempty"`
	Events    []TrackingEvent `json:"events,omitempty"`
}

// Carrier is the uniform interface over heterogeneous courier APIs. The
// orchestrator, rate proxy and exporter depend only on this interface;
// carrier-specific payload shaping stays inside each adapter.
type Carrier interface {
	Name() string

	// CheckServiceability never returns an error: serviceability is advisory,
	// and failures are reported inside the result.
	CheckServiceability(ctx context.Context, pincode string) ServiceabilityResult

	CalculateShipping(ctx context.Context, params RateParams) (*models.RateQuote, error)

	// CreateOrder requests waybill allocation. This schedules a real courier
	// pickup and must not be retried blindly; a retry after a carrier-side
	// partial success can allocate a duplicate waybill.
	CreateOrder(ctx context.Context, req ShipmentRequest) (*ShipmentResult, error)

	TrackShipment(ctx context.Context, waybill string) (*TrackingResult, error)
}
