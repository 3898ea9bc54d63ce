package shipping

import (
	"strings"

	"github.com/vastrika/storefront-backend-go/models"
)

// NormalizeStatus maps a carrier's raw status text onto the canonical order
// status vocabulary. Carriers invent new status strings over time, so
// anything unrecognized passes through verbatim rather than being rejected.
func NormalizeStatus(raw string) models.OrderStatus {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "rto") || strings.Contains(lower, "return") {
		return models.OrderStatusRTOInitiated
	}
	if strings.Contains(lower, "fail") || strings.Contains(lower, "undelivered") {
		return models.OrderStatusDeliveryFailed
	}
	return models.OrderStatus(raw)
}
