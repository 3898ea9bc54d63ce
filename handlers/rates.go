package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vastrika/storefront-backend-go/carriers"
	"github.com/vastrika/storefront-backend-go/metrics"
	"github.com/vastrika/storefront-backend-go/models"
)

// RateCheckRequest is the rate proxy contract. The relay runs the carrier
// call server-side so the carrier secret never reaches the browser.
type RateCheckRequest struct {
	Carrier     string  `json:"carrier"`
	WeightGrams float64 `json:"weight"`
	OriginPin   string  `json:"origin_pin"`
	DestPin     string  `json:"dest_pin"`
	Mode        string  `json:"mode"`
	PaymentType string  `json:"payment_type"`
	Amount      float64 `json:"amount"`
}

// CheckRate relays a rate lookup to the selected carrier and returns the
// standardized charge breakdown.
func (h *Handler) CheckRate(c echo.Context) error {
	var req RateCheckRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	if req.WeightGrams <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "weight is required and must be positive"})
	}
	if req.OriginPin == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "origin_pin is required"})
	}
	if req.DestPin == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "dest_pin is required"})
	}

	carrierName := req.Carrier
	if carrierName == "" {
		carrierName = "delhivery"
	}
	carrier, ok := h.orchestrator.Carrier(carrierName)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown carrier: " + carrierName})
	}

	mode := carriers.ModeSurface
	if req.Mode == string(carriers.ModeExpress) {
		mode = carriers.ModeExpress
	}
	paymentType := models.PaymentPrepaid
	if req.PaymentType == string(models.PaymentCOD) {
		paymentType = models.PaymentCOD
	}

	metrics.RateChecksTotal.Inc()

	quote, err := carrier.CalculateShipping(c.Request().Context(), carriers.RateParams{
		WeightGrams: req.WeightGrams,
		OriginPin:   req.OriginPin,
		DestPin:     req.DestPin,
		Mode:        mode,
		PaymentType: paymentType,
		Amount:      req.Amount,
	})
	if err != nil {
		// Propagate the carrier's raw error text for diagnosability.
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, quote)
}
