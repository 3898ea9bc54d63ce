package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/carriers"
	"github.com/vastrika/storefront-backend-go/shipping"
	"github.com/vastrika/storefront-backend-go/store"
)

// CreateShipment runs the integrated ship-this-order flow for one order.
func (h *Handler) CreateShipment(c echo.Context) error {
	orderID := c.Param("orderId")

	opts := shipping.CreateOptions{
		Carrier:  c.QueryParam("carrier"),
		Mode:     carriers.ModeSurface,
		SkipRate: c.QueryParam("skip_rate") == "true",
	}
	if opts.Carrier == "" {
		opts.Carrier = "delhivery"
	}
	if c.QueryParam("mode") == string(carriers.ModeExpress) {
		opts.Mode = carriers.ModeExpress
	}

	order, events, err := h.orchestrator.CreateShipment(c.Request().Context(), orderID, opts)
	if err != nil {
		return h.shipmentError(c, err)
	}

	h.dispatcher.Dispatch(c.Request().Context(), events)

	return c.JSON(http.StatusOK, order)
}

// RecordManualShipment persists an operator-keyed courier/AWB pair without
// touching any carrier API.
func (h *Handler) RecordManualShipment(c echo.Context) error {
	orderID := c.Param("orderId")

	var input shipping.ManualShipmentInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	order, events, err := h.orchestrator.RecordManualShipment(c.Request().Context(), orderID, input)
	if err != nil {
		return h.shipmentError(c, err)
	}

	h.dispatcher.Dispatch(c.Request().Context(), events)

	return c.JSON(http.StatusOK, order)
}

// shipmentError maps orchestration failures onto operator-facing responses.
// Business failures keep the carrier's raw remarks alongside the classified
// label; nothing is retried automatically.
func (h *Handler) shipmentError(c echo.Context, err error) error {
	var bizErr *carriers.BusinessError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	case errors.Is(err, store.ErrAlreadyShipped):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Order already has a waybill; manual intervention required to re-ship"})
	case errors.Is(err, shipping.ErrUnknownCarrier):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, carriers.ErrMissingCredential):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	case errors.As(err, &bizErr):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error":   bizErr.Error(),
			"kind":    string(bizErr.Kind),
			"remarks": bizErr.Remarks,
		})
	default:
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

// CheckServiceability is advisory; it always answers 200 with the result.
func (h *Handler) CheckServiceability(c echo.Context) error {
	pincode := c.Param("pincode")
	carrierName := c.QueryParam("carrier")
	if carrierName == "" {
		carrierName = "delhivery"
	}

	carrier, ok := h.orchestrator.Carrier(carrierName)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown carrier: " + carrierName})
	}

	result := carrier.CheckServiceability(c.Request().Context(), pincode)
	return c.JSON(http.StatusOK, result)
}

// TrackShipment relays a waybill tracking read to the carrier.
func (h *Handler) TrackShipment(c echo.Context) error {
	waybill := c.Param("waybill")
	carrierName := c.QueryParam("carrier")
	if carrierName == "" {
		carrierName = "delhivery"
	}

	carrier, ok := h.orchestrator.Carrier(carrierName)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown carrier: " + carrierName})
	}

	result, err := carrier.TrackShipment(c.Request().Context(), waybill)
	if err != nil {
		if errors.Is(err, carriers.ErrMissingCredential) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// GetOrderStatus serves the storefront's status polling.
func (h *Handler) GetOrderStatus(c echo.Context) error {
	order, err := h.store.GetOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch order"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":      string(order.Status),
		"waybillId":   order.WaybillID,
		"trackingUrl": order.TrackingURL,
		"courierName": order.CourierName,
	})
}

// GetOrderTimeline returns the append-only status log for the admin UI.
func (h *Handler) GetOrderTimeline(c echo.Context) error {
	orderID := c.Param("orderId")
	if _, err := h.store.GetOrder(c.Request().Context(), orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch order"})
	}

	entries, err := h.store.GetStatusLog(c.Request().Context(), orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch timeline"})
	}
	return c.JSON(http.StatusOK, entries)
}

// DeleteOrder is an admin-only destructive pass-through to the store.
func (h *Handler) DeleteOrder(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.DeleteOrder(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete order"})
	}
	h.log.Info("order deleted", zap.String("order_id", id))
	return c.JSON(http.StatusOK, map[string]string{"message": fmt.Sprintf("Order %s deleted", id)})
}
