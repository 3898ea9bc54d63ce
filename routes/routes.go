package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vastrika/storefront-backend-go/config"
	"github.com/vastrika/storefront-backend-go/handlers"
	customMiddleware "github.com/vastrika/storefront-backend-go/middleware"
)

func SetupRoutes(e *echo.Echo, h *handlers.Handler, cfg *config.Config) {
	// Carrier callbacks authenticate with their own shared secret.
	e.POST("/webhooks/delhivery", h.CarrierWebhook("Delhivery", cfg.Delhivery.WebhookSecret))
	e.POST("/webhooks/xpressbees", h.CarrierWebhook("Xpressbees", cfg.Xpressbees.WebhookSecret))

	// Rate relay and serviceability are callable from the storefront client;
	// the carrier secret stays server-side.
	e.POST("/api/shipping/rates", h.CheckRate)
	e.GET("/api/shipping/serviceability/:pincode", h.CheckServiceability)

	// Storefront polling route for order status
	e.GET("/api/orders/:orderId/status", h.GetOrderStatus)

	// Operator routes
	ops := e.Group("/api")
	ops.Use(customMiddleware.Auth(cfg.JWTSecret))

	ops.POST("/orders/:orderId/ship", h.CreateShipment)
	ops.POST("/orders/:orderId/manual-shipment", h.RecordManualShipment)
	ops.GET("/orders/:orderId/timeline", h.GetOrderTimeline)
	ops.GET("/shipping/track/:waybill", h.TrackShipment)
	ops.POST("/orders/export-csv", h.ExportCSV)
	ops.DELETE("/orders/:id", h.DeleteOrder)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
