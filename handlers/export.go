package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vastrika/storefront-backend-go/csvexport"
	"github.com/vastrika/storefront-backend-go/metrics"
)

type ExportCSVRequest struct {
	OrderIDs []string `json:"order_ids"`
	Carrier  string   `json:"carrier"`
}

// ExportCSV renders the selected orders into a carrier-compliant flat file
// for manual upload. Bad orders are skipped, never failing the batch; the
// processed/skipped counts ride back in response headers.
func (h *Handler) ExportCSV(c echo.Context) error {
	var req ExportCSVRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	format := csvexport.FormatXpressbees
	if req.Carrier == string(csvexport.FormatDelhivery) {
		format = csvexport.FormatDelhivery
	}

	orders, err := h.store.GetOrders(c.Request().Context(), req.OrderIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch orders"})
	}

	blob, report := csvexport.Generate(orders, format)

	metrics.CSVOrdersProcessedTotal.Add(float64(report.Processed))
	metrics.CSVOrdersSkippedTotal.Add(float64(report.Skipped))

	c.Response().Header().Set("X-Orders-Processed", fmt.Sprintf("%d", report.Processed))
	c.Response().Header().Set("X-Orders-Skipped", fmt.Sprintf("%d", report.Skipped))

	if blob == "" || report.Processed == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	filename := fmt.Sprintf("%s-orders-%s.csv", format, time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(blob))
}
