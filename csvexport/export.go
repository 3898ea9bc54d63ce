package csvexport

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/vastrika/storefront-backend-go/models"
	"github.com/vastrika/storefront-backend-go/utils"
)

// Format selects the carrier whose flat-file schema the export must match.
type Format string

const (
	FormatXpressbees Format = "xpressbees"
	FormatDelhivery  Format = "delhivery"
)

const (
	productSlots           = 10
	defaultItemWeightGrams = 500.0
	addressLineWidth       = 100
	// Carriers reject a truly empty required field.
	addressPlaceholder = "NA"
)

// Report aggregates the outcome of an export run. Individual bad orders are
// skipped and counted, never aborting the rest of the batch.
type Report struct {
	Processed   int      `json:"processed"`
	Skipped     int      `json:"skipped"`
	SkipReasons []string `json:"skipReasons,omitempty"`
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// splitAddress breaks a street address into the carrier's two fixed-width
// fields. The second field gets a placeholder when empty.
func splitAddress(street string) (string, string) {
	street = strings.TrimSpace(street)
	if len(street) <= addressLineWidth {
		return street, addressPlaceholder
	}
	line2 := strings.TrimSpace(street[addressLineWidth:])
	if line2 == "" {
		line2 = addressPlaceholder
	}
	return street[:addressLineWidth], line2
}

// displayName renders the product name for the carrier sheet, appending the
// MRP in parentheses when the item sells at a discount. The numeric price
// column stays the selling price; only the label carries the MRP.
func displayName(item models.OrderItem) string {
	if item.MRP > item.Price && item.Price > 0 {
		return fmt.Sprintf("%s (MRP %s)", item.Name, strconv.FormatFloat(item.MRP, 'f', -1, 64))
	}
	return item.Name
}

func itemWeight(item models.OrderItem) float64 {
	w := item.WeightGrams
	if w == 0 {
		w = defaultItemWeightGrams
	}
	return w * float64(item.Quantity)
}

func chunkWeight(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += itemWeight(item)
	}
	if total == 0 {
		total = defaultItemWeightGrams
	}
	return total
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Generate renders the selected orders into a carrier-compliant CSV. Orders
// with an unusable phone number or no items are skipped with a reason; a
// single malformed order never aborts the batch. An empty input set yields
// an empty string rather than a headers-only file.
func Generate(orders []models.Order, format Format) (string, Report) {
	var report Report
	if len(orders) == 0 {
		return "", report
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	switch format {
	case FormatDelhivery:
		w.Write(delhiveryHeader())
	default:
		w.Write(xpressbeesHeader())
	}

	for _, order := range orders {
		if countDigits(order.Customer.Phone) < 10 {
			report.Skipped++
			report.SkipReasons = append(report.SkipReasons,
				fmt.Sprintf("%s: phone number has fewer than 10 digits", order.ID))
			continue
		}
		if len(order.Items) == 0 {
			report.Skipped++
			report.SkipReasons = append(report.SkipReasons,
				fmt.Sprintf("%s: order has no items", order.ID))
			continue
		}

		switch format {
		case FormatDelhivery:
			w.Write(delhiveryRow(order))
		default:
			for _, row := range xpressbeesRows(order) {
				w.Write(row)
			}
		}
		report.Processed++
	}

	w.Flush()
	return sb.String(), report
}

func xpressbeesHeader() []string {
	header := []string{
		"Order Number", "Payment Type", "COD Amount",
		"Consignee Name", "Phone",
		"Address Line 1", "Address Line 2", "City", "State", "Pincode",
		"Weight (gms)",
	}
	for i := 1; i <= productSlots; i++ {
		header = append(header,
			fmt.Sprintf("Product Name %d", i),
			fmt.Sprintf("SKU %d", i),
			fmt.Sprintf("Price %d", i),
			fmt.Sprintf("Qty %d", i),
		)
	}
	return header
}

// xpressbeesRows emits one row per 10-item chunk. The COD amount rides on the
// first chunk only, so a split order never demands duplicate cash collection.
func xpressbeesRows(order models.Order) [][]string {
	line1, line2 := splitAddress(order.Customer.Address.Street)
	phone := utils.NormalizePhone(order.Customer.Phone)

	paymentType := "Prepaid"
	if order.PaymentMethod == models.PaymentCOD {
		paymentType = "COD"
	}

	var rows [][]string
	for start := 0; start < len(order.Items); start += productSlots {
		end := start + productSlots
		if end > len(order.Items) {
			end = len(order.Items)
		}
		chunk := order.Items[start:end]

		codAmount := 0.0
		if order.PaymentMethod == models.PaymentCOD && start == 0 {
			codAmount = order.Total
		}

		row := []string{
			order.ID,
			paymentType,
			formatAmount(codAmount),
			order.CustomerName(),
			phone,
			line1,
			line2,
			order.Customer.Address.City,
			order.Customer.Address.State,
			order.Customer.Address.PostalCode,
			strconv.FormatFloat(chunkWeight(chunk), 'f', 0, 64),
		}

		for i := 0; i < productSlots; i++ {
			if i < len(chunk) {
				item := chunk[i]
				row = append(row,
					displayName(item),
					item.SKU,
					formatAmount(item.Price),
					strconv.Itoa(item.Quantity),
				)
			} else {
				row = append(row, "", "", "", "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func delhiveryHeader() []string {
	return []string{
		"Waybill", "Order ID", "Payment Mode", "COD Amount",
		"Consignee Name", "Phone",
		"Address Line 1", "Address Line 2", "City", "State", "Pincode",
		"Products", "Quantity", "Weight (gms)", "Total Amount",
	}
}

func delhiveryRow(order models.Order) []string {
	line1, line2 := splitAddress(order.Customer.Address.Street)
	phone := utils.NormalizePhone(order.Customer.Phone)

	paymentMode := "Prepaid"
	codAmount := 0.0
	if order.PaymentMethod == models.PaymentCOD {
		paymentMode = "COD"
		codAmount = order.Total
	}

	var descParts []string
	quantity := 0
	for _, item := range order.Items {
		descParts = append(descParts, fmt.Sprintf("%s (%d)", displayName(item), item.Quantity))
		quantity += item.Quantity
	}

	return []string{
		order.WaybillID,
		order.ID,
		paymentMode,
		formatAmount(codAmount),
		order.CustomerName(),
		phone,
		line1,
		line2,
		order.Customer.Address.City,
		order.Customer.Address.State,
		order.Customer.Address.PostalCode,
		strings.Join(descParts, ", "),
		strconv.Itoa(quantity),
		strconv.FormatFloat(chunkWeight(order.Items), 'f', 0, 64),
		formatAmount(order.Total),
	}
}
