package csvexport_test

import (
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastrika/storefront-backend-go/csvexport"
	"github.com/vastrika/storefront-backend-go/models"
)

func exportOrder(id string, itemCount int) models.Order {
	order := models.Order{
		ID:            id,
		PaymentMethod: models.PaymentCOD,
		Total:         2400,
		Customer: models.Customer{
			FirstName: "Asha",
			LastName:  "Verma",
			Phone:     "+91 98765 43210",
			Address: models.Address{
				Street:     "14 MG Road, Shivaji Nagar",
				City:       "Bengaluru",
				State:      "Karnataka",
				PostalCode: "560001",
			},
		},
	}
	for i := 0; i < itemCount; i++ {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   fmt.Sprintf("p%d", i+1),
			SKU:         fmt.Sprintf("SKU-%d", i+1),
			Name:        fmt.Sprintf("Kurta %d", i+1),
			Price:       200,
			Quantity:    1,
			WeightGrams: 250,
		})
	}
	return order
}

func parseCSV(t *testing.T, blob string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(blob)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestGenerate_EmptyInput(t *testing.T) {
	blob, report := csvexport.Generate(nil, csvexport.FormatXpressbees)
	assert.Empty(t, blob)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 0, report.Skipped)
}

func TestGenerate_SkipsShortPhoneWithoutAborting(t *testing.T) {
	good := exportOrder("ORD-1", 1)
	bad := exportOrder("ORD-2", 1)
	bad.Customer.Phone = "12345"
	missing := exportOrder("ORD-3", 1)
	missing.Customer.Phone = ""

	blob, report := csvexport.Generate([]models.Order{bad, good, missing}, csvexport.FormatXpressbees)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 2, report.Skipped)
	assert.Len(t, report.SkipReasons, 2)

	records := parseCSV(t, blob)
	require.Len(t, records, 2) // header + one row
	assert.Equal(t, "ORD-1", records[1][0])
}

func TestGenerate_SkipsZeroItemOrders(t *testing.T) {
	empty := exportOrder("ORD-1", 0)

	blob, report := csvexport.Generate([]models.Order{empty}, csvexport.FormatXpressbees)

	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	records := parseCSV(t, blob)
	assert.Len(t, records, 1) // header only
}

func TestGenerate_ChunksTwelveItemsIntoTwoRows(t *testing.T) {
	order := exportOrder("ORD-1", 12)

	blob, report := csvexport.Generate([]models.Order{order}, csvexport.FormatXpressbees)
	assert.Equal(t, 1, report.Processed)

	records := parseCSV(t, blob)
	require.Len(t, records, 3) // header + 2 chunk rows

	header := records[0]
	row1, row2 := records[1], records[2]

	assert.Equal(t, "ORD-1", row1[0])
	assert.Equal(t, "ORD-1", row2[0])

	// COD amount rides on the first chunk only, and equals the order total.
	assert.Equal(t, "2400.00", row1[2])
	assert.Equal(t, "0.00", row2[2])

	// row 1 fills all 10 slots, row 2 fills 2 and leaves 8 empty
	slotStart := 11 // columns after the order/consignee block
	filled := func(row []string) int {
		n := 0
		for i := 0; i < 10; i++ {
			if row[slotStart+i*4] != "" {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 10, filled(row1))
	assert.Equal(t, 2, filled(row2))

	// the per-row slot quantities sum to the item count
	totalQty := 0
	for _, row := range [][]string{row1, row2} {
		for i := 0; i < 10; i++ {
			if q := row[slotStart+i*4+3]; q != "" {
				totalQty++
				assert.Equal(t, "1", q)
			}
		}
	}
	assert.Equal(t, 12, totalQty)

	assert.Len(t, header, slotStart+40)
}

func TestGenerate_PhoneNormalizedInRow(t *testing.T) {
	order := exportOrder("ORD-1", 1)

	blob, _ := csvexport.Generate([]models.Order{order}, csvexport.FormatXpressbees)
	records := parseCSV(t, blob)

	assert.Equal(t, "9876543210", records[1][4])
}

func TestGenerate_WeightDefaultsPerItem(t *testing.T) {
	order := exportOrder("ORD-1", 2)
	order.Items[0].WeightGrams = 0 // defaults to 500
	order.Items[1].WeightGrams = 250

	blob, _ := csvexport.Generate([]models.Order{order}, csvexport.FormatXpressbees)
	records := parseCSV(t, blob)

	assert.Equal(t, "750", records[1][10])
}

func TestGenerate_ZeroWeightChunkFallsBack(t *testing.T) {
	order := exportOrder("ORD-1", 1)
	order.Items[0].WeightGrams = 0
	order.Items[0].Quantity = 0

	blob, _ := csvexport.Generate([]models.Order{order}, csvexport.FormatXpressbees)
	records := parseCSV(t, blob)

	// a chunk must never emit zero weight
	assert.Equal(t, "500", records[1][10])
}

func TestGenerate_MRPSuffixKeepsSellingPriceColumn(t *testing.T) {
	order := exportOrder("ORD-1", 1)
	order.Items[0].Price = 799
	order.Items[0].MRP = 999

	blob, _ := csvexport.Generate([]models.Order{order}, csvexport.FormatXpressbees)
	records := parseCSV(t, blob)

	assert.Equal(t, "Kurta 1 (MRP 999)", records[1][11])
	assert.Equal(t, "799.00", records[1][13])
}

func TestGenerate_QuotesFieldsWithCommas(t *testing.T) {
	order := exportOrder("ORD-1", 1)
	order.Items[0].Name = `Kurta, "Festive" Edition`

	blob, _ := csvexport.Generate([]models.Order{order}, csvexport.FormatXpressbees)

	assert.Contains(t, blob, `"Kurta, ""Festive"" Edition"`)

	records := parseCSV(t, blob)
	assert.Equal(t, `Kurta, "Festive" Edition`, records[1][11])
}

func TestGenerate_AddressSplitAndPlaceholder(t *testing.T) {
	order := exportOrder("ORD-1", 1)
	long := strings.Repeat("x", 130)
	order.Customer.Address.Street = long

	blob, _ := csvexport.Generate([]models.Order{order}, csvexport.FormatXpressbees)
	records := parseCSV(t, blob)

	assert.Equal(t, long[:100], records[1][5])
	assert.Equal(t, long[100:], records[1][6])

	short := exportOrder("ORD-2", 1)
	blob2, _ := csvexport.Generate([]models.Order{short}, csvexport.FormatXpressbees)
	records2 := parseCSV(t, blob2)
	assert.Equal(t, "NA", records2[1][6])
}

func TestGenerate_DelhiveryFlatFormat(t *testing.T) {
	order := exportOrder("ORD-1", 3)
	order.WaybillID = "AWB123"

	blob, report := csvexport.Generate([]models.Order{order}, csvexport.FormatDelhivery)
	assert.Equal(t, 1, report.Processed)

	records := parseCSV(t, blob)
	require.Len(t, records, 2) // header + one row per order

	row := records[1]
	assert.Equal(t, "AWB123", row[0])
	assert.Equal(t, "ORD-1", row[1])
	assert.Equal(t, "COD", row[2])
	assert.Equal(t, "2400.00", row[3])
	assert.Equal(t, "3", row[12])
}
