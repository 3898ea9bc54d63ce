package shipping_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastrika/storefront-backend-go/shipping"
)

func TestParseWebhookPayload_NestedShipmentEnvelope(t *testing.T) {
	body := []byte(`{
		"Shipment": {
			"AWB": "AWB123",
			"ReferenceNo": "ORD-1",
			"Status": {
				"Status": "Delivered",
				"StatusLocation": "Mumbai_Hub",
				"StatusDateTime": "2024-01-01T10:00:00Z"
			}
		}
	}`)

	payload, err := shipping.ParseWebhookPayload(body)
	require.NoError(t, err)

	assert.Equal(t, "AWB123", payload.AWB)
	assert.Equal(t, "Delivered", payload.RawStatus)
	assert.Equal(t, "Mumbai_Hub", payload.Location)
	assert.Equal(t, "ORD-1", payload.OrderRef)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), payload.Timestamp)
}

func TestParseWebhookPayload_FlatObject(t *testing.T) {
	body := []byte(`{
		"awb_number": "XB987",
		"status": "In Transit",
		"location": "Delhi",
		"order_id": "ORD-9",
		"event_time": "2024-03-05 08:30:00"
	}`)

	payload, err := shipping.ParseWebhookPayload(body)
	require.NoError(t, err)

	assert.Equal(t, "XB987", payload.AWB)
	assert.Equal(t, "In Transit", payload.RawStatus)
	assert.Equal(t, "Delhi", payload.Location)
	assert.Equal(t, "ORD-9", payload.OrderRef)
}

func TestParseWebhookPayload_NoAWB(t *testing.T) {
	_, err := shipping.ParseWebhookPayload([]byte(`{"status": "Delivered"}`))
	assert.ErrorIs(t, err, shipping.ErrUnparseablePayload)
}

func TestParseWebhookPayload_InvalidJSON(t *testing.T) {
	_, err := shipping.ParseWebhookPayload([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseWebhookPayload_MissingTimestampDefaultsToNow(t *testing.T) {
	before := time.Now()
	payload, err := shipping.ParseWebhookPayload([]byte(`{"awb": "A1", "status": "Dispatched"}`))
	require.NoError(t, err)

	assert.False(t, payload.Timestamp.Before(before))
}
