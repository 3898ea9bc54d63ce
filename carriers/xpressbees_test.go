package carriers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/carriers"
	"github.com/vastrika/storefront-backend-go/config"
	"github.com/vastrika/storefront-backend-go/models"
)

func xpressbeesWith(t *testing.T, token string, handler http.Handler) (*carriers.Xpressbees, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.CarrierConfig{APIToken: token, BaseURL: srv.URL, PickupLocation: "MainWarehouse"}
	return carriers.NewXpressbees(cfg, "110001", zap.NewNop()), &calls
}

func TestXpressbees_ServiceabilityFailsOpenWithoutToken(t *testing.T) {
	x, calls := xpressbeesWith(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	result := x.CheckServiceability(context.Background(), "560001")

	assert.True(t, result.Serviceable)
	assert.Equal(t, int64(0), calls.Load())
}

func TestXpressbees_ServiceabilityUsesBearerAuth(t *testing.T) {
	x, _ := xpressbeesWith(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"status":true,"data":[{"city":"Bengaluru","state":"Karnataka","cod":true}]}`)
	}))

	result := x.CheckServiceability(context.Background(), "560001")

	assert.True(t, result.Serviceable)
	assert.True(t, result.CODAvailable)
	assert.Equal(t, "Bengaluru", result.City)
}

func TestXpressbees_CalculateShipping(t *testing.T) {
	x, _ := xpressbeesWith(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(2400), payload["order_amount"])
		fmt.Fprint(w, `{"status":true,"data":{"freight_charges":70,"cod_charges":25,"gst":17.1,"total_charges":112.1,"chargeable_weight":600}}`)
	}))

	quote, err := x.CalculateShipping(context.Background(), carriers.RateParams{
		WeightGrams: 600,
		DestPin:     "560001",
		PaymentType: models.PaymentCOD,
		Amount:      2400,
	})
	require.NoError(t, err)

	assert.Equal(t, 112.1, quote.TotalAmount)
	assert.Equal(t, 95.0, quote.Freight)
	assert.Equal(t, 600.0, quote.WeightUsed)
}

func TestXpressbees_CreateOrderSuccess(t *testing.T) {
	x, _ := xpressbeesWith(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ORD-1", payload["order_number"])
		assert.Equal(t, "cod", payload["payment_type"])
		fmt.Fprint(w, `{"status":true,"data":{"awb_number":"XB555","courier_name":"Xpressbees Surface","shipment_id":42}}`)
	}))

	result, err := x.CreateOrder(context.Background(), carriers.ShipmentRequest{
		OrderID:       "ORD-1",
		Name:          "Asha Verma",
		Phone:         "9876543210",
		PaymentMethod: models.PaymentCOD,
		Total:         2400,
	})
	require.NoError(t, err)

	assert.Equal(t, "XB555", result.WaybillID)
	assert.Equal(t, "Xpressbees", result.CourierName)
}

func TestXpressbees_CreateOrderBusinessFailure(t *testing.T) {
	x, _ := xpressbeesWith(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":false,"message":"wallet balance too low to book shipment"}`)
	}))

	_, err := x.CreateOrder(context.Background(), carriers.ShipmentRequest{OrderID: "ORD-1"})

	var bizErr *carriers.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, carriers.FailureInsufficientBalance, bizErr.Kind)
}

func TestXpressbees_TrackShipmentRequiresToken(t *testing.T) {
	x, calls := xpressbeesWith(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := x.TrackShipment(context.Background(), "XB555")

	assert.ErrorIs(t, err, carriers.ErrMissingCredential)
	assert.Equal(t, int64(0), calls.Load())
}

func TestXpressbees_TrackShipment(t *testing.T) {
	x, _ := xpressbeesWith(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"data":{"awb_number":"XB555","status":"Out for Delivery","location":"Bengaluru","history":[{"status":"Picked","location":"Warehouse","event_time":"2024-02-02T09:00:00Z"}]}}`)
	}))

	result, err := x.TrackShipment(context.Background(), "XB555")
	require.NoError(t, err)

	assert.Equal(t, "Out for Delivery", result.Status)
	require.Len(t, result.Events, 1)
}
