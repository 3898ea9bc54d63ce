package shipping_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vastrika/storefront-backend-go/carriers"
	"github.com/vastrika/storefront-backend-go/models"
	"github.com/vastrika/storefront-backend-go/shipping"
	"github.com/vastrika/storefront-backend-go/store"
)

// fakeCarrier is a scriptable Carrier for orchestrator tests.
type fakeCarrier struct {
	name        string
	quote       *models.RateQuote
	quoteErr    error
	result      *carriers.ShipmentResult
	createErr   error
	createCalls int
	rateCalls   int
}

func (f *fakeCarrier) Name() string { return f.name }

func (f *fakeCarrier) CheckServiceability(_ context.Context, _ string) carriers.ServiceabilityResult {
	return carriers.ServiceabilityResult{Serviceable: true}
}

func (f *fakeCarrier) CalculateShipping(_ context.Context, _ carriers.RateParams) (*models.RateQuote, error) {
	f.rateCalls++
	return f.quote, f.quoteErr
}

func (f *fakeCarrier) CreateOrder(_ context.Context, _ carriers.ShipmentRequest) (*carriers.ShipmentResult, error) {
	f.createCalls++
	return f.result, f.createErr
}

func (f *fakeCarrier) TrackShipment(_ context.Context, _ string) (*carriers.TrackingResult, error) {
	return &carriers.TrackingResult{}, nil
}

func testOrder(id string) models.Order {
	return models.Order{
		ID:            id,
		Status:        models.OrderStatusProcessing,
		PaymentMethod: models.PaymentCOD,
		Total:         2400,
		Customer: models.Customer{
			FirstName: "Asha",
			LastName:  "Verma",
			Phone:     "+91 98765 43210",
			Address: models.Address{
				Street:     "14 MG Road",
				City:       "Bengaluru",
				State:      "Karnataka",
				PostalCode: "560001",
			},
		},
		Items: []models.OrderItem{
			{ProductID: "p1", SKU: "SKU-1", Name: "Kurta", Price: 1200, Quantity: 2, WeightGrams: 300},
		},
	}
}

func newOrchestrator(st store.Store, fc *fakeCarrier) *shipping.Orchestrator {
	return shipping.NewOrchestrator(st, []carriers.Carrier{fc}, zap.NewNop())
}

func TestCreateShipment_Success(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutOrder(testOrder("ORD-1"))

	fc := &fakeCarrier{
		name:   "Delhivery",
		quote:  &models.RateQuote{Freight: 60, GST: 12, TotalAmount: 72, WeightUsed: 600},
		result: &carriers.ShipmentResult{WaybillID: "AWB123", TrackingURL: "https://track/AWB123", CourierName: "Delhivery"},
	}

	orch := newOrchestrator(st, fc)
	order, events, err := orch.CreateShipment(context.Background(), "ORD-1", shipping.CreateOptions{Carrier: "delhivery"})
	require.NoError(t, err)

	assert.Equal(t, "AWB123", order.WaybillID)
	assert.Equal(t, models.OrderStatusShipped, order.Status)
	assert.Equal(t, "Delhivery", order.CourierName)
	assert.Equal(t, 72.0, order.EstimatedShippingCost)
	assert.Equal(t, 600.0, order.ChargedWeight)
	assert.NotNil(t, order.PricingCheckedAt)

	// one log entry and exactly one notification, as post-commit events
	var notifications, logs int
	for _, ev := range events {
		switch e := ev.(type) {
		case shipping.NotificationEvent:
			notifications++
			assert.Contains(t, e.Notification.Message, "AWB123")
		case shipping.StatusLogEvent:
			logs++
			assert.Contains(t, e.Entry.Remarks, "AWB123")
		}
	}
	assert.Equal(t, 1, notifications)
	assert.Equal(t, 1, logs)
}

func TestCreateShipment_SkipRateUsesPriorEstimate(t *testing.T) {
	st := store.NewMemoryStore()
	order := testOrder("ORD-2")
	order.EstimatedShippingCost = 55
	st.PutOrder(order)

	fc := &fakeCarrier{
		name:   "Delhivery",
		result: &carriers.ShipmentResult{WaybillID: "AWB456", CourierName: "Delhivery"},
	}

	orch := newOrchestrator(st, fc)
	updated, _, err := orch.CreateShipment(context.Background(), "ORD-2", shipping.CreateOptions{Carrier: "delhivery", SkipRate: true})
	require.NoError(t, err)

	assert.Equal(t, 0, fc.rateCalls)
	assert.Equal(t, 55.0, updated.EstimatedShippingCost)
	assert.Nil(t, updated.PricingCheckedAt)
}

func TestCreateShipment_BusinessFailureDoesNotPersist(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutOrder(testOrder("ORD-3"))

	fc := &fakeCarrier{
		name: "Delhivery",
		createErr: &carriers.BusinessError{
			Courier: "Delhivery",
			Kind:    carriers.FailureInsufficientBalance,
			Remarks: "Insufficient wallet balance for waybill generation",
		},
	}

	orch := newOrchestrator(st, fc)
	_, events, err := orch.CreateShipment(context.Background(), "ORD-3", shipping.CreateOptions{Carrier: "delhivery", SkipRate: true})

	var bizErr *carriers.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, carriers.FailureInsufficientBalance, bizErr.Kind)
	assert.Empty(t, events)

	order, err := st.GetOrder(context.Background(), "ORD-3")
	require.NoError(t, err)
	assert.Empty(t, order.WaybillID)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
}

func TestCreateShipment_RateFailureBlocksCreate(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutOrder(testOrder("ORD-4"))

	fc := &fakeCarrier{name: "Delhivery", quoteErr: errors.New("rate check returned status 500")}

	orch := newOrchestrator(st, fc)
	_, _, err := orch.CreateShipment(context.Background(), "ORD-4", shipping.CreateOptions{Carrier: "delhivery"})

	require.Error(t, err)
	assert.Equal(t, 0, fc.createCalls)
}

func TestCreateShipment_RefusesWhenWaybillAlreadySet(t *testing.T) {
	st := store.NewMemoryStore()
	order := testOrder("ORD-5")
	order.WaybillID = "AWB-OLD"
	st.PutOrder(order)

	fc := &fakeCarrier{name: "Delhivery"}

	orch := newOrchestrator(st, fc)
	_, _, err := orch.CreateShipment(context.Background(), "ORD-5", shipping.CreateOptions{Carrier: "delhivery", SkipRate: true})

	assert.ErrorIs(t, err, store.ErrAlreadyShipped)
	assert.Equal(t, 0, fc.createCalls)
}

func TestCreateShipment_UnknownCarrier(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutOrder(testOrder("ORD-6"))

	orch := newOrchestrator(st, &fakeCarrier{name: "Delhivery"})
	_, _, err := orch.CreateShipment(context.Background(), "ORD-6", shipping.CreateOptions{Carrier: "bluedart"})

	assert.ErrorIs(t, err, shipping.ErrUnknownCarrier)
}

func TestRecordManualShipment(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutOrder(testOrder("ORD-7"))

	orch := newOrchestrator(st, &fakeCarrier{name: "Delhivery"})
	order, events, err := orch.RecordManualShipment(context.Background(), "ORD-7", shipping.ManualShipmentInput{
		CourierName: "India Post",
		WaybillID:   "RP123456789IN",
		TrackingURL: "https://www.indiapost.gov.in/track/RP123456789IN",
	})
	require.NoError(t, err)

	assert.Equal(t, "RP123456789IN", order.WaybillID)
	assert.Equal(t, "India Post", order.CourierName)
	assert.Equal(t, models.OrderStatusShipped, order.Status)
	assert.Len(t, events, 2)
}

func TestRecordManualShipment_RequiresCourierAndWaybill(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutOrder(testOrder("ORD-8"))

	orch := newOrchestrator(st, &fakeCarrier{name: "Delhivery"})
	_, _, err := orch.RecordManualShipment(context.Background(), "ORD-8", shipping.ManualShipmentInput{CourierName: "India Post"})
	assert.Error(t, err)
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutOrder(testOrder("ORD-9"))

	orch := newOrchestrator(st, &fakeCarrier{
		name:   "Delhivery",
		result: &carriers.ShipmentResult{WaybillID: "AWB9", CourierName: "Delhivery"},
	})
	_, events, err := orch.CreateShipment(context.Background(), "ORD-9", shipping.CreateOptions{Carrier: "delhivery", SkipRate: true})
	require.NoError(t, err)

	shipping.NewDispatcher(st, zap.NewNop()).Dispatch(context.Background(), events)

	logs, err := st.GetStatusLog(context.Background(), "ORD-9")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Len(t, st.Notifications(), 1)
}
