package store

import (
	"context"
	"sync"
	"time"

	"github.com/vastrika/storefront-backend-go/models"
)

// MemoryStore is a mutex-guarded in-memory Store used by tests and local
// development runs without a database.
type MemoryStore struct {
	mu            sync.Mutex
	orders        map[string]models.Order
	statusLogs    []models.OrderStatusLogEntry
	notifications []models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]models.Order)}
}

// PutOrder seeds an order. Test helper; checkout owns order creation.
func (s *MemoryStore) PutOrder(order models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *MemoryStore) GetOrderByWaybill(_ context.Context, waybill string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.WaybillID == waybill && waybill != "" {
			o := order
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetOrders(_ context.Context, ids []string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, id := range ids {
		if order, ok := s.orders[id]; ok {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *MemoryStore) ApplyShipment(_ context.Context, orderID string, upd ShipmentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if order.WaybillID != "" {
		return ErrAlreadyShipped
	}
	order.WaybillID = upd.WaybillID
	order.TrackingURL = upd.TrackingURL
	order.CourierName = upd.CourierName
	order.Status = upd.Status
	order.EstimatedShippingCost = upd.EstimatedShippingCost
	order.ChargedWeight = upd.ChargedWeight
	order.PricingCheckedAt = upd.PricingCheckedAt
	order.UpdatedAt = time.Now()
	s.orders[orderID] = order
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, orderID string, status models.OrderStatus, courier string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	order.LastStatusAt = at
	if courier != "" {
		order.CourierName = courier
	}
	order.UpdatedAt = time.Now()
	s.orders[orderID] = order
	return nil
}

func (s *MemoryStore) AppendStatusLog(_ context.Context, entry models.OrderStatusLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusLogs = append(s.statusLogs, entry)
	return nil
}

func (s *MemoryStore) InsertNotification(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *MemoryStore) GetStatusLog(_ context.Context, orderID string) ([]models.OrderStatusLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.OrderStatusLogEntry
	for _, e := range s.statusLogs {
		if e.OrderID == orderID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Notifications returns a copy of the recorded notifications. Test helper.
func (s *MemoryStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *MemoryStore) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}
