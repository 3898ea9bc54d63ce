package models

import (
	"time"
)

// OrderStatus is the canonical lifecycle status of an order. Carrier webhooks
// may also write normalized free-text statuses (see shipping.NormalizeStatus),
// so the stored value is not a closed enum.
type OrderStatus string

const (
	OrderStatusPending               OrderStatus = "pending"
	OrderStatusProcessing            OrderStatus = "processing"
	OrderStatusShipped               OrderStatus = "shipped"
	OrderStatusDelivered             OrderStatus = "delivered"
	OrderStatusRTOInitiated          OrderStatus = "RTO Initiated"
	OrderStatusDeliveryFailed        OrderStatus = "Delivery Failed"
	OrderStatusCancelled             OrderStatus = "cancelled"
	OrderStatusCancellationRequested OrderStatus = "cancellation_requested"
)

type PaymentMethod string

const (
	PaymentPrepaid PaymentMethod = "prepaid"
	PaymentCOD     PaymentMethod = "cod"
)

type OrderItem struct {
	ProductID    string  `bson:"product_id" json:"productId"`
	SKU          string  `bson:"sku" json:"sku"`
	Name         string  `bson:"name" json:"name"`
	Price        float64 `bson:"price" json:"price"`
	MRP          float64 `bson:"mrp,omitempty" json:"mrp,omitempty"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	Size         string  `bson:"size,omitempty" json:"size,omitempty"`
	Color        string  `bson:"color,omitempty" json:"color,omitempty"`
	WeightGrams  float64 `bson:"weight_grams,omitempty" json:"weightGrams,omitempty"`
}

type Address struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
}

type Customer struct {
	FirstName string  `bson:"first_name" json:"firstName"`
	LastName  string  `bson:"last_name" json:"lastName"`
	Phone     string  `bson:"phone" json:"phone"`
	Email     string  `bson:"email" json:"email"`
	Address   Address `bson:"address" json:"address"`
}

type Order struct {
	ID            string        `bson:"_id" json:"id"`
	Status        OrderStatus   `bson:"status" json:"status"`
	Items         []OrderItem   `bson:"items" json:"items"`
	Customer      Customer      `bson:"customer" json:"customer"`
	Total         float64       `bson:"total" json:"total"`
	PaymentMethod PaymentMethod `bson:"payment_method" json:"paymentMethod"`

	// Shipment fields, written only by the shipping core. WaybillID is set at
	// most once; an order with a waybill must not be re-submitted to a carrier.
	WaybillID             string     `bson:"waybill_id,omitempty" json:"waybillId,omitempty"`
	TrackingURL           string     `bson:"tracking_url,omitempty" json:"trackingUrl,omitempty"`
	CourierName           string     `bson:"courier_name,omitempty" json:"courierName,omitempty"`
	EstimatedShippingCost float64    `bson:"estimated_shipping_cost,omitempty" json:"estimatedShippingCost,omitempty"`
	FinalShippingCost     float64    `bson:"final_shipping_cost,omitempty" json:"finalShippingCost,omitempty"`
	ChargedWeight         float64    `bson:"charged_weight,omitempty" json:"chargedWeight,omitempty"`
	PricingCheckedAt      *time.Time `bson:"pricing_checked_at,omitempty" json:"pricingCheckedAt,omitempty"`

	LastStatusAt time.Time `bson:"last_status_at,omitempty" json:"lastStatusAt,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// CustomerName joins the name parts for carrier-facing payloads.
func (o *Order) CustomerName() string {
	if o.Customer.LastName == "" {
		return o.Customer.FirstName
	}
	return o.Customer.FirstName + " " + o.Customer.LastName
}

// OrderStatusLogEntry is one line of the append-only audit timeline for an
// order. Entries are never updated or deleted.
type OrderStatusLogEntry struct {
	ID        string    `bson:"_id" json:"id"`
	OrderID   string    `bson:"order_id" json:"orderId"`
	Status    string    `bson:"status" json:"status"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Remarks   string    `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	OrderID   string    `bson:"order_id" json:"orderId"`
	Type      string    `bson:"type" json:"type"`
	Message   string    `bson:"message" json:"message"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
