package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vastrika/storefront-backend-go/models"
)

const (
	ordersCollection        = "orders"
	statusLogsCollection    = "order_status_logs"
	notificationsCollection = "notifications"
)

// MongoStore implements Store on top of the managed document database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) GetOrderByWaybill(ctx context.Context, waybill string) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection(ordersCollection).FindOne(ctx, bson.M{"waybill_id": waybill}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) GetOrders(ctx context.Context, ids []string) ([]models.Order, error) {
	cursor, err := s.db.Collection(ordersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoStore) ApplyShipment(ctx context.Context, orderID string, upd ShipmentUpdate) error {
	set := bson.M{
		"waybill_id":              upd.WaybillID,
		"tracking_url":            upd.TrackingURL,
		"courier_name":            upd.CourierName,
		"status":                  upd.Status,
		"estimated_shipping_cost": upd.EstimatedShippingCost,
		"charged_weight":          upd.ChargedWeight,
		"updated_at":              time.Now(),
	}
	if upd.PricingCheckedAt != nil {
		set["pricing_checked_at"] = *upd.PricingCheckedAt
	}

	// The filter excludes orders that already carry a waybill, so a repeated
	// submission can never overwrite an allocated shipment.
	filter := bson.M{
		"_id": orderID,
		"$or": []bson.M{
			{"waybill_id": bson.M{"$exists": false}},
			{"waybill_id": ""},
		},
	}

	res, err := s.db.Collection(ordersCollection).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetOrder(ctx, orderID); err != nil {
			return err
		}
		return ErrAlreadyShipped
	}
	return nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, courier string, at time.Time) error {
	set := bson.M{
		"status":         status,
		"last_status_at": at,
		"updated_at":     time.Now(),
	}
	if courier != "" {
		set["courier_name"] = courier
	}

	res, err := s.db.Collection(ordersCollection).UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) AppendStatusLog(ctx context.Context, entry models.OrderStatusLogEntry) error {
	_, err := s.db.Collection(statusLogsCollection).InsertOne(ctx, entry)
	return err
}

func (s *MongoStore) InsertNotification(ctx context.Context, n models.Notification) error {
	_, err := s.db.Collection(notificationsCollection).InsertOne(ctx, n)
	return err
}

func (s *MongoStore) GetStatusLog(ctx context.Context, orderID string) ([]models.OrderStatusLogEntry, error) {
	cursor, err := s.db.Collection(statusLogsCollection).Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.OrderStatusLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.Collection(ordersCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
