package repository

import (
	"context"
	"errors"
	"time"

	"github.com/xenocrm/crm-gateway/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrdersRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	Delete(ctx context.Context, id string) (*model.Order, error)
	UpsertByOrderID(ctx context.Context, o *model.Order) (bool, error)
}

type OrdersRepositoryImpl struct {
	coll *mongo.Collection
}

func NewOrdersRepository(database *mongo.Database) *OrdersRepositoryImpl {
	return &OrdersRepositoryImpl{coll: database.Collection("orders")}
}

var _ OrdersRepository = (*OrdersRepositoryImpl)(nil)

func (r *OrdersRepositoryImpl) Insert(ctx context.Context, o *model.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, o)
	return err
}

func (r *OrdersRepositoryImpl) FindAll(ctx context.Context) ([]model.Order, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var out []model.Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrdersRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrdersRepositoryImpl) Delete(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpsertByOrderID deduplicates replayed order events on the external orderId.
// orderId is NOT unique at the storage layer for API-created orders; only the
// ingestion path relies on it. Returns true when the event created a new
// document, so the caller knows whether to bump the customer's totalSpend.
func (r *OrdersRepositoryImpl) UpsertByOrderID(ctx context.Context, o *model.Order) (bool, error) {
	if o.OrderID == "" {
		return false, errors.New("orderId required for upsert")
	}
	if o.ID == "" {
		return false, errors.New("order id required for upsert")
	}

	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"orderId": o.OrderID},
		bson.M{
			"$set": bson.M{
				"customerId": o.CustomerID,
				"amount":     o.Amount,
				"items":      o.Items,
			},
			"$setOnInsert": bson.M{
				"_id":       o.ID,
				"orderId":   o.OrderID,
				"createdAt": createdAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
