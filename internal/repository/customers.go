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

type CustomersRepository interface {
	Insert(ctx context.Context, c *model.Customer) error
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error)
	Delete(ctx context.Context, id string) (*model.Customer, error)
	CountMatching(ctx context.Context, filter bson.M) (int64, error)
	IDsMatching(ctx context.Context, filter bson.M) ([]string, error)
	IncTotalSpend(ctx context.Context, id string, delta float64) error
	UpsertByEmail(ctx context.Context, c *model.Customer) error
}

type CustomersRepositoryImpl struct {
	coll *mongo.Collection
}

func NewCustomersRepository(database *mongo.Database) *CustomersRepositoryImpl {
	return &CustomersRepositoryImpl{coll: database.Collection("customers")}
}

var _ CustomersRepository = (*CustomersRepositoryImpl)(nil)

func (r *CustomersRepositoryImpl) Insert(ctx context.Context, c *model.Customer) error {
	now := time.Now()
	if c.JoinedAt.IsZero() {
		c.JoinedAt = now
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *CustomersRepositoryImpl) FindAll(ctx context.Context) ([]model.Customer, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var out []model.Customer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CustomersRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomersRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var out []model.Customer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CustomersRepositoryImpl) Delete(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomersRepositoryImpl) CountMatching(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return r.coll.CountDocuments(ctx, filter)
}

// IDsMatching projects matched documents to their _id only; segment snapshots
// never need the full customer.
func (r *CustomersRepositoryImpl) IDsMatching(ctx context.Context, filter bson.M) ([]string, error) {
	if filter == nil {
		filter = bson.M{}
	}

	cur, err := r.coll.Find(ctx, filter,
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// IncTotalSpend applies an atomic $inc; never read-modify-write, so concurrent
// order creation/deletion against one customer stays consistent.
func (r *CustomersRepositoryImpl) IncTotalSpend(ctx context.Context, id string, delta float64) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"totalSpend": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	return err
}

// UpsertByEmail inserts or refreshes a customer keyed by email. Used by the
// Kafka ingestion worker to deduplicate replayed events.
func (r *CustomersRepositoryImpl) UpsertByEmail(ctx context.Context, c *model.Customer) error {
	now := time.Now()
	joinedAt := c.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = now
	}

	set := bson.M{
		"name":      c.Name,
		"updatedAt": now,
	}
	if c.Phone != "" {
		set["phone"] = c.Phone
	}
	if c.TotalSpend != 0 {
		set["totalSpend"] = c.TotalSpend
	}
	if c.VisitCount != 0 {
		set["visitCount"] = c.VisitCount
	}
	if c.LastActive != nil {
		set["lastActive"] = *c.LastActive
	}

	id := c.ID
	if id == "" {
		return errors.New("customer id required for upsert")
	}

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": c.Email},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"_id":       id,
				"email":     c.Email,
				"joinedAt":  joinedAt,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
