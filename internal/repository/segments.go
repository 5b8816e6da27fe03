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

type SegmentsRepository interface {
	Insert(ctx context.Context, s *model.Segment) error
	FindByID(ctx context.Context, id string) (*model.Segment, error)
	FindAll(ctx context.Context) ([]model.Segment, error)
}

type SegmentsRepositoryImpl struct {
	coll *mongo.Collection
}

func NewSegmentsRepository(database *mongo.Database) *SegmentsRepositoryImpl {
	return &SegmentsRepositoryImpl{coll: database.Collection("segments")}
}

var _ SegmentsRepository = (*SegmentsRepositoryImpl)(nil)

func (r *SegmentsRepositoryImpl) Insert(ctx context.Context, s *model.Segment) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	// Snapshot semantics: customerIds is written once here and never updated.
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

func (r *SegmentsRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Segment, error) {
	var s model.Segment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SegmentsRepositoryImpl) FindAll(ctx context.Context) ([]model.Segment, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var out []model.Segment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
