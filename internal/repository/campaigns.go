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

type CampaignsRepository interface {
	Insert(ctx context.Context, c *model.Campaign) error
	FindAll(ctx context.Context) ([]model.Campaign, error)
	FindByID(ctx context.Context, id string) (*model.Campaign, error)
}

type CampaignsRepositoryImpl struct {
	coll *mongo.Collection
}

func NewCampaignsRepository(database *mongo.Database) *CampaignsRepositoryImpl {
	return &CampaignsRepositoryImpl{coll: database.Collection("campaigns")}
}

var _ CampaignsRepository = (*CampaignsRepositoryImpl)(nil)

func (r *CampaignsRepositoryImpl) Insert(ctx context.Context, c *model.Campaign) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *CampaignsRepositoryImpl) FindAll(ctx context.Context) ([]model.Campaign, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var out []model.Campaign
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CampaignsRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
