package repository

import (
	"context"
	"time"

	"github.com/xenocrm/crm-gateway/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommunicationLogsRepository interface {
	Insert(ctx context.Context, l *model.CommunicationLog) error
	// UpdateReceipt overwrites status/sentAt/deliveryResponse. Returns false
	// when logID matches nothing. Last-write-wins: a second receipt for the
	// same log simply overwrites the first.
	UpdateReceipt(ctx context.Context, logID string, status model.LogStatus, vendorMessage string, sentAt time.Time) (bool, error)
	FindByCampaign(ctx context.Context, campaignID string) ([]model.CommunicationLog, error)
	FindAll(ctx context.Context) ([]model.CommunicationLog, error)
	StatsByCampaign(ctx context.Context) (map[string]model.CampaignStats, error)
}

type CommunicationLogsRepositoryImpl struct {
	coll *mongo.Collection
}

func NewCommunicationLogsRepository(database *mongo.Database) *CommunicationLogsRepositoryImpl {
	return &CommunicationLogsRepositoryImpl{coll: database.Collection("communication_logs")}
}

var _ CommunicationLogsRepository = (*CommunicationLogsRepositoryImpl)(nil)

func (r *CommunicationLogsRepositoryImpl) Insert(ctx context.Context, l *model.CommunicationLog) error {
	now := time.Now()
	if l.Status == "" {
		l.Status = model.StatusPending
	}
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, l)
	return err
}

func (r *CommunicationLogsRepositoryImpl) UpdateReceipt(ctx context.Context, logID string, status model.LogStatus, vendorMessage string, sentAt time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": logID},
		bson.M{"$set": bson.M{
			"status":           status,
			"sentAt":           sentAt,
			"deliveryResponse": bson.M{"vendorMessage": vendorMessage},
			"updatedAt":        time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *CommunicationLogsRepositoryImpl) FindByCampaign(ctx context.Context, campaignID string) ([]model.CommunicationLog, error) {
	cur, err := r.coll.Find(ctx, bson.M{"campaignId": campaignID})
	if err != nil {
		return nil, err
	}

	var out []model.CommunicationLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommunicationLogsRepositoryImpl) FindAll(ctx context.Context) ([]model.CommunicationLog, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var out []model.CommunicationLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StatsByCampaign groups every log by (campaignId, status) server-side and
// folds the counts per campaign, so history never pages full log documents.
func (r *CommunicationLogsRepositoryImpl) StatsByCampaign(ctx context.Context) (map[string]model.CampaignStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "campaignId", Value: "$campaignId"},
				{Key: "status", Value: "$status"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID struct {
			CampaignID string          `bson:"campaignId"`
			Status     model.LogStatus `bson:"status"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := make(map[string]model.CampaignStats, len(rows))
	for _, row := range rows {
		s := stats[row.ID.CampaignID]
		s.Total += row.Count
		switch row.ID.Status {
		case model.StatusSent:
			s.Sent += row.Count
		case model.StatusFailed:
			s.Failed += row.Count
		case model.StatusPending:
			s.Pending += row.Count
		}
		stats[row.ID.CampaignID] = s
	}
	return stats, nil
}
