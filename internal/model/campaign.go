package model

import "time"

type Campaign struct {
	ID              string    `bson:"_id" json:"_id"`
	Name            string    `bson:"name" json:"name"`
	MessageTemplate string    `bson:"messageTemplate" json:"messageTemplate"`
	SegmentID       string    `bson:"segmentId" json:"segmentId"`
	CreatedBy       string    `bson:"createdBy" json:"createdBy"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CampaignStats aggregates a campaign's communication logs by status.
type CampaignStats struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

// CampaignSummary is one row of the campaign history listing.
type CampaignSummary struct {
	ID              string        `json:"_id"`
	Name            string        `json:"name"`
	MessageTemplate string        `json:"messageTemplate"`
	CreatedBy       *UserRef      `json:"createdBy"`
	CreatedAt       time.Time     `json:"createdAt"`
	SegmentName     string        `json:"segmentName"`
	Stats           CampaignStats `json:"stats"`
}
