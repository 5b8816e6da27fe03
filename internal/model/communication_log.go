package model

import "time"

type LogStatus string

const (
	StatusPending LogStatus = "PENDING"
	StatusSent    LogStatus = "SENT"
	StatusFailed  LogStatus = "FAILED"
)

func (s LogStatus) String() string {
	return string(s)
}

func (s LogStatus) Valid() bool {
	return s == StatusPending || s == StatusSent || s == StatusFailed
}

// CommunicationLog is one delivery-log row: a single (campaign, customer)
// message. Created PENDING at dispatch time; the vendor receipt moves it to
// SENT or FAILED. Receipt updates are last-write-wins.
type CommunicationLog struct {
	ID               string         `bson:"_id" json:"_id"`
	CampaignID       string         `bson:"campaignId" json:"campaignId"`
	SegmentID        string         `bson:"segmentId" json:"segmentId"`
	CustomerID       string         `bson:"customerId" json:"customerId"`
	Message          string         `bson:"message" json:"message"`
	Status           LogStatus      `bson:"status" json:"status"`
	SentAt           *time.Time     `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	DeliveryResponse map[string]any `bson:"deliveryResponse,omitempty" json:"deliveryResponse,omitempty"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// CampaignLogRow is one row of GET /campaign/logs/:campaignId.
type CampaignLogRow struct {
	ID           string    `json:"_id"`
	CustomerName string    `json:"customerName"`
	Message      string    `json:"message"`
	Status       LogStatus `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NamedRef resolves a referenced document to {_id,name}.
type NamedRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// CommunicationLogView is one row of GET /communicationLog/fetch with
// customer, segment and campaign references resolved.
type CommunicationLogView struct {
	ID               string         `json:"_id"`
	Campaign         *NamedRef      `json:"campaignId"`
	Segment          *NamedRef      `json:"segmentId"`
	Customer         *CustomerRef   `json:"customerId"`
	Message          string         `json:"message"`
	Status           LogStatus      `json:"status"`
	SentAt           *time.Time     `json:"sentAt,omitempty"`
	DeliveryResponse map[string]any `json:"deliveryResponse,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
