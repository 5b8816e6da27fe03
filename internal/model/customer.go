package model

import "time"

type Customer struct {
	ID         string     `bson:"_id" json:"_id"`
	Name       string     `bson:"name" json:"name"`
	Email      string     `bson:"email" json:"email"` // unique
	Phone      string     `bson:"phone,omitempty" json:"phone,omitempty"`
	JoinedAt   time.Time  `bson:"joinedAt" json:"joinedAt"`
	TotalSpend float64    `bson:"totalSpend" json:"totalSpend"`
	VisitCount int        `bson:"visitCount" json:"visitCount"`
	LastActive *time.Time `bson:"lastActive,omitempty" json:"lastActive,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// CustomerRef is the projected shape attached to documents that reference a customer.
type CustomerRef struct {
	ID    string `bson:"_id" json:"_id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}
