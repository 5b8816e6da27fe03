package model

import "time"

type Order struct {
	ID         string    `bson:"_id" json:"_id"`
	CustomerID string    `bson:"customerId" json:"customerId"`
	OrderID    string    `bson:"orderId,omitempty" json:"orderId,omitempty"` // external id, not unique
	Amount     float64   `bson:"amount" json:"amount"`
	Items      []string  `bson:"items,omitempty" json:"items,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// OrderView is an Order with its customer reference resolved to {_id,name}.
type OrderView struct {
	ID        string       `json:"_id"`
	Customer  *CustomerRef `json:"customerId"`
	OrderID   string       `json:"orderId,omitempty"`
	Amount    float64      `json:"amount"`
	Items     []string     `json:"items,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
