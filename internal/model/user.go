package model

import "time"

type User struct {
	ID        string    `bson:"_id" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"` // unique
	Password  string    `bson:"password,omitempty" json:"-"`
	GoogleID  string    `bson:"googleId,omitempty" json:"googleId,omitempty"` // absent for local accounts
	Avatar    string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserRef is the projected shape used when populating createdBy references.
type UserRef struct {
	ID    string `bson:"_id" json:"_id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}
