package model

import "time"

// Segment is a named, frozen snapshot of customer ids matching a rule at
// creation time. CustomerIDs is never re-evaluated after Save.
type Segment struct {
	ID          string    `bson:"_id" json:"_id"`
	Name        string    `bson:"name" json:"name"`
	Rules       []string  `bson:"rules" json:"rules"` // original rule text, verbatim
	CreatedBy   string    `bson:"createdBy" json:"createdBy"`
	CustomerIDs []string  `bson:"customerIds" json:"customerIds"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SegmentView is a Segment with createdBy resolved to {_id,name,email}.
type SegmentView struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Rules       []string  `json:"rules"`
	CreatedBy   *UserRef  `json:"createdBy"`
	CustomerIDs []string  `json:"customerIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RuleDescription returns the first rule entry, used as the human-readable
// description fed to message personalization.
func (s *Segment) RuleDescription() string {
	if len(s.Rules) > 0 && s.Rules[0] != "" {
		return s.Rules[0]
	}
	return "No rule description available"
}
