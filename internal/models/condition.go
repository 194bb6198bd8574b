package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConditionScore is the outcome of one condition inspection.
type ConditionScore struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VIN          string             `json:"vin" bson:"vin"`
	OverallScore float64            `json:"overall_score" bson:"overall_score"` // 0-100
	InspectedAt  time.Time          `json:"inspected_at" bson:"inspected_at"`
	Inspector    string             `json:"inspector" bson:"inspector"`
	Notes        string             `json:"notes" bson:"notes"`
}

// Accident represents a reported accident involving a vehicle.
type Accident struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VIN          string             `json:"vin" bson:"vin"`
	AccidentDate time.Time          `json:"accident_date" bson:"accident_date"`
	Description  string             `json:"description" bson:"description"`
	ClaimAmount  float64            `json:"claim_amount" bson:"claim_amount"` // in USD
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
