package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertType identifies the rule that raised a risk alert.
type AlertType string

const (
	AlertOverdueCritical   AlertType = "overdue_critical"
	AlertAccidentPattern   AlertType = "accident_pattern"
	AlertConditionDegraded AlertType = "condition_degraded"
)

// AlertTypes lists every known alert type in a fixed order.
var AlertTypes = []AlertType{
	AlertOverdueCritical,
	AlertAccidentPattern,
	AlertConditionDegraded,
}

// IsValidAlertType checks if an alert type is known
func IsValidAlertType(t AlertType) bool {
	switch t {
	case AlertOverdueCritical, AlertAccidentPattern, AlertConditionDegraded:
		return true
	default:
		return false
	}
}

// RiskAlert is a risk signal raised against a vehicle. A vehicle has at most
// one unresolved alert per type.
type RiskAlert struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VIN        string             `json:"vin" bson:"vin"`
	AlertType  AlertType          `json:"alert_type" bson:"alert_type"`
	Message    string             `json:"message" bson:"message"`
	IsResolved bool               `json:"is_resolved" bson:"is_resolved"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	ResolvedAt *time.Time         `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
