package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority is the urgency of a scheduled maintenance item.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityCritical Priority = "critical"
)

// MaintenanceSchedule represents a planned maintenance obligation for a vehicle.
type MaintenanceSchedule struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VIN           string             `json:"vin" bson:"vin"`
	ServiceType   string             `json:"service_type" bson:"service_type"` // "oil_change", "tire_rotation", "brake_service", "battery_service", "inspection"
	ScheduledDate time.Time          `json:"scheduled_date" bson:"scheduled_date"`
	DueMileage    int                `json:"due_mileage" bson:"due_mileage"`
	Priority      Priority           `json:"priority_level" bson:"priority_level"`
	IsCompleted   bool               `json:"is_completed" bson:"is_completed"`
	CompletedDate *time.Time         `json:"completed_date,omitempty" bson:"completed_date,omitempty"`
	Notes         string             `json:"notes" bson:"notes"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// IsCritical reports whether the schedule is flagged safety-critical.
func (m MaintenanceSchedule) IsCritical() bool {
	return m.Priority == PriorityCritical
}

// IsDue reports whether the obligation has come due as of now.
func (m MaintenanceSchedule) IsDue(now time.Time) bool {
	return !m.ScheduledDate.After(now)
}

// IsOverdue reports whether the schedule date has passed without completion.
func (m MaintenanceSchedule) IsOverdue(now time.Time) bool {
	return m.ScheduledDate.Before(now) && !m.IsCompleted
}

// MaintenanceCompliance is the single compliance record kept per vehicle.
// Rates are percentages in [0, 100].
type MaintenanceCompliance struct {
	ID                            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VIN                           string             `json:"vin" bson:"vin"`
	OverallComplianceRate         float64            `json:"overall_compliance_rate" bson:"overall_compliance_rate"`
	CriticalMaintenanceCompliance float64            `json:"critical_maintenance_compliance" bson:"critical_maintenance_compliance"`
	CalculatedAt                  time.Time          `json:"calculated_at" bson:"calculated_at"`
	CreatedAt                     time.Time          `json:"created_at" bson:"created_at"`
}
