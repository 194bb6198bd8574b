package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents an insured fleet vehicle.
type Vehicle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VIN                string             `bson:"vin" json:"vin"`
	PolicyNumber       string             `bson:"policy_number" json:"policy_number"`
	Make               string             `bson:"make" json:"make"`
	Model              string             `bson:"model" json:"model"`
	Year               int                `bson:"year" json:"year"`
	Mileage            int                `bson:"mileage" json:"mileage"` // odometer, in kilometers
	RiskScore          float64            `bson:"risk_score" json:"risk_score"`
	HealthIndex        float64            `bson:"health_index" json:"health_index"`
	LastInspectionDate *time.Time         `bson:"last_inspection_date,omitempty" json:"last_inspection_date,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// Key returns the position of the vehicle in report order.
func (v Vehicle) Key() VehicleKey {
	return VehicleKey{PolicyNumber: v.PolicyNumber, VIN: v.VIN}
}

// VehicleKey orders vehicles by policy number, then VIN.
type VehicleKey struct {
	PolicyNumber string
	VIN          string
}

// Less reports whether k sorts before other.
func (k VehicleKey) Less(other VehicleKey) bool {
	if k.PolicyNumber != other.PolicyNumber {
		return k.PolicyNumber < other.PolicyNumber
	}
	return k.VIN < other.VIN
}

// IsZero reports whether k is the start-of-fleet key.
func (k VehicleKey) IsZero() bool {
	return k.PolicyNumber == "" && k.VIN == ""
}

// VehicleScores holds the derived fields written back to a vehicle.
type VehicleScores struct {
	RiskScore          float64
	HealthIndex        float64
	LastInspectionDate *time.Time
}
