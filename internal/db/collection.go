package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/fleet-risk/internal/models"
)

var (
	ErrNilCollection   = errors.New("mongo collection is nil")
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	// ListVehicles returns up to limit vehicles ordered by policy number then
	// VIN, starting strictly after the given key.
	ListVehicles(ctx context.Context, after models.VehicleKey, limit int64) ([]models.Vehicle, error)
	UpdateVehicleScores(ctx context.Context, vin string, scores models.VehicleScores, now time.Time) error
}

// RecordsCollection defines read access to the per-vehicle related records.
type RecordsCollection interface {
	VehicleRecords(ctx context.Context, vin string) (*models.VehicleRecords, error)
}

// ComplianceCollection defines the interface for compliance upserts.
type ComplianceCollection interface {
	UpsertCompliance(ctx context.Context, c models.MaintenanceCompliance) error
	FindCompliance(ctx context.Context, vin string) (*models.MaintenanceCompliance, error)
}

// AlertCollection defines the interface for risk alert writes.
type AlertCollection interface {
	// OpenAlert creates an unresolved alert unless one of the same type is
	// already open for the vehicle.
	OpenAlert(ctx context.Context, vin string, alertType models.AlertType, message string, now time.Time) error
	// ResolveAlert marks every unresolved alert of the type resolved.
	ResolveAlert(ctx context.Context, vin string, alertType models.AlertType, now time.Time) error
}

// FleetStore is the persistence boundary of the scoring engine.
type FleetStore interface {
	VehicleCollection
	RecordsCollection
	ComplianceCollection
	AlertCollection
}
