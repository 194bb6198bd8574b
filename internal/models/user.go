package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents an access group in the system
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleUnderwriter  Role = "underwriter"
	RoleFleetManager Role = "fleet_manager"
	RoleViewer       Role = "viewer"
)

// Permissions granted to access groups.
const (
	PermViewReports       = "view_reports"
	PermExportReports     = "export_reports"
	PermViewVehicles      = "view_vehicles"
	PermManageVehicles    = "manage_vehicles"
	PermManageMaintenance = "manage_maintenance"
	PermResolveAlerts     = "resolve_alerts"
	PermRunCompliance     = "run_compliance"
	PermManageUsers       = "manage_users"
)

// Group is a named set of permissions provisioned at deployment time.
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        Role               `bson:"name" json:"name"`
	Permissions []string           `bson:"permissions" json:"permissions"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// User represents an operator account
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleUnderwriter, RoleFleetManager, RoleViewer:
		return true
	default:
		return false
	}
}

// DefaultGroups returns the access groups seeded by provisioning.
func DefaultGroups() []Group {
	return []Group{
		{Name: RoleAdmin, Permissions: []string{
			PermViewReports, PermExportReports, PermViewVehicles, PermManageVehicles,
			PermManageMaintenance, PermResolveAlerts, PermRunCompliance, PermManageUsers,
		}},
		{Name: RoleUnderwriter, Permissions: []string{
			PermViewReports, PermExportReports, PermViewVehicles, PermResolveAlerts,
		}},
		{Name: RoleFleetManager, Permissions: []string{
			PermViewReports, PermViewVehicles, PermManageVehicles, PermManageMaintenance, PermRunCompliance,
		}},
		{Name: RoleViewer, Permissions: []string{
			PermViewReports, PermViewVehicles,
		}},
	}
}

// HasPermission checks if a user's group grants a specific action
func (u *User) HasPermission(action string) bool {
	if !u.IsActive {
		return false
	}
	for _, g := range DefaultGroups() {
		if g.Name != u.Role {
			continue
		}
		for _, p := range g.Permissions {
			if p == action {
				return true
			}
		}
	}
	return false
}
