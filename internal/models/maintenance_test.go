package models

import (
	"testing"
	"time"
)

func TestMaintenanceSchedule_DueAndOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		schedule    MaintenanceSchedule
		wantDue     bool
		wantOverdue bool
	}{
		{"future schedule", MaintenanceSchedule{ScheduledDate: now.Add(time.Hour)}, false, false},
		{"scheduled exactly now", MaintenanceSchedule{ScheduledDate: now}, true, false},
		{"past and open", MaintenanceSchedule{ScheduledDate: now.AddDate(0, 0, -1)}, true, true},
		{"past and completed", MaintenanceSchedule{ScheduledDate: now.AddDate(0, 0, -1), IsCompleted: true}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schedule.IsDue(now); got != tt.wantDue {
				t.Errorf("IsDue() = %v, want %v", got, tt.wantDue)
			}
			if got := tt.schedule.IsOverdue(now); got != tt.wantOverdue {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.wantOverdue)
			}
		})
	}
}

func TestVehicleKey_Less(t *testing.T) {
	a := VehicleKey{PolicyNumber: "POL-1", VIN: "Z"}
	b := VehicleKey{PolicyNumber: "POL-2", VIN: "A"}
	c := VehicleKey{PolicyNumber: "POL-2", VIN: "B"}

	if !a.Less(b) {
		t.Error("policy number should order before VIN")
	}
	if !b.Less(c) {
		t.Error("VIN should break ties within a policy")
	}
	if c.Less(b) || b.Less(b) {
		t.Error("Less must be strict")
	}
	if !(VehicleKey{}).IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestIsValidAlertType(t *testing.T) {
	for _, at := range AlertTypes {
		if !IsValidAlertType(at) {
			t.Errorf("IsValidAlertType(%s) = false", at)
		}
	}
	if IsValidAlertType("speeding") {
		t.Error("unknown alert type accepted")
	}
}
