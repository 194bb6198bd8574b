package scoring

import (
	"time"

	"github.com/ukydev/fleet-risk/internal/models"
)

// Compliance is the outcome of one compliance calculation.
type Compliance struct {
	Overall  float64
	Critical float64

	Due               int
	Completed         int
	CriticalDue       int
	CriticalCompleted int
}

// CalculateCompliance computes the maintenance-compliance rates of one
// vehicle as of now. Only schedules that have come due count; if nothing is
// due the vehicle is fully compliant.
func CalculateCompliance(schedules []models.MaintenanceSchedule, now time.Time) Compliance {
	var c Compliance
	for _, s := range schedules {
		if !s.IsDue(now) {
			continue
		}
		c.Due++
		if s.IsCompleted {
			c.Completed++
		}
		if s.IsCritical() {
			c.CriticalDue++
			if s.IsCompleted {
				c.CriticalCompleted++
			}
		}
	}
	c.Overall = complianceRate(c.Completed, c.Due)
	c.Critical = complianceRate(c.CriticalCompleted, c.CriticalDue)
	return c
}

func complianceRate(completed, due int) float64 {
	if due == 0 {
		return FullCompliance
	}
	return clampScore(round2(100 * float64(completed) / float64(due)))
}

// Record shapes c as the persisted compliance record for vin.
func (c Compliance) Record(vin string, now time.Time) models.MaintenanceCompliance {
	return models.MaintenanceCompliance{
		VIN:                           vin,
		OverallComplianceRate:         c.Overall,
		CriticalMaintenanceCompliance: c.Critical,
		CalculatedAt:                  now,
	}
}

// OverdueSchedules returns the schedules whose date has passed without
// completion, in input order.
func OverdueSchedules(schedules []models.MaintenanceSchedule, now time.Time) []models.MaintenanceSchedule {
	var out []models.MaintenanceSchedule
	for _, s := range schedules {
		if s.IsOverdue(now) {
			out = append(out, s)
		}
	}
	return out
}

// RecentAccidentCount counts accidents dated within the trailing
// AccidentWindowDays calendar days of now, both ends inclusive. Accidents
// dated after now are ignored.
func RecentAccidentCount(accidents []models.Accident, now time.Time) int {
	n := 0
	for _, a := range accidents {
		age := daysBetween(a.AccidentDate, now)
		if age >= 0 && age <= AccidentWindowDays {
			n++
		}
	}
	return n
}

// daysBetween returns the number of UTC calendar days from from to to.
func daysBetween(from, to time.Time) int {
	return int(utcDay(to).Sub(utcDay(from)).Hours() / 24)
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
