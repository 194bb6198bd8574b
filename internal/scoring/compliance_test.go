package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-risk/internal/models"
)

var evalTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func schedule(daysAgo int, priority models.Priority, completed bool) models.MaintenanceSchedule {
	return models.MaintenanceSchedule{
		VIN:           "VIN1",
		ScheduledDate: evalTime.AddDate(0, 0, -daysAgo),
		Priority:      priority,
		IsCompleted:   completed,
	}
}

func TestCalculateCompliance_WorkedExample(t *testing.T) {
	var schedules []models.MaintenanceSchedule
	// 7 normal items, 6 done; 3 critical items, 2 done.
	for i := 0; i < 6; i++ {
		schedules = append(schedules, schedule(10+i, models.PriorityNormal, true))
	}
	schedules = append(schedules, schedule(3, models.PriorityNormal, false))
	schedules = append(schedules,
		schedule(20, models.PriorityCritical, true),
		schedule(30, models.PriorityCritical, true),
		schedule(2, models.PriorityCritical, false),
	)
	// Not yet due: excluded from both denominators.
	schedules = append(schedules,
		schedule(-5, models.PriorityCritical, false),
		schedule(-30, models.PriorityNormal, false),
	)

	c := CalculateCompliance(schedules, evalTime)

	assert.Equal(t, 10, c.Due)
	assert.Equal(t, 8, c.Completed)
	assert.Equal(t, 3, c.CriticalDue)
	assert.Equal(t, 2, c.CriticalCompleted)
	assert.Equal(t, 80.0, c.Overall)
	assert.Equal(t, 66.67, c.Critical)
}

func TestCalculateCompliance_NothingDueIsFullyCompliant(t *testing.T) {
	tests := []struct {
		name      string
		schedules []models.MaintenanceSchedule
	}{
		{"no schedules", nil},
		{"only future schedules", []models.MaintenanceSchedule{
			schedule(-1, models.PriorityCritical, false),
			schedule(-90, models.PriorityNormal, false),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CalculateCompliance(tt.schedules, evalTime)
			assert.Equal(t, FullCompliance, c.Overall)
			assert.Equal(t, FullCompliance, c.Critical)
			assert.Zero(t, c.Due)
		})
	}
}

func TestCalculateCompliance_NoCriticalDueIsFullyCriticalCompliant(t *testing.T) {
	c := CalculateCompliance([]models.MaintenanceSchedule{
		schedule(5, models.PriorityNormal, false),
		schedule(6, models.PriorityNormal, true),
	}, evalTime)

	assert.Equal(t, 50.0, c.Overall)
	assert.Equal(t, FullCompliance, c.Critical)
}

func TestCalculateCompliance_DueExactlyNowCounts(t *testing.T) {
	c := CalculateCompliance([]models.MaintenanceSchedule{schedule(0, models.PriorityNormal, false)}, evalTime)
	assert.Equal(t, 1, c.Due)
	assert.Equal(t, 0.0, c.Overall)
}

func TestCalculateCompliance_BoundedAndIdempotent(t *testing.T) {
	var schedules []models.MaintenanceSchedule
	for i := 0; i < 37; i++ {
		prio := models.PriorityNormal
		if i%4 == 0 {
			prio = models.PriorityCritical
		}
		schedules = append(schedules, schedule(i-5, prio, i%3 != 0))
	}

	first := CalculateCompliance(schedules, evalTime)
	second := CalculateCompliance(schedules, evalTime)
	require.Equal(t, first, second)

	for _, v := range []float64{first.Overall, first.Critical} {
		assert.GreaterOrEqual(t, v, MinScore)
		assert.LessOrEqual(t, v, MaxScore)
	}
}

func TestCompliance_Record(t *testing.T) {
	rec := Compliance{Overall: 80, Critical: 66.67}.Record("VIN1", evalTime)
	assert.Equal(t, "VIN1", rec.VIN)
	assert.Equal(t, 80.0, rec.OverallComplianceRate)
	assert.Equal(t, 66.67, rec.CriticalMaintenanceCompliance)
	assert.Equal(t, evalTime, rec.CalculatedAt)
}

func TestOverdueSchedules(t *testing.T) {
	overdue := OverdueSchedules([]models.MaintenanceSchedule{
		schedule(1, models.PriorityNormal, false),
		schedule(1, models.PriorityNormal, true),
		schedule(0, models.PriorityNormal, false),
		schedule(-1, models.PriorityCritical, false),
	}, evalTime)

	require.Len(t, overdue, 1)
	assert.Equal(t, evalTime.AddDate(0, 0, -1), overdue[0].ScheduledDate)
}

func TestRecentAccidentCount_WindowBoundary(t *testing.T) {
	accident := func(daysAgo int) models.Accident {
		return models.Accident{AccidentDate: evalTime.AddDate(0, 0, -daysAgo)}
	}

	tests := []struct {
		name      string
		accidents []models.Accident
		want      int
	}{
		{"none", nil, 0},
		{"today", []models.Accident{accident(0)}, 1},
		{"exactly 365 days old", []models.Accident{accident(365)}, 1},
		{"366 days old", []models.Accident{accident(366)}, 0},
		{"future dated", []models.Accident{accident(-2)}, 0},
		{"mixed", []models.Accident{accident(1), accident(200), accident(365), accident(366), accident(1000)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecentAccidentCount(tt.accidents, evalTime))
		})
	}
}

func TestRecentAccidentCount_IgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	early := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, RecentAccidentCount([]models.Accident{{AccidentDate: early}}, late))
}
