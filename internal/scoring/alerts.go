package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/ukydev/fleet-risk/internal/models"
)

// AlertInput is the per-vehicle evidence the alert rules look at.
type AlertInput struct {
	Schedules       []models.MaintenanceSchedule
	RecentAccidents int
	LatestCondition *models.ConditionScore
}

// TriggeredAlert is an alert type whose rule currently holds.
type TriggeredAlert struct {
	Type    models.AlertType
	Message string
}

// EvaluateAlerts returns the alerts that should be open for a vehicle as of
// now, ordered as in models.AlertTypes.
func (p Policy) EvaluateAlerts(in AlertInput, now time.Time) []TriggeredAlert {
	var out []TriggeredAlert

	if n := p.overdueCriticalCount(in.Schedules, now); n > 0 {
		out = append(out, TriggeredAlert{
			Type:    models.AlertOverdueCritical,
			Message: fmt.Sprintf("%d critical maintenance item(s) overdue by more than %d day(s)", n, p.OverdueGraceDays),
		})
	}

	if in.RecentAccidents > p.AccidentThreshold {
		out = append(out, TriggeredAlert{
			Type:    models.AlertAccidentPattern,
			Message: fmt.Sprintf("%d accidents in the last %d days", in.RecentAccidents, AccidentWindowDays),
		})
	}

	switch {
	case in.LatestCondition == nil:
		if p.AlertOnMissingCondition {
			out = append(out, TriggeredAlert{
				Type:    models.AlertConditionDegraded,
				Message: "no condition inspection on record",
			})
		}
	case finite(in.LatestCondition.OverallScore) < p.ConditionFloor:
		out = append(out, TriggeredAlert{
			Type: models.AlertConditionDegraded,
			Message: fmt.Sprintf("condition score %.1f below floor %.1f",
				finite(in.LatestCondition.OverallScore), p.ConditionFloor),
		})
	}

	return out
}

func (p Policy) overdueCriticalCount(schedules []models.MaintenanceSchedule, now time.Time) int {
	grace := p.OverdueGrace()
	n := 0
	for _, s := range schedules {
		if s.IsCritical() && !s.IsCompleted && s.ScheduledDate.Add(grace).Before(now) {
			n++
		}
	}
	return n
}

// AlertPlan lists the writes needed to bring a vehicle's open alerts in line
// with the triggered set.
type AlertPlan struct {
	Create  []TriggeredAlert
	Resolve []models.RiskAlert
}

// Empty reports whether the plan requires no writes.
func (p AlertPlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Resolve) == 0
}

// ReconcileAlerts compares the triggered alerts with the currently open ones.
// Triggered types with no open alert are created; open alerts whose type is
// no longer triggered are resolved. The plan is sorted, so it does not depend
// on the order of either input, and applying it makes a second call return an
// empty plan.
func ReconcileAlerts(triggered []TriggeredAlert, open []models.RiskAlert) AlertPlan {
	want := make(map[models.AlertType]TriggeredAlert, len(triggered))
	for _, t := range triggered {
		if _, dup := want[t.Type]; !dup {
			want[t.Type] = t
		}
	}
	have := make(map[models.AlertType]bool, len(open))
	var plan AlertPlan
	for _, a := range open {
		if a.IsResolved {
			continue
		}
		have[a.AlertType] = true
		if _, ok := want[a.AlertType]; !ok {
			plan.Resolve = append(plan.Resolve, a)
		}
	}
	for typ, t := range want {
		if !have[typ] {
			plan.Create = append(plan.Create, t)
		}
	}

	sort.Slice(plan.Create, func(i, j int) bool {
		return plan.Create[i].Type < plan.Create[j].Type
	})
	sort.Slice(plan.Resolve, func(i, j int) bool {
		a, b := plan.Resolve[i], plan.Resolve[j]
		if a.AlertType != b.AlertType {
			return a.AlertType < b.AlertType
		}
		return a.ID.Hex() < b.ID.Hex()
	})
	return plan
}
