// Package fleet orchestrates per-vehicle scoring against the store and
// walks the whole fleet to build reports.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-risk/internal/db"
	"github.com/ukydev/fleet-risk/internal/metrics"
	"github.com/ukydev/fleet-risk/internal/models"
	"github.com/ukydev/fleet-risk/internal/notify"
	"github.com/ukydev/fleet-risk/internal/report"
	"github.com/ukydev/fleet-risk/internal/scoring"
)

// Mode selects whether an evaluation writes its results back.
type Mode int

const (
	// ReadOnly computes figures without touching the store.
	ReadOnly Mode = iota
	// Persist upserts compliance, reconciles alerts and stores the
	// derived vehicle scores.
	Persist
)

// Assessment is the full scoring outcome for one vehicle.
type Assessment struct {
	Vehicle            models.Vehicle
	Compliance         scoring.Compliance
	OverdueMaintenance int
	RecentAccidents    int
	ConditionScore     *float64
	Triggered          []scoring.TriggeredAlert
	Plan               scoring.AlertPlan
	RiskScore          float64
	HealthIndex        float64
	LastInspection     *time.Time
}

// ActiveAlerts is the number of alerts open for the vehicle once the
// alert plan is applied.
func (a *Assessment) ActiveAlerts() int {
	return len(a.Triggered)
}

// Record shapes the assessment as a report row.
func (a *Assessment) Record() report.Record {
	return report.Record{
		PolicyNumber:       a.Vehicle.PolicyNumber,
		VIN:                a.Vehicle.VIN,
		Make:               a.Vehicle.Make,
		Model:              a.Vehicle.Model,
		Year:               a.Vehicle.Year,
		Mileage:            a.Vehicle.Mileage,
		RiskScore:          a.RiskScore,
		HealthIndex:        a.HealthIndex,
		ComplianceRate:     a.Compliance.Overall,
		CriticalCompliance: a.Compliance.Critical,
		OverdueMaintenance: a.OverdueMaintenance,
		RecentAccidents:    a.RecentAccidents,
		ConditionScore:     a.ConditionScore,
		ActiveAlerts:       a.ActiveAlerts(),
		LastInspection:     a.LastInspection,
	}
}

// EvaluatorOptions carries the optional collaborators of an Evaluator.
type EvaluatorOptions struct {
	Notifier notify.Notifier
	Metrics  *metrics.Recorder
	Logger   logrus.FieldLogger
	RunID    string
}

// Evaluator scores single vehicles. It is safe for concurrent use; work on
// the same VIN is serialized.
type Evaluator struct {
	store    db.FleetStore
	policy   scoring.Policy
	notifier notify.Notifier
	metrics  *metrics.Recorder
	log      logrus.FieldLogger
	runID    string
	locks    vinLocks
}

// NewEvaluator creates an Evaluator. Missing options fall back to a no-op
// notifier and the standard logrus logger.
func NewEvaluator(store db.FleetStore, policy scoring.Policy, opts EvaluatorOptions) *Evaluator {
	e := &Evaluator{
		store:    store,
		policy:   policy,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		runID:    opts.RunID,
	}
	if e.notifier == nil {
		e.notifier = notify.Nop{}
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	return e
}

// Evaluate computes compliance, alerts, risk score and health index for one
// vehicle as of now. In Persist mode the compliance record is upserted, open
// alerts are reconciled with the triggered set and the derived vehicle
// fields are stored.
func (e *Evaluator) Evaluate(ctx context.Context, vehicle models.Vehicle, now time.Time, mode Mode) (*Assessment, error) {
	unlock := e.locks.lock(vehicle.VIN)
	defer unlock()

	records, err := e.store.VehicleRecords(ctx, vehicle.VIN)
	if err != nil {
		return nil, fmt.Errorf("load records for %s: %w", vehicle.VIN, err)
	}

	a := &Assessment{
		Vehicle:            vehicle,
		Compliance:         scoring.CalculateCompliance(records.Schedules, now),
		OverdueMaintenance: len(scoring.OverdueSchedules(records.Schedules, now)),
		RecentAccidents:    scoring.RecentAccidentCount(records.Accidents, now),
		LastInspection:     vehicle.LastInspectionDate,
	}
	if c := records.LatestCondition; c != nil {
		score := c.OverallScore
		a.ConditionScore = &score
		if !c.InspectedAt.IsZero() {
			inspected := c.InspectedAt
			a.LastInspection = &inspected
		}
	}

	if mode == Persist {
		if err := e.store.UpsertCompliance(ctx, a.Compliance.Record(vehicle.VIN, now)); err != nil {
			return nil, fmt.Errorf("upsert compliance for %s: %w", vehicle.VIN, err)
		}
	}

	a.Triggered = e.policy.EvaluateAlerts(scoring.AlertInput{
		Schedules:       records.Schedules,
		RecentAccidents: a.RecentAccidents,
		LatestCondition: records.LatestCondition,
	}, now)
	a.Plan = scoring.ReconcileAlerts(a.Triggered, records.OpenAlerts)

	if mode == Persist {
		if err := e.applyAlertPlan(ctx, vehicle, a.Plan, now); err != nil {
			return nil, err
		}
	}

	a.RiskScore = e.policy.RiskScore(scoring.RiskInput{
		CriticalCompliance: a.Compliance.Critical,
		ActiveAlerts:       a.ActiveAlerts(),
		RecentAccidents:    a.RecentAccidents,
		OverdueMaintenance: a.OverdueMaintenance,
	})
	a.HealthIndex = e.policy.HealthIndex(scoring.HealthInput{
		Condition:         a.ConditionScore,
		OverallCompliance: a.Compliance.Overall,
		ActiveAlerts:      a.ActiveAlerts(),
	})

	if mode == Persist {
		scores := models.VehicleScores{
			RiskScore:          a.RiskScore,
			HealthIndex:        a.HealthIndex,
			LastInspectionDate: a.LastInspection,
		}
		if err := e.store.UpdateVehicleScores(ctx, vehicle.VIN, scores, now); err != nil {
			return nil, fmt.Errorf("update scores for %s: %w", vehicle.VIN, err)
		}
	}

	if e.metrics != nil {
		e.metrics.ObserveRiskScore(a.RiskScore)
	}
	return a, nil
}

// UpdateCompliance recalculates and upserts the compliance record of one
// vehicle.
func (e *Evaluator) UpdateCompliance(ctx context.Context, vehicle models.Vehicle, now time.Time) (scoring.Compliance, error) {
	unlock := e.locks.lock(vehicle.VIN)
	defer unlock()

	records, err := e.store.VehicleRecords(ctx, vehicle.VIN)
	if err != nil {
		return scoring.Compliance{}, fmt.Errorf("load records for %s: %w", vehicle.VIN, err)
	}
	c := scoring.CalculateCompliance(records.Schedules, now)
	if err := e.store.UpsertCompliance(ctx, c.Record(vehicle.VIN, now)); err != nil {
		return scoring.Compliance{}, fmt.Errorf("upsert compliance for %s: %w", vehicle.VIN, err)
	}
	return c, nil
}

func (e *Evaluator) applyAlertPlan(ctx context.Context, vehicle models.Vehicle, plan scoring.AlertPlan, now time.Time) error {
	for _, t := range plan.Create {
		if err := e.store.OpenAlert(ctx, vehicle.VIN, t.Type, t.Message, now); err != nil {
			return fmt.Errorf("open %s alert for %s: %w", t.Type, vehicle.VIN, err)
		}
		e.announce(ctx, vehicle, t.Type, notify.ActionOpened, t.Message, now)
	}
	for _, open := range plan.Resolve {
		if err := e.store.ResolveAlert(ctx, vehicle.VIN, open.AlertType, now); err != nil {
			return fmt.Errorf("resolve %s alert for %s: %w", open.AlertType, vehicle.VIN, err)
		}
		e.announce(ctx, vehicle, open.AlertType, notify.ActionResolved, open.Message, now)
	}
	return nil
}

// announce publishes an alert transition. Delivery failures are only logged.
func (e *Evaluator) announce(ctx context.Context, vehicle models.Vehicle, alertType models.AlertType, action, message string, now time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveAlert(string(alertType), action)
	}
	ev := notify.AlertEvent{
		RunID:        e.runID,
		VIN:          vehicle.VIN,
		PolicyNumber: vehicle.PolicyNumber,
		AlertType:    alertType,
		Action:       action,
		Message:      message,
		At:           now,
	}
	if err := e.notifier.Notify(ctx, ev); err != nil {
		e.log.WithFields(logrus.Fields{
			"vin":        vehicle.VIN,
			"alert_type": alertType,
			"action":     action,
		}).WithError(err).Warn("Failed to publish alert event")
	}
}
