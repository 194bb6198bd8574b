package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Weight constants for the risk score formula.
// They must sum to 1.0.
const (
	DefaultWeightCriticalDeficit = 0.35
	DefaultWeightAlerts          = 0.20
	DefaultWeightAccidents       = 0.30
	DefaultWeightOverdue         = 0.15
)

// Score range shared by compliance rates, condition scores, risk and health.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// FullCompliance is reported when nothing has come due yet.
const FullCompliance = MaxScore

// AccidentWindowDays is the trailing window, inclusive, for recent accidents.
const AccidentWindowDays = 365

// Weights are the relative contributions of each risk factor.
type Weights struct {
	CriticalDeficit float64 `yaml:"critical_deficit"`
	Alerts          float64 `yaml:"alerts"`
	Accidents       float64 `yaml:"accidents"`
	Overdue         float64 `yaml:"overdue"`
}

func (w Weights) sum() float64 {
	return w.CriticalDeficit + w.Alerts + w.Accidents + w.Overdue
}

// Policy holds the tunable thresholds and weights used by the scorer and
// the alert rules.
type Policy struct {
	Weights Weights `yaml:"weights"`

	// Counts at or above the saturation value contribute the full weight.
	AlertSaturation    float64 `yaml:"alert_saturation"`
	AccidentSaturation float64 `yaml:"accident_saturation"`
	OverdueSaturation  float64 `yaml:"overdue_saturation"`

	// NeutralCondition stands in for the condition score of a vehicle that
	// has never been inspected.
	NeutralCondition float64 `yaml:"neutral_condition"`

	// ComplianceDiscount is the health points lost per point of overall
	// compliance deficit.
	ComplianceDiscount float64 `yaml:"compliance_discount"`

	// AlertPenalty is the health points lost per active alert.
	AlertPenalty float64 `yaml:"alert_penalty"`

	// OverdueGraceDays is how long critical maintenance may stay overdue
	// before an overdue_critical alert is raised.
	OverdueGraceDays int `yaml:"overdue_grace_days"`

	// AccidentThreshold is the recent accident count that must be exceeded
	// to raise accident_pattern.
	AccidentThreshold int `yaml:"accident_threshold"`

	// ConditionFloor is the score below which condition_degraded is raised.
	ConditionFloor float64 `yaml:"condition_floor"`

	// AlertOnMissingCondition raises condition_degraded for vehicles with no
	// inspection on record.
	AlertOnMissingCondition bool `yaml:"alert_on_missing_condition"`
}

// DefaultPolicy returns the policy used when no overrides are configured.
func DefaultPolicy() Policy {
	return Policy{
		Weights: Weights{
			CriticalDeficit: DefaultWeightCriticalDeficit,
			Alerts:          DefaultWeightAlerts,
			Accidents:       DefaultWeightAccidents,
			Overdue:         DefaultWeightOverdue,
		},
		AlertSaturation:         3,
		AccidentSaturation:      3,
		OverdueSaturation:       5,
		NeutralCondition:        (MinScore + MaxScore) / 2,
		ComplianceDiscount:      0.3,
		AlertPenalty:            5,
		OverdueGraceDays:        7,
		AccidentThreshold:       2,
		ConditionFloor:          60,
		AlertOnMissingCondition: true,
	}
}

// OverdueGrace returns the grace period as a duration.
func (p Policy) OverdueGrace() time.Duration {
	return time.Duration(p.OverdueGraceDays) * 24 * time.Hour
}

// Validate reports the first inconsistency in p.
func (p Policy) Validate() error {
	w := p.Weights
	for name, v := range map[string]float64{
		"critical_deficit": w.CriticalDeficit,
		"alerts":           w.Alerts,
		"accidents":        w.Accidents,
		"overdue":          w.Overdue,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, v)
		}
	}
	if math.Abs(w.sum()-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.4f", w.sum())
	}
	if p.AlertSaturation <= 0 || p.AccidentSaturation <= 0 || p.OverdueSaturation <= 0 {
		return errors.New("saturation values must be positive")
	}
	if p.NeutralCondition < MinScore || p.NeutralCondition > MaxScore {
		return fmt.Errorf("neutral_condition must be within [%.0f, %.0f]", MinScore, MaxScore)
	}
	if p.ConditionFloor < MinScore || p.ConditionFloor > MaxScore {
		return fmt.Errorf("condition_floor must be within [%.0f, %.0f]", MinScore, MaxScore)
	}
	if p.ComplianceDiscount < 0 || p.AlertPenalty < 0 {
		return errors.New("health discounts must be non-negative")
	}
	if p.OverdueGraceDays < 0 || p.AccidentThreshold < 0 {
		return errors.New("grace days and accident threshold must be non-negative")
	}
	return nil
}

// finite maps NaN and ±Inf to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clampScore restricts v to [MinScore, MaxScore].
func clampScore(v float64) float64 {
	v = finite(v)
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// clamp01 restricts v to the range [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
