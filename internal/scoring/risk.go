package scoring

// RiskInput holds the per-vehicle figures combined into the risk score.
type RiskInput struct {
	CriticalCompliance float64
	ActiveAlerts       int
	RecentAccidents    int
	OverdueMaintenance int
}

// RiskScore combines the critical-compliance deficit and the alert, accident
// and overdue counts into a score in [0, 100]. Each factor is normalised to
// [0, 1] and saturates, so the score never decreases as a deficit or count
// grows:
//
//	score = (
//	    (100 - critical)/100              * w.CriticalDeficit +
//	    min(alerts/AlertSaturation, 1)    * w.Alerts          +
//	    min(accidents/AccidentSat..., 1)  * w.Accidents       +
//	    min(overdue/OverdueSaturation, 1) * w.Overdue
//	) * 100
func (p Policy) RiskScore(in RiskInput) float64 {
	deficit := clamp01((MaxScore - clampScore(in.CriticalCompliance)) / MaxScore)
	alerts := saturate(in.ActiveAlerts, p.AlertSaturation)
	accidents := saturate(in.RecentAccidents, p.AccidentSaturation)
	overdue := saturate(in.OverdueMaintenance, p.OverdueSaturation)

	score := (deficit*p.Weights.CriticalDeficit +
		alerts*p.Weights.Alerts +
		accidents*p.Weights.Accidents +
		overdue*p.Weights.Overdue) * MaxScore

	return clampScore(round2(score))
}

// HealthInput holds the per-vehicle figures behind the health index.
// Condition is nil when the vehicle has never been inspected.
type HealthInput struct {
	Condition         *float64
	OverallCompliance float64
	ActiveAlerts      int
}

// HealthIndex starts from the latest condition score, or NeutralCondition
// when there is none, and discounts it by the overall compliance deficit and
// the number of active alerts. The result is clamped to [0, 100].
func (p Policy) HealthIndex(in HealthInput) float64 {
	base := p.NeutralCondition
	if in.Condition != nil {
		base = clampScore(*in.Condition)
	}
	deficit := MaxScore - clampScore(in.OverallCompliance)
	alerts := in.ActiveAlerts
	if alerts < 0 {
		alerts = 0
	}
	health := base - p.ComplianceDiscount*deficit - p.AlertPenalty*float64(alerts)
	return clampScore(round2(health))
}

func saturate(n int, at float64) float64 {
	if n <= 0 || at <= 0 {
		return 0
	}
	return clamp01(float64(n) / at)
}
