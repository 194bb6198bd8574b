package models

// VehicleRecords groups the related collections of one vehicle, addressed by
// VIN rather than through back-references on the vehicle.
type VehicleRecords struct {
	VIN             string
	Schedules       []MaintenanceSchedule
	LatestCondition *ConditionScore
	Accidents       []Accident
	OpenAlerts      []RiskAlert
}
