// Package report shapes per-vehicle results into report records and
// serializes them as CSV or JSON.
package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Placeholders for values a vehicle does not have.
const (
	NoConditionScore = "none"
	NeverInspected   = "never"
)

// DateLayout is the layout of last_inspection values.
const DateLayout = "2006-01-02"

// Record is one row of the fleet report.
type Record struct {
	PolicyNumber       string
	VIN                string
	Make               string
	Model              string
	Year               int
	Mileage            int
	RiskScore          float64
	HealthIndex        float64
	ComplianceRate     float64
	CriticalCompliance float64
	OverdueMaintenance int
	RecentAccidents    int
	ConditionScore     *float64
	ActiveAlerts       int
	LastInspection     *time.Time
}

// Field is one column of the report.
type Field struct {
	Name  string
	value func(r *Record) interface{}
}

// Fields lists the report columns in output order.
var Fields = []Field{
	{"policy_number", func(r *Record) interface{} { return r.PolicyNumber }},
	{"vin", func(r *Record) interface{} { return r.VIN }},
	{"make", func(r *Record) interface{} { return r.Make }},
	{"model", func(r *Record) interface{} { return r.Model }},
	{"year", func(r *Record) interface{} { return r.Year }},
	{"mileage", func(r *Record) interface{} { return r.Mileage }},
	{"risk_score", func(r *Record) interface{} { return r.RiskScore }},
	{"health_index", func(r *Record) interface{} { return r.HealthIndex }},
	{"compliance_rate", func(r *Record) interface{} { return r.ComplianceRate }},
	{"critical_compliance", func(r *Record) interface{} { return r.CriticalCompliance }},
	{"overdue_maintenance", func(r *Record) interface{} { return r.OverdueMaintenance }},
	{"recent_accidents", func(r *Record) interface{} { return r.RecentAccidents }},
	{"condition_score", func(r *Record) interface{} {
		if r.ConditionScore == nil {
			return NoConditionScore
		}
		return *r.ConditionScore
	}},
	{"active_alerts", func(r *Record) interface{} { return r.ActiveAlerts }},
	{"last_inspection", func(r *Record) interface{} {
		if r.LastInspection == nil {
			return NeverInspected
		}
		return r.LastInspection.UTC().Format(DateLayout)
	}},
}

// Header returns the column names in output order.
func Header() []string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.Name
	}
	return names
}

// FieldByName looks up a column by name.
func FieldByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns the typed value of the field for r. Non-finite numbers are
// reported as zero.
func (f Field) Value(r *Record) interface{} {
	v := f.value(r)
	if x, ok := v.(float64); ok {
		return finiteOrZero(x)
	}
	return v
}

// Format returns the value of the field for r as text.
func (f Field) Format(r *Record) string {
	switch v := f.Value(r).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return FormatScore(v)
	default:
		return ""
	}
}

// FormatScore renders a score with two decimals; NaN and ±Inf render as 0.00.
func FormatScore(v float64) string {
	return strconv.FormatFloat(finiteOrZero(v), 'f', 2, 64)
}

// ParseScore parses a score rendered by FormatScore. Malformed input yields 0.
func ParseScore(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(v)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// MarshalJSON encodes the record as an object whose keys follow Fields.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value(&r))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
