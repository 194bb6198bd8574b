// Package scoring holds the pure per-vehicle rules of the engine.
//
// compliance.go derives the overall and critical maintenance-compliance
// rates from a vehicle's schedule. alerts.go decides which risk alerts
// should be open and how to reconcile them with the alerts already open.
// risk.go combines compliance, alerts, accidents and overdue work into a
// bounded risk score and health index.
//
// Every function takes the evaluation time explicitly; nothing here reads
// the clock or touches storage, so identical inputs give identical outputs.
//
// Policy carries the tunable weights and thresholds. DefaultPolicy documents
// the two defaulting choices that change outcomes: a vehicle with nothing due
// is 100% compliant, and a vehicle with no inspection on record gets the
// neutral condition score rather than zero.
package scoring
