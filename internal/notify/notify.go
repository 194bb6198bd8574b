// Package notify publishes risk alert transitions to downstream consumers.
package notify

import (
	"context"
	"time"

	"github.com/ukydev/fleet-risk/internal/models"
)

// Alert transition actions.
const (
	ActionOpened   = "opened"
	ActionResolved = "resolved"
)

// AlertEvent describes one alert being opened or resolved for a vehicle.
type AlertEvent struct {
	RunID        string           `json:"run_id"`
	VIN          string           `json:"vin"`
	PolicyNumber string           `json:"policy_number"`
	AlertType    models.AlertType `json:"alert_type"`
	Action       string           `json:"action"`
	Message      string           `json:"message,omitempty"`
	At           time.Time        `json:"at"`
}

// Notifier delivers alert events.
type Notifier interface {
	Notify(ctx context.Context, ev AlertEvent) error
	Close()
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Notify(context.Context, AlertEvent) error { return nil }
func (Nop) Close()                                   {}
