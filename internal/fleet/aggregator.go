package fleet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-risk/internal/db"
	"github.com/ukydev/fleet-risk/internal/metrics"
	"github.com/ukydev/fleet-risk/internal/models"
	"github.com/ukydev/fleet-risk/internal/report"
	"golang.org/x/sync/errgroup"
)

// Defaults for fleet walks.
const (
	DefaultPageSize = 500
	DefaultWorkers  = 8
)

// Operation names used in logs and metrics.
const (
	OpReport           = "report"
	OpUpdateCompliance = "update_compliance"
)

// Failure is a vehicle that could not be evaluated. It is left out of the
// result and the walk carries on.
type Failure struct {
	VIN          string
	PolicyNumber string
	Err          error
}

func (f Failure) Error() string {
	return fmt.Sprintf("vehicle %s (policy %s): %v", f.VIN, f.PolicyNumber, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// AggregatorConfig tunes a fleet walk.
type AggregatorConfig struct {
	PageSize int
	Workers  int
	Metrics  *metrics.Recorder
	Logger   logrus.FieldLogger
}

// Aggregator walks the fleet page by page and evaluates each page with a
// bounded pool of workers.
type Aggregator struct {
	vehicles  db.VehicleCollection
	evaluator *Evaluator
	pageSize  int
	workers   int
	metrics   *metrics.Recorder
	log       logrus.FieldLogger
}

// NewAggregator creates an Aggregator. Non-positive sizes fall back to the
// defaults.
func NewAggregator(vehicles db.VehicleCollection, evaluator *Evaluator, cfg AggregatorConfig) *Aggregator {
	a := &Aggregator{
		vehicles:  vehicles,
		evaluator: evaluator,
		pageSize:  cfg.PageSize,
		workers:   cfg.Workers,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
	}
	if a.pageSize <= 0 {
		a.pageSize = DefaultPageSize
	}
	if a.workers <= 0 {
		a.workers = DefaultWorkers
	}
	if a.log == nil {
		a.log = logrus.StandardLogger()
	}
	return a
}

// Build evaluates every vehicle and returns the report with records ordered
// by policy number, then VIN. Vehicles that fail are reported as failures
// and left out of the report. The error is non-nil only when the fleet
// itself could not be read.
func (a *Aggregator) Build(ctx context.Context, now time.Time, mode Mode) (*report.Report, []Failure, error) {
	assessments, failures, err := walk(ctx, a, OpReport, func(ctx context.Context, v models.Vehicle) (*Assessment, error) {
		return a.evaluator.Evaluate(ctx, v, now, mode)
	})
	if err != nil {
		return nil, failures, err
	}

	records := make([]report.Record, 0, len(assessments))
	for _, as := range assessments {
		records = append(records, as.Record())
	}
	sort.SliceStable(records, func(i, j int) bool {
		return models.VehicleKey{PolicyNumber: records[i].PolicyNumber, VIN: records[i].VIN}.
			Less(models.VehicleKey{PolicyNumber: records[j].PolicyNumber, VIN: records[j].VIN})
	})

	return &report.Report{GeneratedAt: now, Vehicles: records}, failures, nil
}

// UpdateCompliance recalculates and upserts compliance for every vehicle and
// returns how many were updated.
func (a *Aggregator) UpdateCompliance(ctx context.Context, now time.Time) (int, []Failure, error) {
	updated, failures, err := walk(ctx, a, OpUpdateCompliance, func(ctx context.Context, v models.Vehicle) (struct{}, error) {
		_, err := a.evaluator.UpdateCompliance(ctx, v, now)
		return struct{}{}, err
	})
	return len(updated), failures, err
}

type outcome[T any] struct {
	vehicle models.Vehicle
	value   T
	err     error
}

// walk pages through the fleet in key order and applies fn to every
// vehicle. Results come back in the order the store listed them.
func walk[T any](ctx context.Context, a *Aggregator, op string, fn func(context.Context, models.Vehicle) (T, error)) ([]T, []Failure, error) {
	var (
		results  []T
		failures []Failure
		after    models.VehicleKey
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, failures, err
		}

		page, err := a.vehicles.ListVehicles(ctx, after, int64(a.pageSize))
		if err != nil {
			return nil, failures, fmt.Errorf("list vehicles after %q/%q: %w", after.PolicyNumber, after.VIN, err)
		}
		if len(page) == 0 {
			break
		}

		outcomes := make([]outcome[T], len(page))
		var g errgroup.Group
		g.SetLimit(a.workers)
		for i, v := range page {
			i, v := i, v
			g.Go(func() error {
				start := time.Now()
				value, err := fn(ctx, v)
				if a.metrics != nil {
					a.metrics.ObserveVehicle(op, time.Since(start), err)
				}
				outcomes[i] = outcome[T]{vehicle: v, value: value, err: err}
				return nil
			})
		}
		_ = g.Wait()

		for _, o := range outcomes {
			if o.err != nil {
				a.log.WithFields(logrus.Fields{
					"operation":     op,
					"vin":           o.vehicle.VIN,
					"policy_number": o.vehicle.PolicyNumber,
				}).WithError(o.err).Error("Vehicle evaluation failed")
				failures = append(failures, Failure{VIN: o.vehicle.VIN, PolicyNumber: o.vehicle.PolicyNumber, Err: o.err})
				continue
			}
			results = append(results, o.value)
		}

		last := page[len(page)-1].Key()
		if !after.IsZero() && !after.Less(last) {
			return nil, failures, fmt.Errorf("list vehicles after %q/%q: page did not advance", after.PolicyNumber, after.VIN)
		}
		after = last

		a.log.WithFields(logrus.Fields{
			"operation": op,
			"page_size": len(page),
			"processed": len(results),
			"failed":    len(failures),
		}).Debug("Processed vehicle page")

		if len(page) < a.pageSize {
			break
		}
	}

	return results, failures, nil
}
