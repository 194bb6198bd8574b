package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-risk/internal/models"
)

const (
	defaultDemoVehicles = 25
	vehiclesPerPolicy   = 4
	vinLength           = 17
)

// vinAlphabet leaves out I, O and Q, which VINs never use.
const vinAlphabet = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

var (
	demoMakes = map[string][]string{
		"ICE": {"Ford", "Chevrolet", "Toyota", "Honda", "BMW"},
		"EV":  {"Tesla", "Nissan", "Chevrolet", "Ford", "Audi"},
	}
	demoModels = map[string][]string{
		"ICE": {"F-150", "Silverado", "Camry", "Civic", "X5"},
		"EV":  {"Model 3", "Leaf", "Bolt", "Mach-E", "e-tron"},
	}
	demoServices = []struct {
		name     string
		priority models.Priority
	}{
		{"oil_change", models.PriorityNormal},
		{"tire_rotation", models.PriorityNormal},
		{"air_filter", models.PriorityNormal},
		{"brake_inspection", models.PriorityCritical},
		{"steering_check", models.PriorityCritical},
		{"battery_check", models.PriorityNormal},
		{"recall_service", models.PriorityCritical},
	}
)

// demoWriter is the subset of the store used to seed a demo fleet.
type demoWriter interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	InsertSchedules(ctx context.Context, schedules []models.MaintenanceSchedule) error
	InsertConditionScores(ctx context.Context, scores []models.ConditionScore) error
	InsertAccidents(ctx context.Context, accidents []models.Accident) error
}

type demoOptions struct {
	vehicles int
	seed     int64
}

func newSeedDemoCmd(a *app) *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Populate the database with a demo fleet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.vehicles < 1 {
				return fmt.Errorf("--vehicles must be at least 1, got %d", opts.vehicles)
			}
			ctx := cmd.Context()
			store, closeDB, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			fleet := newDemoFleet(opts.seed, opts.vehicles, a.now().UTC())
			if err := fleet.write(ctx, store, a.logger()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d vehicles\n", len(fleet.vehicles))
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.vehicles, "vehicles", "n", defaultDemoVehicles, "Number of vehicles to create")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "Random seed; the same seed yields the same fleet")
	return cmd
}

// demoFleet is a generated fleet with its related records.
type demoFleet struct {
	vehicles   []models.Vehicle
	schedules  []models.MaintenanceSchedule
	conditions []models.ConditionScore
	accidents  []models.Accident
}

func newDemoFleet(seed int64, n int, now time.Time) *demoFleet {
	rng := rand.New(rand.NewSource(seed))
	f := &demoFleet{}
	seen := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		vin := randomVIN(rng)
		for seen[vin] {
			vin = randomVIN(rng)
		}
		seen[vin] = true

		vtype := []string{"ICE", "EV"}[rng.Intn(2)]
		year := 2015 + rng.Intn(10)
		v := models.Vehicle{
			VIN:          vin,
			PolicyNumber: fmt.Sprintf("POL-%05d", 10000+i/vehiclesPerPolicy),
			Make:         demoMakes[vtype][rng.Intn(len(demoMakes[vtype]))],
			Model:        demoModels[vtype][rng.Intn(len(demoModels[vtype]))],
			Year:         year,
			Mileage:      (now.Year() - year + 1) * (8000 + rng.Intn(12000)),
		}
		f.vehicles = append(f.vehicles, v)
		f.schedules = append(f.schedules, demoSchedules(rng, v, now)...)
		f.conditions = append(f.conditions, demoConditions(rng, vin, now)...)
		f.accidents = append(f.accidents, demoAccidents(rng, vin, now)...)
	}
	return f
}

// demoSchedules spreads items from six months back to three months ahead.
// Past items are usually completed; critical ones slightly less often.
func demoSchedules(rng *rand.Rand, v models.Vehicle, now time.Time) []models.MaintenanceSchedule {
	count := 3 + rng.Intn(5)
	out := make([]models.MaintenanceSchedule, 0, count)
	for i := 0; i < count; i++ {
		svc := demoServices[rng.Intn(len(demoServices))]
		scheduled := now.AddDate(0, 0, -180+rng.Intn(270))
		s := models.MaintenanceSchedule{
			VIN:           v.VIN,
			ServiceType:   svc.name,
			ScheduledDate: scheduled,
			DueMileage:    v.Mileage + rng.Intn(10000),
			Priority:      svc.priority,
			CreatedAt:     scheduled.AddDate(0, -1, 0),
		}
		completion := 0.85
		if s.IsCritical() {
			completion = 0.7
		}
		if scheduled.Before(now) && rng.Float64() < completion {
			done := scheduled.AddDate(0, 0, rng.Intn(5))
			if done.After(now) {
				done = now
			}
			s.IsCompleted = true
			s.CompletedDate = &done
		}
		out = append(out, s)
	}
	return out
}

// demoConditions leaves about one vehicle in eight uninspected.
func demoConditions(rng *rand.Rand, vin string, now time.Time) []models.ConditionScore {
	if rng.Intn(8) == 0 {
		return nil
	}
	count := 1 + rng.Intn(3)
	out := make([]models.ConditionScore, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, models.ConditionScore{
			VIN:          vin,
			OverallScore: float64(35 + rng.Intn(65)),
			InspectedAt:  now.AddDate(0, -(i*4 + rng.Intn(4)), -rng.Intn(28)),
			Inspector:    fmt.Sprintf("inspector-%02d", 1+rng.Intn(12)),
		})
	}
	return out
}

func demoAccidents(rng *rand.Rand, vin string, now time.Time) []models.Accident {
	var count int
	switch r := rng.Float64(); {
	case r < 0.6:
		count = 0
	case r < 0.85:
		count = 1
	case r < 0.95:
		count = 2
	default:
		count = 3 + rng.Intn(3)
	}
	out := make([]models.Accident, 0, count)
	for i := 0; i < count; i++ {
		date := now.AddDate(0, 0, -rng.Intn(730))
		out = append(out, models.Accident{
			VIN:          vin,
			AccidentDate: date,
			Description:  []string{"rear-end collision", "parking damage", "side swipe", "windshield damage"}[rng.Intn(4)],
			ClaimAmount:  float64(500 + rng.Intn(15000)),
			CreatedAt:    date,
		})
	}
	return out
}

func randomVIN(rng *rand.Rand) string {
	b := make([]byte, vinLength)
	for i := range b {
		b[i] = vinAlphabet[rng.Intn(len(vinAlphabet))]
	}
	return string(b)
}

func (f *demoFleet) write(ctx context.Context, w demoWriter, logger log.FieldLogger) error {
	for _, v := range f.vehicles {
		if err := w.InsertVehicle(ctx, v); err != nil {
			return fmt.Errorf("insert vehicle %s: %w", v.VIN, err)
		}
		logger.WithFields(log.Fields{
			"vin":           v.VIN,
			"policy_number": v.PolicyNumber,
			"make":          v.Make,
			"model":         v.Model,
		}).Debug("Created vehicle")
	}
	if err := w.InsertSchedules(ctx, f.schedules); err != nil {
		return fmt.Errorf("insert schedules: %w", err)
	}
	if err := w.InsertConditionScores(ctx, f.conditions); err != nil {
		return fmt.Errorf("insert condition scores: %w", err)
	}
	if err := w.InsertAccidents(ctx, f.accidents); err != nil {
		return fmt.Errorf("insert accidents: %w", err)
	}
	logger.WithFields(log.Fields{
		"vehicles":   len(f.vehicles),
		"schedules":  len(f.schedules),
		"conditions": len(f.conditions),
		"accidents":  len(f.accidents),
	}).Info("Demo fleet seeded")
	return nil
}
