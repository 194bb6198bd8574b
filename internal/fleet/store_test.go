package fleet

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/fleet-risk/internal/db"
	"github.com/ukydev/fleet-risk/internal/models"
	"github.com/ukydev/fleet-risk/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBroken = errors.New("records unavailable")

// memStore is an in-memory db.FleetStore.
type memStore struct {
	mu         sync.Mutex
	vehicles   map[string]models.Vehicle
	schedules  map[string][]models.MaintenanceSchedule
	conditions map[string][]models.ConditionScore
	accidents  map[string][]models.Accident
	alerts     []models.RiskAlert
	compliance map[string]models.MaintenanceCompliance
	scores     map[string]models.VehicleScores

	broken    map[string]bool
	listErr   error
	listCalls int
	upserts   int
	writes    int
}

var _ db.FleetStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		vehicles:   map[string]models.Vehicle{},
		schedules:  map[string][]models.MaintenanceSchedule{},
		conditions: map[string][]models.ConditionScore{},
		accidents:  map[string][]models.Accident{},
		compliance: map[string]models.MaintenanceCompliance{},
		scores:     map[string]models.VehicleScores{},
		broken:     map[string]bool{},
	}
}

func (s *memStore) addVehicle(policy, vin string) models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := models.Vehicle{VIN: vin, PolicyNumber: policy, Make: "Ford", Model: "Transit", Year: 2021, Mileage: 42000}
	s.vehicles[vin] = v
	return v
}

func (s *memStore) ListVehicles(_ context.Context, after models.VehicleKey, limit int64) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var all []models.Vehicle
	for _, v := range s.vehicles {
		if after.IsZero() || after.Less(v.Key()) {
			all = append(all, v)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key().Less(all[j].Key()) })
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) UpdateVehicleScores(_ context.Context, vin string, scores models.VehicleScores, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[vin]; !ok {
		return db.ErrVehicleNotFound
	}
	s.scores[vin] = scores
	s.writes++
	return nil
}

func (s *memStore) VehicleRecords(_ context.Context, vin string) (*models.VehicleRecords, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken[vin] {
		return nil, errBroken
	}
	rec := &models.VehicleRecords{
		VIN:       vin,
		Schedules: append([]models.MaintenanceSchedule(nil), s.schedules[vin]...),
		Accidents: append([]models.Accident(nil), s.accidents[vin]...),
	}
	for i, c := range s.conditions[vin] {
		if rec.LatestCondition == nil || c.InspectedAt.After(rec.LatestCondition.InspectedAt) {
			rec.LatestCondition = &s.conditions[vin][i]
		}
	}
	for _, a := range s.alerts {
		if a.VIN == vin && !a.IsResolved {
			rec.OpenAlerts = append(rec.OpenAlerts, a)
		}
	}
	return rec, nil
}

func (s *memStore) UpsertCompliance(_ context.Context, c models.MaintenanceCompliance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.compliance[c.VIN]; ok {
		c.CreatedAt = prev.CreatedAt
	} else {
		c.CreatedAt = c.CalculatedAt
	}
	s.compliance[c.VIN] = c
	s.upserts++
	return nil
}

func (s *memStore) FindCompliance(_ context.Context, vin string) (*models.MaintenanceCompliance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.compliance[vin]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memStore) OpenAlert(_ context.Context, vin string, alertType models.AlertType, message string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.VIN == vin && a.AlertType == alertType && !a.IsResolved {
			return nil
		}
	}
	s.alerts = append(s.alerts, models.RiskAlert{
		ID:        primitive.NewObjectID(),
		VIN:       vin,
		AlertType: alertType,
		Message:   message,
		CreatedAt: now,
	})
	s.writes++
	return nil
}

func (s *memStore) ResolveAlert(_ context.Context, vin string, alertType models.AlertType, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		a := &s.alerts[i]
		if a.VIN == vin && a.AlertType == alertType && !a.IsResolved {
			a.IsResolved = true
			resolved := now
			a.ResolvedAt = &resolved
			s.writes++
		}
	}
	return nil
}

func (s *memStore) openAlerts(vin string) []models.AlertType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AlertType
	for _, a := range s.alerts {
		if a.VIN == vin && !a.IsResolved {
			out = append(out, a.AlertType)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MockNotifier is a mock implementation of notify.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, ev notify.AlertEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockNotifier) Close() {
	m.Called()
}
