package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleet-risk/internal/models"
)

func TestConnectMongo_BadURI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := ConnectMongo(ctx, "mongodb://bad:uri")
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestMongoStore_NilCollections(t *testing.T) {
	store := &MongoStore{}
	ctx := context.Background()
	now := time.Now()

	_, err := store.ListVehicles(ctx, models.VehicleKey{}, 10)
	assert.ErrorIs(t, err, ErrNilCollection)
	_, err = store.VehicleRecords(ctx, "VIN1")
	assert.ErrorIs(t, err, ErrNilCollection)
	assert.ErrorIs(t, store.UpsertCompliance(ctx, models.MaintenanceCompliance{VIN: "VIN1"}), ErrNilCollection)
	assert.ErrorIs(t, store.OpenAlert(ctx, "VIN1", models.AlertAccidentPattern, "", now), ErrNilCollection)
	assert.ErrorIs(t, store.ResolveAlert(ctx, "VIN1", models.AlertAccidentPattern, now), ErrNilCollection)
	assert.ErrorIs(t, store.UpdateVehicleScores(ctx, "VIN1", models.VehicleScores{}, now), ErrNilCollection)
	assert.ErrorIs(t, store.EnsureIndexes(ctx), ErrNilCollection)
	assert.ErrorIs(t, store.InsertAccidents(ctx, []models.Accident{{}}), ErrNilCollection)
}

// testDatabase returns a scratch database, skipping when MongoDB is not configured.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "uri" {
		t.Skip("MONGO_URI not set or invalid, skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := ConnectMongo(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	database := client.Database("test_fleet_risk")
	require.NoError(t, database.Drop(context.Background()))
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return database
}

func TestMongoStore_UpsertCompliance_Integration(t *testing.T) {
	database := testDatabase(t)
	store := NewMongoStore(database)
	ctx := context.Background()
	require.NoError(t, store.EnsureIndexes(ctx))

	first := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertCompliance(ctx, models.MaintenanceCompliance{
		VIN: "VIN1", OverallComplianceRate: 50, CriticalMaintenanceCompliance: 25, CalculatedAt: first,
	}))
	require.NoError(t, store.UpsertCompliance(ctx, models.MaintenanceCompliance{
		VIN: "VIN1", OverallComplianceRate: 80, CriticalMaintenanceCompliance: 66.67, CalculatedAt: first.Add(time.Hour),
	}))

	count, err := store.Compliance.CountDocuments(ctx, bson.M{"vin": "VIN1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.FindCompliance(ctx, "VIN1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 80.0, got.OverallComplianceRate)
	assert.Equal(t, 66.67, got.CriticalMaintenanceCompliance)
	assert.True(t, got.CreatedAt.Equal(first))

	missing, err := store.FindCompliance(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMongoStore_Alerts_Integration(t *testing.T) {
	database := testDatabase(t)
	store := NewMongoStore(database)
	ctx := context.Background()
	require.NoError(t, store.EnsureIndexes(ctx))
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.OpenAlert(ctx, "VIN1", models.AlertAccidentPattern, "crashes", now))
	}
	open, err := store.Alerts.CountDocuments(ctx, bson.M{"vin": "VIN1", "is_resolved": false})
	require.NoError(t, err)
	assert.Equal(t, int64(1), open)

	require.NoError(t, store.ResolveAlert(ctx, "VIN1", models.AlertAccidentPattern, now))
	require.NoError(t, store.OpenAlert(ctx, "VIN1", models.AlertAccidentPattern, "again", now))

	total, err := store.Alerts.CountDocuments(ctx, bson.M{"vin": "VIN1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "a resolved alert does not block a new one")
}

func TestMongoStore_ListVehiclesAndRecords_Integration(t *testing.T) {
	database := testDatabase(t)
	store := NewMongoStore(database)
	ctx := context.Background()
	require.NoError(t, store.EnsureIndexes(ctx))

	for _, v := range []models.Vehicle{
		{VIN: "B", PolicyNumber: "POL-2"},
		{VIN: "A", PolicyNumber: "POL-2"},
		{VIN: "Z", PolicyNumber: "POL-1"},
	} {
		require.NoError(t, store.InsertVehicle(ctx, v))
	}

	page1, err := store.ListVehicles(ctx, models.VehicleKey{}, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "Z", page1[0].VIN)
	assert.Equal(t, "A", page1[1].VIN)

	page2, err := store.ListVehicles(ctx, page1[1].Key(), 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "B", page2[0].VIN)

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertConditionScores(ctx, []models.ConditionScore{
		{VIN: "A", OverallScore: 40, InspectedAt: old},
		{VIN: "A", OverallScore: 88, InspectedAt: recent},
	}))
	require.NoError(t, store.InsertSchedules(ctx, []models.MaintenanceSchedule{{VIN: "A", ScheduledDate: old}}))

	recs, err := store.VehicleRecords(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, recs.LatestCondition)
	assert.Equal(t, 88.0, recs.LatestCondition.OverallScore)
	assert.Len(t, recs.Schedules, 1)
	assert.Empty(t, recs.Accidents)

	none, err := store.VehicleRecords(ctx, "B")
	require.NoError(t, err)
	assert.Nil(t, none.LatestCondition)

	require.NoError(t, store.UpdateVehicleScores(ctx, "A", models.VehicleScores{RiskScore: 12.5, HealthIndex: 77}, recent))
	assert.ErrorIs(t, store.UpdateVehicleScores(ctx, "NOPE", models.VehicleScores{}, recent), ErrVehicleNotFound)
}
