package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleet-risk/internal/config"
	"github.com/ukydev/fleet-risk/internal/db"
	"github.com/ukydev/fleet-risk/internal/fleet"
	"github.com/ukydev/fleet-risk/internal/metrics"
	"github.com/ukydev/fleet-risk/internal/notify"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfg   *config.Config
	runID string
	now   func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "fleetrisk",
		Short: "Fleet maintenance-compliance and risk scoring",
		Long: `fleetrisk evaluates every insured vehicle for maintenance compliance,
raises and resolves risk alerts, and writes fleet-wide risk reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ConfigureLogger(log.StandardLogger()); err != nil {
				return err
			}
			a.cfg = cfg
			a.runID = uuid.NewString()
			return nil
		},
	}

	root.AddCommand(
		newReportCmd(a),
		newUpdateComplianceCmd(a),
		newProvisionCmd(a),
		newSeedDemoCmd(a),
	)
	return root
}

// logger returns the base entry for the current run.
func (a *app) logger() *log.Entry {
	return log.WithField("run_id", a.runID)
}

// connect opens the configured database. The returned func disconnects.
func (a *app) connect(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := db.ConnectMongo(ctx, a.cfg.MongoURI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	a.logger().WithField("database", a.cfg.MongoDB).Debug("Connected to MongoDB")
	return client.Database(a.cfg.MongoDB), func() {
		if err := client.Disconnect(context.Background()); err != nil {
			a.logger().WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}, nil
}

// openStore connects and makes sure the fleet indexes exist.
func (a *app) openStore(ctx context.Context) (*db.MongoStore, func(), error) {
	database, closeDB, err := a.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	store := db.NewMongoStore(database)
	if err := store.EnsureIndexes(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return store, closeDB, nil
}

// notifier returns an MQTT notifier when a broker is configured and a no-op
// one otherwise.
func (a *app) notifier() (notify.Notifier, error) {
	if a.cfg.MQTTBroker == "" {
		return notify.Nop{}, nil
	}
	n, err := notify.NewMQTTNotifier(a.cfg.MQTTBroker, a.cfg.MQTTClientID+"-"+a.runID[:8], a.cfg.MQTTTopic)
	if err != nil {
		return nil, err
	}
	a.logger().WithFields(log.Fields{
		"broker": a.cfg.MQTTBroker,
		"topic":  a.cfg.MQTTTopic,
	}).Info("Publishing alert events over MQTT")
	return n, nil
}

func (a *app) aggregator(store db.FleetStore, n notify.Notifier, rec *metrics.Recorder) *fleet.Aggregator {
	logger := a.logger()
	evaluator := fleet.NewEvaluator(store, a.cfg.Policy, fleet.EvaluatorOptions{
		Notifier: n,
		Metrics:  rec,
		Logger:   logger,
		RunID:    a.runID,
	})
	return fleet.NewAggregator(store, evaluator, fleet.AggregatorConfig{
		PageSize: a.cfg.PageSize,
		Workers:  a.cfg.Workers,
		Metrics:  rec,
		Logger:   logger,
	})
}

// pushMetrics pushes rec when a Pushgateway is configured. Failures are
// logged only.
func (a *app) pushMetrics(rec *metrics.Recorder, job string) {
	rec.Finish(a.now())
	if err := rec.Push(a.cfg.PushgatewayURL, job); err != nil {
		a.logger().WithError(err).Warn("Failed to push metrics")
	}
}

func logFailures(logger log.FieldLogger, failures []fleet.Failure) {
	if len(failures) == 0 {
		return
	}
	logger.WithField("failed_vehicles", len(failures)).Warn("Some vehicles were skipped")
}
