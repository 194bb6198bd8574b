package main

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-risk/internal/fleet"
	"github.com/ukydev/fleet-risk/internal/metrics"
	"github.com/ukydev/fleet-risk/internal/notify"
)

func newUpdateComplianceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-compliance",
		Short: "Recalculate and store maintenance compliance for every vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpdateCompliance(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) runUpdateCompliance(ctx context.Context, out io.Writer) error {
	store, closeDB, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	rec := metrics.NewRecorder()
	logger := a.logger().WithField("operation", fleet.OpUpdateCompliance)

	updated, failures, err := a.aggregator(store, notify.Nop{}, rec).UpdateCompliance(ctx, a.now().UTC())
	if err != nil {
		return fmt.Errorf("update compliance: %w", err)
	}
	logFailures(logger, failures)
	a.pushMetrics(rec, "fleetrisk_update_compliance")

	logger.WithFields(log.Fields{
		"updated": updated,
		"failed":  len(failures),
	}).Info("Compliance records updated")
	fmt.Fprintf(out, "Updated compliance for %d vehicles\n", updated)
	return nil
}
