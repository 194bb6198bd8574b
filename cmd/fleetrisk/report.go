package main

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-risk/internal/fleet"
	"github.com/ukydev/fleet-risk/internal/metrics"
	"github.com/ukydev/fleet-risk/internal/report"
)

const defaultReportOutput = "risk_report.csv"

type reportOptions struct {
	output      string
	format      string
	recalculate bool
}

func newReportCmd(a *app) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the fleet risk report",
		Long: `Evaluates every vehicle and writes one record per vehicle, ordered by
policy number and VIN. Nothing is written to the database unless
--recalculate is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultReportOutput, "Path of the report file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatCSV), "Report format: csv or json")
	cmd.Flags().BoolVar(&opts.recalculate, "recalculate", false, "Persist compliance, alerts and vehicle scores while reporting")
	return cmd
}

func (a *app) runReport(ctx context.Context, out io.Writer, opts *reportOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	store, closeDB, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := a.notifier()
	if err != nil {
		return err
	}
	defer n.Close()

	mode := fleet.ReadOnly
	if opts.recalculate {
		mode = fleet.Persist
	}

	rec := metrics.NewRecorder()
	logger := a.logger().WithField("operation", fleet.OpReport)
	logger.WithFields(log.Fields{
		"output":      opts.output,
		"format":      format,
		"recalculate": opts.recalculate,
	}).Info("Generating fleet report")

	rep, failures, err := a.aggregator(store, n, rec).Build(ctx, a.now().UTC(), mode)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	logFailures(logger, failures)

	if err := report.WriteFile(opts.output, format, rep); err != nil {
		return err
	}
	a.pushMetrics(rec, "fleetrisk_report")

	logger.WithFields(log.Fields{
		"vehicles": len(rep.Vehicles),
		"failed":   len(failures),
	}).Info("Fleet report written")
	fmt.Fprintln(out, opts.output)
	return nil
}
