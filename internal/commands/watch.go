package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stockdash/internal/market"
)

var watchSchedule string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Aggregate on a schedule and log a summary of each run",
	Long: `Runs the aggregation on a cron schedule until interrupted.

Examples:
  stockdash watch
  stockdash watch --schedule "@every 30s"
  stockdash watch --schedule "*/5 9-16 * * 1-5"`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchSchedule, "schedule", "s", "", "cron spec (overrides config)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	spec := a.cfg.Watch.Schedule
	if watchSchedule != "" {
		spec = watchSchedule
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timeout := time.Duration(a.cfg.Server.RequestTimeoutSec) * time.Second
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		logSnapshot(a.log, a.agg.Aggregate(runCtx))
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	a.log.WithField("schedule", spec).Info("watch started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	a.log.Info("watch stopped")
	return nil
}

func logSnapshot(log logrus.FieldLogger, snap market.Snapshot) {
	fields := logrus.Fields{
		"fallback": snap.IsFallback,
		"rate":     snap.ExchangeRate.Rate,
		"indices":  len(snap.Indices),
	}
	for _, q := range snap.Indices {
		fields[q.Ticker] = fmt.Sprintf("%.2f (%+.2f%%)", q.CurrentPrice, q.ChangePercent)
	}
	log.WithFields(fields).Info("snapshot")
}
