package commands

import (
	"context"
	"fmt"

	"VixPull/internal/model"
	"VixPull/internal/notifier"
	"VixPull/internal/pull"
	"VixPull/internal/runstate"
	"VixPull/internal/scheduler"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cronExpr string
	runNow   bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--cron EXPR] [--run-now]",
	Short: "Runs a full pull through today on a cron schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression with a seconds field. Defaults to schedule.cron.")
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "Run one pull immediately after start.")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cmd.Flags().Changed("cron") {
		cfg.Schedule.Cron = cronExpr
	}
	// every tick pulls through its own today
	cfg.Pull.Stop = ""

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	n := newNotifier(cfg)

	job := func(ctx context.Context) (model.RunSummary, error) {
		return pull.Run(ctx, pull.Options{Config: cfg, Out: out})
	}
	sched := scheduler.NewScheduler(ctx, job, n)
	if cfg.Schedule.StateFile != "" {
		store, err := runstate.NewStore(cfg.Schedule.StateFile)
		if err != nil {
			return fmt.Errorf("load last run: %w", err)
		}
		sched.State = store
	}
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn, ok := n.(*notifier.TelegramNotifier); ok {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logrus.Info("telegram polling started")
	}
	if runNow {
		go sched.RunNow()
	}

	logrus.WithField("cron", cfg.Schedule.Cron).Info("vixpull is running, press Ctrl+C to stop")
	<-ctx.Done()
	logrus.Info("shutdown signal received, stopping")
	return nil
}
