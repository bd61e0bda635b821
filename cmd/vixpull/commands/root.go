package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"VixPull/internal/config"
	"VixPull/internal/exporter"
	"VixPull/internal/logging"
	"VixPull/internal/model"
	"VixPull/internal/notifier"
	"VixPull/internal/pull"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	startDate   string
	stopDate    string
	outputPath  string
	progressN   int
	flushOnHalt bool
	sqlitePath  string
)

var rootCmd = &cobra.Command{
	Use:   "vixpull [--start DATE] [--stop DATE] [--output PATH] [--progress N]",
	Short: "vixpull downloads the historical VIX futures term structure from vixcentral.com into a CSV file.",
	Long: "vixpull requests one day of VIX futures term structure at a time, from --start up to but\n" +
		"not including --stop, skipping weekends, and writes every day as one CSV row.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPull,
}

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", defaultConfig, "Path to the YAML config file.")
	pf.StringVar(&startDate, "start", config.DefaultStart, "First day to pull (YYYY-MM-DD).")
	pf.StringVar(&outputPath, "output", config.DefaultOutput, "CSV file to write.")
	pf.IntVar(&progressN, "progress", config.DefaultProgress, "Print the rolling average and ETA every N pulls.")
	pf.BoolVar(&flushOnHalt, "flush-on-halt", false, "Write the rows collected so far when the run halts.")
	pf.StringVar(&sqlitePath, "sqlite", "", "Mirror every pulled day into this SQLite database.")

	rootCmd.Flags().StringVar(&stopDate, "stop", "", "Day to stop at, not pulled (YYYY-MM-DD). Defaults to today.")
}

// ExecuteContext runs the CLI and exits with status 1 on error.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("vixpull failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config, lets explicitly set flags override it, validates the
// result and configures logging.
func setup(cmd *cobra.Command) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		cfg.Pull.Start = startDate
	}
	if flags.Changed("stop") {
		cfg.Pull.Stop = stopDate
	}
	if flags.Changed("output") {
		cfg.Pull.Output = outputPath
	}
	if flags.Changed("progress") {
		cfg.Pull.Progress = progressN
	}
	if flags.Changed("flush-on-halt") {
		cfg.Pull.FlushOnHalt = flushOnHalt
	}
	if flags.Changed("sqlite") {
		cfg.Database.SQLitePath = sqlitePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}

	closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		logrus.WithError(err).Warn("logging setup incomplete")
	}
	return cfg, closer, nil
}

// newNotifier returns the Telegram notifier when configured and a no-op otherwise.
func newNotifier(cfg *config.Config) notifier.Notifier {
	if !cfg.TelegramEnabled() {
		return notifier.NoopNotifier{}
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

func runPull(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	summary, runErr := pull.Run(ctx, pull.Options{Config: cfg, Out: out})
	if summary.RunID == "" {
		return runErr
	}
	exporter.WriteSummaryTable(out, summary)
	notifySummary(ctx, newNotifier(cfg), summary)

	if runErr != nil {
		return runErr
	}
	fmt.Fprintln(out, "Finished.")
	return nil
}

// notifySummary delivers the run summary even when ctx was cancelled by a signal.
func notifySummary(ctx context.Context, n notifier.Notifier, summary model.RunSummary) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := n.SendWithRetry(ctx, notifier.FormatRunSummary(summary), 2); err != nil {
		logrus.WithError(err).Error("send run summary")
	}
}
