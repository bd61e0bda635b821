// Package pull wires configuration, fetcher, progress output, recorder and CSV writer
// into a single run over a date range.
package pull

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"VixPull/internal/calculator"
	"VixPull/internal/collector"
	"VixPull/internal/config"
	"VixPull/internal/exporter"
	"VixPull/internal/model"
	"VixPull/internal/progress"
	"VixPull/internal/recorder"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Options configures one run.
type Options struct {
	Config *config.Config
	// Out receives progress lines and the "Writing output" notice.
	Out io.Writer
	// Fetcher overrides the one built from Config.
	Fetcher collector.Fetcher
	Now     func() time.Time
}

// NewFetcher builds the fetcher selected by cfg.Source.Kind.
func NewFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.Source.Kind {
	case config.SourceMock:
		return &collector.MockFetcher{Cookies: collector.Cookies{"session": "mock"}}, nil
	case config.SourceVixCentral:
		f, err := collector.NewVixCentralFetcher(collector.VixCentralOptions{
			BaseURL:          cfg.Source.BaseURL,
			Proxy:            cfg.Proxy,
			Timeout:          cfg.Source.RequestTimeout,
			CloudflareBypass: cfg.Source.CloudflareBypass,
		})
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source.Kind)
	}
}

// NewLimiter paces requests at rps per second; zero or less means unlimited.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// OpenRecorder opens the SQLite recorder at path, or a no-op recorder when path is empty
// or the database cannot be opened.
func OpenRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		logrus.WithError(err).Warn("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// Run pulls the configured range and writes the CSV. When the pull stops early the
// collected records are discarded unless Pull.FlushOnHalt is set; the summary is
// returned either way.
func Run(ctx context.Context, opts Options) (model.RunSummary, error) {
	cfg := opts.Config
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	start, stop, err := cfg.Range(now())
	if err != nil {
		return model.RunSummary{}, err
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		if fetcher, err = NewFetcher(cfg); err != nil {
			return model.RunSummary{}, fmt.Errorf("init fetcher: %w", err)
		}
	}

	rec := OpenRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	runID := uuid.NewString()
	col := collector.NewCollector(fetcher)
	col.Observer = progress.NewReporter(cfg.Pull.Progress, out)
	col.Recorder = rec
	col.Limiter = NewLimiter(cfg.Source.RequestsPerSecond)
	col.RunID = runID

	summary := model.RunSummary{
		RunID:        runID,
		Start:        start,
		Stop:         stop,
		BusinessDays: calculator.CountVisitedDays(start, stop),
		Output:       cfg.Pull.Output,
	}

	began := time.Now()
	data, runErr := col.Run(ctx, start, stop)
	summary.Records = len(data)
	summary.ErrorRows = data.ErrorCount()
	summary.Elapsed = time.Since(began)

	log := logrus.WithFields(logrus.Fields{"run_id": runID, "records": len(data)})
	if runErr != nil {
		summary.HaltReason = runErr.Error()
		if errors.Is(runErr, collector.ErrProtectionHit) {
			fmt.Fprintln(out, "Data protection hit, exiting")
		}
		if !cfg.Pull.FlushOnHalt {
			log.WithError(runErr).Error("pull halted, collected records discarded")
			return summary, runErr
		}
		log.WithError(runErr).Warn("pull halted, writing collected records")
	}

	fmt.Fprintf(out, "Writing output to: %s\n", cfg.Pull.Output)
	if err := exporter.WriteDataset(cfg.Pull.Output, data); err != nil {
		err = fmt.Errorf("write output: %w", err)
		if runErr != nil {
			return summary, errors.Join(runErr, err)
		}
		return summary, err
	}
	summary.Written = true
	return summary, runErr
}
