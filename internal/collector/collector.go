package collector

import (
	"context"
	"fmt"
	"time"

	"VixPull/internal/calculator"
	"VixPull/internal/model"
	"VixPull/internal/recorder"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Observer is told about every pull. n counts pulls from 1; remaining is the raw
// calendar-day distance from the pulled day to the stop date.
type Observer interface {
	BeforeFetch(n int, day string, remaining int)
	AfterFetch(n int, remaining int, elapsed time.Duration)
}

// Collector walks a date range and fetches one record per visited day.
type Collector struct {
	Fetcher  Fetcher
	Observer Observer
	Recorder recorder.Recorder
	Limiter  *rate.Limiter
	RunID    string
}

// NewCollector creates a new Collector that records nothing and never throttles.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Recorder: recorder.NewNoopRecorder(),
		Limiter:  rate.NewLimiter(rate.Inf, 1),
	}
}

// Run fetches every day from start (inclusive) to stop (exclusive). After each pull the
// cursor moves one day forward and then past any weekend; start itself is not checked.
// On error the records collected so far are returned with it.
func (c *Collector) Run(ctx context.Context, start, stop time.Time) (model.Dataset, error) {
	log := logrus.WithFields(logrus.Fields{
		"run_id": c.RunID,
		"source": c.Fetcher.Name(),
	})

	cookies, err := c.Fetcher.FetchCookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cookies: %w", err)
	}
	if len(cookies) == 0 {
		log.Warn("no session cookies, requests may hit the protection page")
	}

	log.WithFields(logrus.Fields{
		"start": start.Format(model.DateLayout),
		"stop":  stop.Format(model.DateLayout),
		"days":  calculator.CountVisitedDays(start, stop),
	}).Info("pull started")

	var data model.Dataset
	n := 0
	for cur := start; cur.Before(stop); cur = calculator.NextBusinessDay(cur) {
		if err := ctx.Err(); err != nil {
			return data, err
		}
		n++
		day := cur.Format(model.DateLayout)
		remaining := calculator.DaysBetween(cur, stop)

		if c.Observer != nil {
			c.Observer.BeforeFetch(n, day, remaining)
		}
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return data, fmt.Errorf("wait for %s: %w", day, err)
			}
		}

		began := time.Now()
		rec, err := c.Fetcher.FetchDay(ctx, day, cookies)
		if err != nil {
			return data, fmt.Errorf("fetch %s: %w", day, err)
		}
		elapsed := time.Since(began)
		data = append(data, rec)

		if rec.IsError() {
			log.WithField("day", day).Debug("endpoint reported error for day")
		}
		if c.Recorder != nil {
			if err := c.Recorder.RecordDay(&recorder.DayEntry{
				RunID:     c.RunID,
				Record:    rec,
				Duration:  elapsed,
				FetchedAt: began,
			}); err != nil {
				log.WithError(err).WithField("day", day).Error("record day")
			}
		}
		if c.Observer != nil {
			c.Observer.AfterFetch(n, remaining, elapsed)
		}
	}

	log.WithFields(logrus.Fields{
		"records": len(data),
		"errors":  data.ErrorCount(),
	}).Info("pull finished")
	return data, nil
}
