// Package progress prints periodic status lines with a rolling-average ETA while a pull runs.
package progress

import (
	"fmt"
	"io"
	"time"

	"VixPull/internal/calculator"

	"github.com/dustin/go-humanize"
)

const DefaultInterval = 40

// Reporter implements collector.Observer. Every Interval pulls it prints the day being
// pulled and, once the pull is done, the mean of the last Interval durations and the
// projected completion time.
type Reporter struct {
	Interval int
	Out      io.Writer
	Now      func() time.Time

	// samples grows for the whole run; only the trailing window is averaged.
	samples []float64
}

// NewReporter creates a Reporter writing to out.
func NewReporter(interval int, out io.Writer) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{Interval: interval, Out: out, Now: time.Now}
}

func (r *Reporter) due(n int) bool {
	return n%r.Interval == 0
}

func (r *Reporter) BeforeFetch(n int, day string, remaining int) {
	if !r.due(n) {
		return
	}
	fmt.Fprintf(r.Out, "Pulling data for %s, %d pulls left\n", day, remaining)
}

func (r *Reporter) AfterFetch(n int, remaining int, elapsed time.Duration) {
	r.samples = append(r.samples, elapsed.Seconds())
	if !r.due(n) {
		return
	}
	avg := r.Average()
	now := r.Now()
	eta := calculator.EstimateCompletion(now, avg, remaining)
	fmt.Fprintf(r.Out, "  Average time for the last %d runs: %.4f seconds. Estimated completion time: %s (%s)\n",
		r.Interval, avg, eta.Format("2006-01-02 15:04:05"), humanize.RelTime(eta, now, "ago", "from now"))
}

// Average is the mean of the last Interval samples.
func (r *Reporter) Average() float64 {
	return calculator.TrailingMean(r.samples, r.Interval)
}

// Samples returns every duration recorded so far, in seconds.
func (r *Reporter) Samples() []float64 {
	return r.samples
}
