// Package dashboard aggregates the admin dashboard's summary statistics from
// independent count endpoints.
//
// Each figure is one probe, and any subset of probes may fail without
// failing the whole view: missing values fall back to zero and only a total
// failure across every probe surfaces an error.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tourwise/cms-client/pkg/logging"
)

// Stats is the assembled dashboard summary.
type Stats struct {
	Posts               int       `json:"posts"`
	PendingComments     int       `json:"pending_comments"`
	Hotels              int       `json:"hotels"`
	Events              int       `json:"events"`
	Activities          int       `json:"activities"`
	Regions             int       `json:"regions"`
	HeroSlides          int       `json:"hero_slides"`
	UnreadNotifications int       `json:"unread_notifications"`
	TotalViews          int       `json:"total_views"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// Probe fetches one figure and knows where it lands in Stats.
type Probe struct {
	Name  string
	Fetch func(ctx context.Context) (int, error)
	Apply func(s *Stats, value int)
}

// Config holds aggregator configuration.
type Config struct {
	// MaxConcurrency is the number of probes fetched in parallel.
	MaxConcurrency int

	// Timeout bounds each individual probe.
	Timeout time.Duration
}

// DefaultConfig returns defaults sized for a dashboard of about ten figures.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        10 * time.Second,
	}
}

// Aggregator fans probes out over a bounded worker pool.
type Aggregator struct {
	config Config
	logger zerolog.Logger
}

// New creates an aggregator.
func New(config Config) *Aggregator {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Aggregator{
		config: config,
		logger: logging.NewLogger("dashboard"),
	}
}

type probeResult struct {
	probe Probe
	value int
	err   error
}

// Collect runs every probe and assembles the stats. Failed probes leave
// their figure at zero; an error is returned only when every single probe
// failed.
func (a *Aggregator) Collect(ctx context.Context, probes []Probe) (Stats, error) {
	stats := Stats{GeneratedAt: time.Now().UTC()}
	if len(probes) == 0 {
		return stats, nil
	}

	start := time.Now()
	queue := make(chan Probe, len(probes))
	results := make(chan probeResult, len(probes))

	for _, p := range probes {
		queue <- p
	}
	close(queue)

	workers := a.config.MaxConcurrency
	if workers > len(probes) {
		workers = len(probes)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go a.worker(ctx, queue, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failures []error
	for result := range results {
		if result.err != nil {
			a.logger.Warn().
				Err(result.err).
				Str("probe", result.probe.Name).
				Msg("Dashboard probe failed, using zero value")
			failures = append(failures, result.err)
			continue
		}
		result.probe.Apply(&stats, result.value)
	}

	if len(failures) == len(probes) {
		return stats, errors.Join(failures...)
	}

	a.logger.Debug().
		Int("probes", len(probes)).
		Int("failed", len(failures)).
		Dur("duration", time.Since(start)).
		Msg("Dashboard stats collected")

	return stats, nil
}

func (a *Aggregator) worker(ctx context.Context, queue <-chan Probe, results chan<- probeResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for probe := range queue {
		select {
		case <-ctx.Done():
			results <- probeResult{probe: probe, err: ctx.Err()}
			continue
		default:
		}

		probeCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		value, err := probe.Fetch(probeCtx)
		cancel()

		results <- probeResult{probe: probe, value: value, err: err}
	}
}
