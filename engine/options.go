package engine

import (
	"time"

	"github.com/edginaround/worldcore/engine/metrics"
)

// Options configures an Engine. The zero value is valid and matches the
// source's untunable defaults; functional Options below let callers
// override individual fields without naming every one, mirroring the
// teacher's graph.Options/graph.Option pair in graph/options.go.
type Options struct {
	// Now, if set, overrides the scheduler's clock. Tests use this for
	// deterministic deadlines; production leaves it nil (time.Now).
	Now func() time.Time

	// HungerDrainInterval overrides the default interval HungerDrainJob
	// repeats at for every eater. Zero means "use the job's own default".
	HungerDrainInterval time.Duration

	// Metrics, if set, receives job latency, task transition, action, and
	// queue-depth observations. Nil means metrics are simply not recorded.
	Metrics *metrics.Metrics
}

// Option is a functional option for configuring an Engine at construction,
// following the teacher's `type Option func(*engineConfig) error` shape
// (here simplified to not return an error, since no engine option can fail
// validation in this core).
type Option func(*Options)

// WithClock overrides the scheduler's time source. Example:
//
//	eng := engine.New(state, gw, scheduler, catalog, engine.WithClock(func() time.Time { return fixed }))
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithHungerDrainInterval overrides the hunger-drain tick interval applied
// to every eater entity handled by Start or on connection.
func WithHungerDrainInterval(d time.Duration) Option {
	return func(o *Options) { o.HungerDrainInterval = d }
}

// WithMetrics wires m into the engine so every job tick, task transition,
// and broadcast action gets recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}
