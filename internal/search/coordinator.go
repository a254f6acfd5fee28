// Package search runs the adaptive radius search: each round queries every
// provider concurrently at the current radius, and the radius grows until
// enough encyclopedia hits are found or the maximum radius is passed.
package search

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geo2wiki/internal/model"
)

// State is the coordinator's loop state.
type State int

// Loop states.
const (
	Expanding State = iota
	Satisfied
	Exhausted
)

func (s State) String() string {
	switch s {
	case Expanding:
		return "expanding"
	case Satisfied:
		return "satisfied"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Outcome is the final snapshot handed to the assembler. It is not mutated
// after Run returns.
type Outcome struct {
	State      State
	Radius     int // last radius searched
	Iterations int
	Hits       []model.Hit
	Admin      *model.AdminInfo
	Features   []model.Feature
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithAccumulateHits keeps hits from every round, deduplicated by title,
// instead of replacing them with the latest round. Use it when the
// encyclopedia provider does not return a superset at larger radii.
func WithAccumulateHits(enabled bool) Option {
	return func(c *Coordinator) {
		c.accumulate = enabled
	}
}

// WithLogger sets the logger used for per-round progress.
func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// Coordinator owns the radius loop and its accumulators.
type Coordinator struct {
	sources    *Sources
	accumulate bool
	log        *zap.Logger
}

// NewCoordinator creates a Coordinator over the given provider boundary.
func NewCoordinator(sources *Sources, opts ...Option) *Coordinator {
	c := &Coordinator{
		sources: sources,
		log:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("component", "search.coordinator"))
	return c
}

// round holds one iteration's provider results. Each field is written by
// exactly one task and read only after the barrier.
type round struct {
	hits     []model.Hit
	admin    *model.AdminInfo
	features []model.Feature
}

// Run executes the search. Provider failures never surface here; an error is
// returned only for invalid params or a cancelled context.
func (c *Coordinator) Run(ctx context.Context, p Params) (*Outcome, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := &Outcome{State: Expanding}
	radius := p.InitialRadius

	for out.State == Expanding {
		if radius > p.MaxRadius {
			out.State = Exhausted
			break
		}
		if err := ctx.Err(); err != nil {
			return out, eris.Wrap(err, "search: cancelled")
		}

		r := c.fetch(ctx, p, radius, out.Admin.Empty())
		out.Iterations++
		out.Radius = radius

		if out.Admin.Empty() && !r.admin.Empty() {
			out.Admin = r.admin
		}
		out.Features = append(out.Features, r.features...)
		if c.accumulate {
			out.Hits = mergeHits(out.Hits, r.hits)
		} else {
			out.Hits = r.hits
		}

		switch {
		case len(out.Hits) >= p.MinResults:
			out.State = Satisfied
		case radius > p.MaxRadius-p.RadiusIncrement:
			// The next radius would pass MaxRadius; checked here so the
			// increment cannot overflow near math.MaxInt.
			out.State = Exhausted
		default:
			radius += p.RadiusIncrement
		}

		c.log.Info("search round complete",
			zap.Int("iteration", out.Iterations),
			zap.Int("radius", out.Radius),
			zap.Int("hits", len(out.Hits)),
			zap.Int("min_results", p.MinResults),
			zap.Int("round_features", len(r.features)),
			zap.Bool("admin_cached", !out.Admin.Empty()),
			zap.Stringer("state", out.State),
		)
	}

	c.log.Info("search finished",
		zap.Stringer("state", out.State),
		zap.Int("radius", out.Radius),
		zap.Int("iterations", out.Iterations),
		zap.Int("hits", len(out.Hits)),
		zap.Int("features", len(out.Features)),
	)
	return out, nil
}

// fetch fans out to every provider at radius and waits for all of them.
// The admin lookup is skipped once a non-empty value is cached.
func (c *Coordinator) fetch(ctx context.Context, p Params, radius int, needAdmin bool) round {
	var r round
	var g errgroup.Group

	g.Go(func() error {
		r.hits = c.sources.Hits(ctx, p.Center, radius, p.MaxResults)
		return nil
	})
	if needAdmin {
		g.Go(func() error {
			r.admin = c.sources.Admin(ctx, p.Center)
			return nil
		})
	}
	g.Go(func() error {
		r.features = c.sources.Features(ctx, p.Center, radius)
		return nil
	})

	_ = g.Wait() // tasks never fail; Sources absorbs provider errors
	return r
}
