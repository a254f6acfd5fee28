package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo2wiki/internal/assemble"
	"github.com/sells-group/geo2wiki/internal/config"
	"github.com/sells-group/geo2wiki/internal/export"
	"github.com/sells-group/geo2wiki/internal/fetcher"
	"github.com/sells-group/geo2wiki/internal/geo"
	"github.com/sells-group/geo2wiki/internal/model"
	"github.com/sells-group/geo2wiki/internal/resilience"
	"github.com/sells-group/geo2wiki/internal/search"
	"github.com/sells-group/geo2wiki/pkg/nominatim"
	"github.com/sells-group/geo2wiki/pkg/overpass"
	"github.com/sells-group/geo2wiki/pkg/wikipedia"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search around a point until enough Wikipedia articles are found",
	Long: `Search Wikipedia geosearch, the Nominatim admin area and nearby Overpass
features around a center point. The radius grows by --increment until
--min-results articles are found or --max-radius is exceeded.

Flags override config.yaml and GEO2WIKI_* environment variables.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := applySearchFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		paths, err := runSearch(ctx, cfg)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	f := searchCmd.Flags()
	f.Float64("lat", 0, "center latitude in decimal degrees")
	f.Float64("lon", 0, "center longitude in decimal degrees")
	f.Int("initial-radius", 0, "first search radius in meters")
	f.Int("max-radius", 0, "largest radius to search in meters")
	f.Int("increment", 0, "radius growth per iteration in meters")
	f.Int("min-results", 0, "stop once this many Wikipedia articles are found")
	f.Int("max-results", 0, "maximum Wikipedia articles to request and export")
	f.Bool("accumulate", false, "keep articles from every radius instead of the latest only")
	f.String("formats", "", "comma-separated output formats: csv,xlsx,geojson,summary")
	f.String("out", "", "output directory")
	f.Bool("no-progress", false, "disable the URL resolution progress bar")
	rootCmd.AddCommand(searchCmd)
}

// applySearchFlags copies explicitly set flags over the loaded config.
func applySearchFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("lat") {
		c.Search.CenterLat, _ = flags.GetFloat64("lat")
	}
	if flags.Changed("lon") {
		c.Search.CenterLon, _ = flags.GetFloat64("lon")
	}
	if flags.Changed("initial-radius") {
		c.Search.InitialRadius, _ = flags.GetInt("initial-radius")
	}
	if flags.Changed("max-radius") {
		c.Search.MaxRadius, _ = flags.GetInt("max-radius")
	}
	if flags.Changed("increment") {
		c.Search.RadiusIncrement, _ = flags.GetInt("increment")
	}
	if flags.Changed("min-results") {
		c.Search.MinResults, _ = flags.GetInt("min-results")
	}
	if flags.Changed("max-results") {
		c.Search.MaxResults, _ = flags.GetInt("max-results")
	}
	if flags.Changed("accumulate") {
		c.Search.AccumulateHits, _ = flags.GetBool("accumulate")
	}
	if flags.Changed("formats") {
		raw, _ := flags.GetString("formats")
		formats, err := export.ParseFormats(splitAndTrim(raw))
		if err != nil {
			return err
		}
		c.Output.Formats = formats
	}
	if flags.Changed("out") {
		c.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("no-progress") {
		noProgress, _ := flags.GetBool("no-progress")
		c.Output.Progress = !noProgress
	}
	return nil
}

// searchParams converts the search section into coordinator parameters.
func searchParams(c *config.Config) search.Params {
	return search.Params{
		Center:          geo.Coordinate{Lat: c.Search.CenterLat, Lon: c.Search.CenterLon},
		InitialRadius:   c.Search.InitialRadius,
		MaxRadius:       c.Search.MaxRadius,
		RadiusIncrement: c.Search.RadiusIncrement,
		MinResults:      c.Search.MinResults,
		MaxResults:      c.Search.MaxResults,
	}
}

// newSources wires the three provider clients behind one shared fetcher.
func newSources(c *config.Config) *search.Sources {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    c.HTTP.UserAgent,
		Timeout:      c.HTTP.Timeout,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	wiki := wikipedia.NewClient(f, wikipedia.WithBaseURL(c.Wikipedia.BaseURL))
	nom := nominatim.NewClient(f,
		nominatim.WithBaseURL(c.Nominatim.BaseURL),
		nominatim.WithZoom(c.Nominatim.Zoom),
	)
	ovp := overpass.NewClient(f,
		overpass.WithBaseURL(c.Overpass.BaseURL),
		overpass.WithRateLimitPolicy(resilience.CooldownPolicy(
			c.Overpass.MaxAttempts, c.Overpass.Cooldown, c.Overpass.MaxCooldown,
		)),
	)
	return search.NewSources(wiki, nom, ovp)
}

// runSearch executes one search run and returns the written file paths.
func runSearch(ctx context.Context, c *config.Config) ([]string, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("command", "search"), zap.String("run_id", runID))

	params := searchParams(c)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	// Rejected before any provider call; a bad format would otherwise only
	// surface after the whole search.
	formats, err := export.ParseFormats(c.Output.Formats)
	if err != nil {
		return nil, err
	}

	sources := newSources(c)
	coord := search.NewCoordinator(sources,
		search.WithAccumulateHits(c.Search.AccumulateHits),
		search.WithLogger(log),
	)

	log.Info("starting search",
		zap.Stringer("center", params.Center),
		zap.Int("initial_radius", params.InitialRadius),
		zap.Int("max_radius", params.MaxRadius),
		zap.Int("increment", params.RadiusIncrement),
		zap.Int("min_results", params.MinResults),
	)

	out, err := coord.Run(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "search")
	}

	opts := []assemble.Option{assemble.WithConcurrency(c.Wikipedia.ResolveConcurrency)}
	bar := newProgressBar(c.Output.Progress, min(len(out.Hits), params.MaxResults))
	if bar != nil {
		opts = append(opts, assemble.WithProgress(func() { _ = bar.Add(1) }))
	}
	rows := assemble.New(sources, opts...).Assemble(ctx, params, out)
	if bar != nil {
		_ = bar.Finish()
	}

	exp := &export.Exporter{Dir: c.Output.Dir, Formats: formats}
	paths, err := exp.Write(rows, export.Summary{
		RunID:        runID,
		Center:       params.Center.String(),
		State:        out.State.String(),
		FinalRadius:  out.Radius,
		Iterations:   out.Iterations,
		Encyclopedia: min(len(out.Hits), params.MaxResults),
		Features:     countNamedFeatures(rows),
		AdminFound:   !out.Admin.Empty(),
	})
	if err != nil {
		return paths, eris.Wrap(err, "search")
	}

	log.Info("search complete",
		zap.Stringer("state", out.State),
		zap.Int("radius", out.Radius),
		zap.Int("iterations", out.Iterations),
		zap.Int("rows", len(rows)),
	)
	return paths, nil
}

// newProgressBar returns nil unless progress is enabled and stderr is a
// terminal with at least one URL to resolve.
func newProgressBar(enabled bool, n int) *progressbar.ProgressBar {
	if !enabled || n == 0 || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription("Resolving article URLs"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func countNamedFeatures(rows []model.Row) int {
	n := 0
	for _, r := range rows {
		if r.Source == model.SourceMapFeature && !r.IsSentinel() {
			n++
		}
	}
	return n
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
