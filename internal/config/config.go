package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/geo2wiki/internal/export"
)

// Config holds the full application configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Wikipedia WikipediaConfig `yaml:"wikipedia" mapstructure:"wikipedia"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SearchConfig configures the radius expansion loop.
type SearchConfig struct {
	CenterLat       float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLon       float64 `yaml:"center_lon" mapstructure:"center_lon"`
	InitialRadius   int     `yaml:"initial_radius" mapstructure:"initial_radius"`
	MaxRadius       int     `yaml:"max_radius" mapstructure:"max_radius"`
	RadiusIncrement int     `yaml:"radius_increment" mapstructure:"radius_increment"`
	MinResults      int     `yaml:"min_results" mapstructure:"min_results"`
	MaxResults      int     `yaml:"max_results" mapstructure:"max_results"`
	AccumulateHits  bool    `yaml:"accumulate_hits" mapstructure:"accumulate_hits"`
}

// WikipediaConfig configures the encyclopedia provider.
type WikipediaConfig struct {
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	ResolveConcurrency int    `yaml:"resolve_concurrency" mapstructure:"resolve_concurrency"`
}

// NominatimConfig configures the admin reverse lookup.
type NominatimConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Zoom    int    `yaml:"zoom" mapstructure:"zoom"`
}

// OverpassConfig configures the feature search and its rate-limit cooldown.
type OverpassConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Cooldown    time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
	MaxCooldown time.Duration `yaml:"max_cooldown" mapstructure:"max_cooldown"`
}

// HTTPConfig configures the shared HTTP fetcher.
type HTTPConfig struct {
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig configures where and how results are written.
type OutputConfig struct {
	Dir      string   `yaml:"dir" mapstructure:"dir"`
	Formats  []string `yaml:"formats" mapstructure:"formats"`
	Progress bool     `yaml:"progress" mapstructure:"progress"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks value ranges that viper cannot enforce. Search parameter
// relationships are checked again by search.Params once flags are applied.
func (c *Config) Validate() error {
	var errs []string

	if c.Search.CenterLat < -90 || c.Search.CenterLat > 90 {
		errs = append(errs, "search.center_lat must be between -90 and 90")
	}
	if c.Search.CenterLon < -180 || c.Search.CenterLon > 180 {
		errs = append(errs, "search.center_lon must be between -180 and 180")
	}
	if c.Search.InitialRadius <= 0 {
		errs = append(errs, "search.initial_radius must be > 0")
	}
	if c.Search.MaxRadius < c.Search.InitialRadius {
		errs = append(errs, "search.max_radius must be >= search.initial_radius")
	}
	if c.Search.RadiusIncrement <= 0 {
		errs = append(errs, "search.radius_increment must be > 0")
	}
	if c.Search.MinResults < 0 {
		errs = append(errs, "search.min_results must be >= 0")
	}
	if c.Search.MaxResults <= 0 {
		errs = append(errs, "search.max_results must be > 0")
	}
	if c.Wikipedia.ResolveConcurrency < 1 || c.Wikipedia.ResolveConcurrency > 32 {
		errs = append(errs, "wikipedia.resolve_concurrency must be between 1 and 32")
	}
	if c.Overpass.MaxAttempts < 1 {
		errs = append(errs, "overpass.max_attempts must be >= 1")
	}
	if c.Overpass.Cooldown <= 0 {
		errs = append(errs, "overpass.cooldown must be > 0")
	}
	if c.Overpass.MaxCooldown < c.Overpass.Cooldown {
		errs = append(errs, "overpass.max_cooldown must be >= overpass.cooldown")
	}
	if strings.TrimSpace(c.HTTP.UserAgent) == "" {
		errs = append(errs, "http.user_agent is required")
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, "http.timeout must be > 0")
	}
	if _, err := export.ParseFormats(c.Output.Formats); err != nil {
		errs = append(errs, "output.formats: "+err.Error())
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEO2WIKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("search.center_lat", 38.89777476492068)
	v.SetDefault("search.center_lon", -77.03654524519337)
	v.SetDefault("search.initial_radius", 500)
	v.SetDefault("search.max_radius", 10000)
	v.SetDefault("search.radius_increment", 500)
	v.SetDefault("search.min_results", 5)
	v.SetDefault("search.max_results", 20)
	v.SetDefault("search.accumulate_hits", false)
	v.SetDefault("wikipedia.base_url", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("wikipedia.resolve_concurrency", 4)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("nominatim.zoom", 10)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.max_attempts", 5)
	v.SetDefault("overpass.cooldown", 60*time.Second)
	v.SetDefault("overpass.max_cooldown", 10*time.Minute)
	v.SetDefault("http.user_agent", "geo2wiki/1.0 (+contact configured via GEO2WIKI_HTTP_USER_AGENT)")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.formats", []string{"csv"})
	v.SetDefault("output.progress", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger. Logs go to stderr so the
// progress bar and result paths on stdout stay readable.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
