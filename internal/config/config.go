package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"shiftcal/internal/shiftscan"
)

// EnvPrefix namespaces every environment variable
const EnvPrefix = "SHIFTCAL"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Scan      ScanConfig      `yaml:"scan" envconfig:"SCAN"`
	Calendar  CalendarConfig  `yaml:"calendar" envconfig:"CALENDAR"`
	Fetch     FetchConfig     `yaml:"fetch" envconfig:"FETCH"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// RequestTimeout bounds one process request, download and sync included
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"2m"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"10"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"20"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/shiftcal.log"`
}

// ScanConfig holds the roster scanning heuristics
type ScanConfig struct {
	RolePrefixes     []string `yaml:"role_prefixes" envconfig:"ROLE_PREFIXES" default:"open,close,flex,dm support"`
	HeaderRowDepth   int      `yaml:"header_row_depth" envconfig:"HEADER_ROW_DEPTH" default:"5"`
	PrimaryRowOffset int      `yaml:"primary_row_offset" envconfig:"PRIMARY_ROW_OFFSET" default:"1"`
	SectionColumnGap int      `yaml:"section_column_gap" envconfig:"SECTION_COLUMN_GAP" default:"1"`
	LabelColumnSpan  int      `yaml:"label_column_span" envconfig:"LABEL_COLUMN_SPAN" default:"1"`
	PastPolicy       string   `yaml:"past_policy" envconfig:"PAST_POLICY" default:"strict"`
	Strategy         string   `yaml:"strategy" envconfig:"STRATEGY" default:"date_anchored"`
	NameWindowRows   int      `yaml:"name_window_rows" envconfig:"NAME_WINDOW_ROWS" default:"200"`
	NameWindowCols   int      `yaml:"name_window_cols" envconfig:"NAME_WINDOW_COLS" default:"60"`
	Parallel         bool     `yaml:"parallel" envconfig:"PARALLEL" default:"false"`
	IncludeHidden    bool     `yaml:"include_hidden" envconfig:"INCLUDE_HIDDEN" default:"false"`
}

// CalendarConfig contains calendar output and sync configuration
type CalendarConfig struct {
	TimeZone         string        `yaml:"time_zone" envconfig:"TIME_ZONE" default:"Australia/Sydney"`
	ProductID        string        `yaml:"product_id" envconfig:"PRODUCT_ID" default:"-//shiftcal//roster shifts//EN"`
	GoogleCalendarID string        `yaml:"google_calendar_id" envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`
	SyncTimeout      time.Duration `yaml:"sync_timeout" envconfig:"SYNC_TIMEOUT" default:"30s"`
}

// FetchConfig contains roster download limits
type FetchConfig struct {
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
	MaxBytes int64         `yaml:"max_bytes" envconfig:"MAX_BYTES" default:"20971520"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"shiftcal"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables and config file.
// Environment variables win over the file, and the file wins over defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file on top of the defaults
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigs merges file config with env config. A field where the env
// config still holds its default takes the file value instead.
func mergeConfigs(fileConfig, envConfig Config) Config {
	overlay(reflect.ValueOf(&envConfig).Elem(), reflect.ValueOf(Default()).Elem(), reflect.ValueOf(fileConfig))
	return envConfig
}

func overlay(env, def, file reflect.Value) {
	for i := 0; i < env.NumField(); i++ {
		ev, dv, fv := env.Field(i), def.Field(i), file.Field(i)
		if ev.Kind() == reflect.Struct {
			overlay(ev, dv, fv)
			continue
		}
		if reflect.DeepEqual(ev.Interface(), dv.Interface()) {
			ev.Set(fv)
		}
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Fetch.Timeout <= 0 || c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch timeout and max bytes must be positive")
	}
	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("invalid trace exporter %q", c.Telemetry.TraceExporter)
	}

	if err := c.EngineParams().Validate(); err != nil {
		return fmt.Errorf("invalid scan config: %w", err)
	}
	return nil
}

// Location returns the calendar time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Calendar.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar time zone %q: %w", c.Calendar.TimeZone, err)
	}
	return loc, nil
}

// EngineParams converts the scan section into engine heuristics
func (c *Config) EngineParams() shiftscan.Params {
	p := shiftscan.DefaultParams()
	p.RolePrefixes = c.Scan.RolePrefixes
	p.HeaderRowDepth = c.Scan.HeaderRowDepth
	p.PrimaryRowOffset = c.Scan.PrimaryRowOffset
	p.SectionColumnGap = c.Scan.SectionColumnGap
	p.LabelColumnSpan = c.Scan.LabelColumnSpan
	p.PastPolicy = shiftscan.PastPolicy(c.Scan.PastPolicy)
	p.Strategy = shiftscan.Strategy(c.Scan.Strategy)
	p.NameWindowRows = c.Scan.NameWindowRows
	p.NameWindowCols = c.Scan.NameWindowCols
	p.Parallel = c.Scan.Parallel
	return p
}

// getConfigFilePath returns the config file named by SHIFTCAL_CONFIG, or
// the first config.yaml found in the usual locations
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  2 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     10,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/shiftcal.log",
		},
		Scan: ScanConfig{
			RolePrefixes:     []string{"open", "close", "flex", "dm support"},
			HeaderRowDepth:   5,
			PrimaryRowOffset: 1,
			SectionColumnGap: 1,
			LabelColumnSpan:  1,
			PastPolicy:       "strict",
			Strategy:         "date_anchored",
			NameWindowRows:   200,
			NameWindowCols:   60,
		},
		Calendar: CalendarConfig{
			TimeZone:         "Australia/Sydney",
			ProductID:        "-//shiftcal//roster shifts//EN",
			GoogleCalendarID: "primary",
			SyncTimeout:      30 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 20 << 20,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "shiftcal",
			Environment:    "development",
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
