package contract

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit    = 10
	MaxResultLimit        = 1000
	DefaultPrecision      = 1
	DefaultSuggestResults = 20
	DefaultSuggestTimeout = 30 * time.Second
	DefaultCacheTTL       = 7 * 24 * time.Hour
	DefaultLogLevel       = "warn"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for ranking and scoring.
// This struct is the "final, validated" config.
type Config struct {
	CatalogPath   string
	Preferences   algo.Preferences
	MissingPolicy schema.MissingPolicy
	Allergies     []string
	ResultLimit   int

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   string

	SuggestEndpoint string
	SuggestToken    string // Please use env var as this is plaintext
	SuggestResults  int
	SuggestTimeout  time.Duration
	SuggestIDs      string // Static candidate ids, bypasses the suggestion service

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	MetricsFile string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Catalog       string `mapstructure:"catalog"`
	Meals         int    `mapstructure:"meals" validate:"min=1,max=12"`
	Split         int    `mapstructure:"split" validate:"min=0,max=100"`
	MissingPolicy string `mapstructure:"missing-policy"`
	Allergies     string `mapstructure:"allergies"`
	Limit         int    `mapstructure:"limit" validate:"min=1,max=1000"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision" validate:"min=1,max=3"`
	Width      int    `mapstructure:"width" validate:"min=0"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level" validate:"omitempty,oneof=debug info warn warning error"`

	SuggestEndpoint string `mapstructure:"suggest-endpoint" validate:"omitempty,url"`
	SuggestToken    string `mapstructure:"suggest-token"`
	SuggestResults  int    `mapstructure:"suggest-results" validate:"min=1,max=100"`
	SuggestTimeout  string `mapstructure:"suggest-timeout"`
	SuggestIDs      string `mapstructure:"suggest-ids"`

	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	MetricsFile string `mapstructure:"metrics-file"`

	// --- Preferences from config file ---
	Importance map[string]string        `mapstructure:"importance"`
	Targets    map[string]schema.Target `mapstructure:"targets"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Allergies = slices.Clone(c.Allergies)
	return &clone
}

// configValidator checks the numeric ranges declared on ConfigRawInput.
var configValidator = validator.New(validator.WithRequiredStructEnabled())

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateRanges(input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSuggest(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processPreferences(cfg, input)
}

// validateRanges turns validator errors into flag-oriented messages.
func validateRanges(input *ConfigRawInput) error {
	err := configValidator.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name := flagName(fe.StructField())
	switch fe.Tag() {
	case "min":
		return fmt.Errorf("%s must be at least %s (received %v)", name, fe.Param(), fe.Value())
	case "max":
		return fmt.Errorf("%s cannot exceed %s (received %v)", name, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Errorf("invalid %s '%v'. must be one of %s", name, fe.Value(), fe.Param())
	case "url":
		return fmt.Errorf("invalid %s '%v'. must be a URL", name, fe.Value())
	default:
		return fmt.Errorf("invalid %s: %w", name, fe)
	}
}

// flagName maps a ConfigRawInput field to its flag name via the mapstructure tag.
func flagName(field string) string {
	switch field {
	case "Limit":
		return "limit"
	case "SuggestResults":
		return "suggest-results"
	case "SuggestEndpoint":
		return "suggest-endpoint"
	case "LogLevel":
		return "log-level"
	default:
		return strings.ToLower(field)
	}
}

// validateSimpleInputs processes and validates output and policy fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.CatalogPath = strings.TrimSpace(input.Catalog)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ResultLimit = input.Limit
	cfg.Precision = input.Precision
	cfg.Allergies = SplitList(input.Allergies)
	cfg.MetricsFile = input.MetricsFile

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("parquet output requires --output-file")
	}

	cfg.MissingPolicy = schema.MissingPolicy(strings.ToLower(input.MissingPolicy))
	if cfg.MissingPolicy == "" {
		cfg.MissingPolicy = schema.PartialPolicy
	}
	if _, ok := schema.ValidMissingPolicies[cfg.MissingPolicy]; !ok {
		return fmt.Errorf("invalid missing policy '%s'. must be partial, exclude", input.MissingPolicy)
	}

	return nil
}

// processSuggest handles the suggestion service settings.
func processSuggest(cfg *Config, input *ConfigRawInput) error {
	cfg.SuggestEndpoint = strings.TrimSpace(input.SuggestEndpoint)
	cfg.SuggestToken = input.SuggestToken
	cfg.SuggestResults = input.SuggestResults
	cfg.SuggestIDs = strings.TrimSpace(input.SuggestIDs)

	cfg.SuggestTimeout = DefaultSuggestTimeout
	if input.SuggestTimeout != "" {
		d, err := time.ParseDuration(input.SuggestTimeout)
		if err != nil {
			return fmt.Errorf("invalid suggest-timeout '%s': %w", input.SuggestTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("suggest-timeout must be positive (received %s)", input.SuggestTimeout)
		}
		cfg.SuggestTimeout = d
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if strings.Contains(connStr, "://") && !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be host:port or a redis:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		d, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl '%s': %w", input.CacheTTL, err)
		}
		if d <= 0 {
			return fmt.Errorf("cache-ttl must be positive (received %s)", input.CacheTTL)
		}
		cfg.CacheTTL = d
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath && cacheDBPath != ":memory:" {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// processPreferences builds the Preferences snapshot from meals, split, importance and targets.
func processPreferences(cfg *Config, input *ConfigRawInput) error {
	importance := make(map[schema.MetricKey]schema.Importance, len(input.Importance))
	for _, key := range slices.Sorted(maps.Keys(input.Importance)) {
		level, err := schema.ParseImportance(input.Importance[key])
		if err != nil {
			return fmt.Errorf("importance for %s: %w", key, err)
		}
		importance[schema.MetricKey(strings.ToLower(key))] = level
	}

	targets := make(map[schema.MetricKey]schema.Target, len(input.Targets))
	for key, t := range input.Targets {
		targets[schema.MetricKey(strings.ToLower(key))] = t
	}

	prefs, err := algo.NewPreferences(algo.PreferenceInput{
		Meals:      input.Meals,
		Split:      input.Split,
		Importance: importance,
		Targets:    targets,
	})
	if err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	cfg.Preferences = prefs
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
