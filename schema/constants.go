package schema

import (
	"fmt"
	"strings"
)

// Custom string types for type safety.
type (
	// MetricKey identifies a scored metric (e.g. protein, climate_change).
	MetricKey string

	// Category groups metrics into macro-nutrients, micro-nutrients or environmental impact.
	Category string

	// Shape is the target specification shape which selects the scoring formula.
	Shape string

	// Importance is the user's importance level for a metric.
	Importance string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// MissingPolicy decides what happens when a recipe lacks a measurement.
	MissingPolicy string
)

// All metric categories.
const (
	MacrosCategory      Category = "macros"
	MicrosCategory      Category = "micros"
	EnvironmentCategory Category = "environment"
)

// All target shapes.
const (
	IntervalShape  Shape = "interval"
	UpperShape     Shape = "ul"
	RDIShape       Shape = "rdi"
	RDIWithULShape Shape = "rdi_ul"
)

// All importance levels.
const (
	DefaultImportance   Importance = "default"
	SomewhatImportance  Importance = "somewhat"
	ImportantImportance Importance = "important"
	VeryImportance      Importance = "very"
	ExcludeImportance   Importance = "exclude"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // suggestion cache only
	NoneBackend       DatabaseBackend = "none"
)

// All missing-measurement policies.
const (
	PartialPolicy MissingPolicy = "partial" // default
	ExcludePolicy MissingPolicy = "exclude"
)

// importanceFactors maps importance levels to their weight multipliers.
var importanceFactors = map[Importance]float64{
	DefaultImportance:   1.0,
	SomewhatImportance:  1.25,
	ImportantImportance: 1.5,
	VeryImportance:      2.0,
	ExcludeImportance:   0.0,
}

// AllImportances lists importance levels from least to most influential, with exclude last.
var AllImportances = []Importance{DefaultImportance, SomewhatImportance, ImportantImportance, VeryImportance, ExcludeImportance}

// AllCategories lists the metric categories in display order.
var AllCategories = []Category{MacrosCategory, MicrosCategory, EnvironmentCategory}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid suggestion cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidHistoryBackends lists all valid ranking history backends.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidMissingPolicies lists all valid missing-measurement policies.
var ValidMissingPolicies = map[MissingPolicy]struct{}{
	PartialPolicy: {},
	ExcludePolicy: {},
}

// Factor returns the weight multiplier of the importance level.
// Unknown levels behave like the default level.
func (i Importance) Factor() float64 {
	if f, ok := importanceFactors[i]; ok {
		return f
	}
	return 1.0
}

// ParseImportance accepts short forms (very) and long forms (Very important), case-insensitive.
func ParseImportance(s string) (Importance, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return DefaultImportance, nil
	}
	if norm != "important" {
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "important"))
	}
	imp := Importance(norm)
	if _, ok := importanceFactors[imp]; !ok {
		return "", fmt.Errorf("invalid importance '%s'. must be default, somewhat, important, very, exclude", s)
	}
	return imp, nil
}
