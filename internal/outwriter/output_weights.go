package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WeightsReport is the JSON document of the weights command.
type WeightsReport struct {
	Meals       int                `json:"meals"`
	Health      int                `json:"health_share"`
	Environment int                `json:"environment_share"`
	Metrics     []schema.WeightRow `json:"metrics"`
}

// NewWeightsReport builds the weights report of a preferences snapshot.
func NewWeightsReport(p algo.Preferences) WeightsReport {
	return WeightsReport{
		Meals:       p.Meals(),
		Health:      p.HealthWeight(),
		Environment: p.Split(),
		Metrics:     p.WeightRows(),
	}
}

// PrintWeights displays effective weights, importance levels and per-meal targets.
func PrintWeights(cfg *contract.Config) error {
	report := NewWeightsReport(cfg.Preferences)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsCSV(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for weights")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsTable(w, report)
		}, "Wrote table")
	}
}

// writeWeightsTable renders one row per metric.
func writeWeightsTable(w io.Writer, report WeightsReport) error {
	if _, err := fmt.Fprintf(w, "⚖️  %d meals per day | Health %d%% / Environment %d%%\n",
		report.Meals, report.Health, report.Environment); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Metric", "Shape", "Importance", "Base", "Effective", "Per-meal target"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, row := range report.Metrics {
		data = append(data, []string{
			string(row.Category),
			row.Name,
			string(row.Shape),
			string(row.Importance),
			fmt.Sprintf("%.4f", row.Base),
			fmt.Sprintf("%.4f", row.Effective),
			formatTarget(row.Shape, row.MealTarget, row.Unit),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeWeightsCSV writes the weights report in CSV format.
func writeWeightsCSV(w io.Writer, report WeightsReport) error {
	header := []string{"key", "name", "category", "shape", "unit", "importance", "base_weight", "effective_weight", "meal_lower", "meal_upper"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range report.Metrics {
			rec := []string{
				string(row.Key),
				row.Name,
				string(row.Category),
				string(row.Shape),
				row.Unit,
				string(row.Importance),
				strconv.FormatFloat(row.Base, 'g', -1, 64),
				strconv.FormatFloat(row.Effective, 'g', -1, 64),
				strconv.FormatFloat(row.MealTarget.Lower, 'g', -1, 64),
				strconv.FormatFloat(row.MealTarget.Upper, 'g', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// formatTarget renders a target the way its shape reads it.
func formatTarget(shape schema.Shape, t schema.Target, unit string) string {
	switch shape {
	case schema.IntervalShape:
		return fmt.Sprintf("%s-%s %s", formatAmount(t.Lower), formatAmount(t.Upper), unit)
	case schema.UpperShape:
		return fmt.Sprintf("≤ %s %s", formatAmount(t.Upper), unit)
	case schema.RDIShape:
		return fmt.Sprintf("~%s %s", formatAmount(t.Lower), unit)
	case schema.RDIWithULShape:
		return fmt.Sprintf("~%s %s (≤ %s)", formatAmount(t.Lower), unit, formatAmount(t.Upper))
	default:
		return ""
	}
}

// formatAmount prints small environmental quantities in scientific notation.
func formatAmount(v float64) string {
	if v != 0 && (v < 0.01 && v > -0.01) {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
