package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/parquet"
	"github.com/huangsam/greenplate/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// rankingJSON is the JSON document of a ranking request.
type rankingJSON struct {
	Results []schema.EnrichedScoreResult `json:"results"`
	Report  schema.RankReport            `json:"report"`
}

// PrintRankResults outputs ranked recipes, dispatching based on the output format configured.
func PrintRankResults(results []schema.ScoreResult, report schema.RankReport, cfg *contract.Config, duration time.Duration) error {
	enriched := schema.EnrichResults(results)
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rankingJSON{Results: enriched, Report: report})
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankCSV(w, enriched, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteScoreRows(w, parquet.ConvertScoreResults(enriched))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankTable(w, enriched, report, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRankTable generates and writes the human-readable table.
func writeRankTable(w io.Writer, results []schema.EnrichedScoreResult, report schema.RankReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "ID", "Title", "Health", "Env", "Final", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	titleWidth := getMaxTableTitleWidth(cfg)
	var data [][]string
	for _, r := range results {
		final := fmtFloat(r.Final)
		if r.Partial {
			final += "*"
		}
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			strconv.Itoa(r.RecipeID),
			contract.TruncateText(r.Title, titleWidth),
			fmtFloat(r.Health),
			fmtFloat(r.Environment),
			final,
			contract.GetColorLabel(r.Final),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(report.Partial) > 0 {
		if _, err := fmt.Fprintln(w, "* scored with missing measurements"); err != nil {
			return err
		}
	}
	prefs := cfg.Preferences
	if _, err := fmt.Fprintf(w, "Showing top %d of %d scored recipes (health %d%% / environment %d%%, %d meals per day)\n",
		len(results), report.Scored, prefs.HealthWeight(), prefs.Split(), prefs.Meals()); err != nil {
		return err
	}
	source := "suggestion service"
	if report.CacheHit {
		source = "cache"
	}
	if _, err := fmt.Fprintf(w, "Ranking completed in %v. Suggestions from %s. Cache backend: %s\n", duration, source, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeRankCSV writes ranked recipes in CSV format.
func writeRankCSV(w io.Writer, results []schema.EnrichedScoreResult, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"recipe_id",
		"title",
		"rating",
		"health_score",
		"environment_score",
		"final_score",
		"label",
		"partial",
		"missing",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			missing := make([]string, len(r.Missing))
			for i, k := range r.Missing {
				missing[i] = string(k)
			}
			rec := []string{
				strconv.Itoa(r.Rank),
				strconv.Itoa(r.RecipeID),
				r.Title,
				fmtFloat(r.Rating),
				fmtFloat(r.Health),
				fmtFloat(r.Environment),
				fmtFloat(r.Final),
				r.Label,
				strconv.FormatBool(r.Partial),
				strings.Join(missing, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// PrintRankReport writes one line per candidate condition worth reporting.
// Nothing is written for a clean request.
func PrintRankReport(w io.Writer, report schema.RankReport) {
	if len(report.Unparseable) > 0 {
		fmt.Fprintf(w, "⚠️  Ignored %d unparseable suggestion(s): %s\n", len(report.Unparseable), strings.Join(report.Unparseable, ", "))
	}
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(w, "⚠️  Ignored %d duplicate id(s): %s\n", len(report.Duplicates), joinIDs(report.Duplicates))
	}
	if len(report.CatalogMisses) > 0 {
		fmt.Fprintf(w, "⚠️  %d suggested recipe(s) not in catalog: %s\n", len(report.CatalogMisses), joinIDs(report.CatalogMisses))
	}
	if len(report.Failed) > 0 {
		fmt.Fprintf(w, "⚠️  %d recipe(s) failed to score:\n", len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(w, "   #%d: %s\n", f.RecipeID, f.Reason)
		}
	}
	if len(report.Partial) > 0 {
		fmt.Fprintf(w, "ℹ️  %d recipe(s) scored with missing measurements: %s\n", len(report.Partial), joinIDs(report.Partial))
	}
}

// joinIDs formats recipe ids as a comma-separated list.
func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
