package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/huangsam/greenplate/core/algo"
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/schema"
)

// RecipeView is everything the detail view shows about one recipe.
type RecipeView struct {
	Recipe          schema.Recipe      `json:"recipe"`
	Score           schema.ScoreResult `json:"score"`
	Label           string             `json:"label"`
	CaloriesPerMeal float64            `json:"calories"`
	CalorieTarget   float64            `json:"calorie_target"`
	Bars            []MetricBar        `json:"metrics"`
	Provenance      schema.Provenance  `json:"provenance"`
}

// NewRecipeView assembles the detail view of a scored recipe.
func NewRecipeView(r schema.Recipe, score schema.ScoreResult, p algo.Preferences) RecipeView {
	return RecipeView{
		Recipe:          r,
		Score:           score,
		Label:           schema.GetPlainLabel(score.Final),
		CaloriesPerMeal: r.Kcal,
		CalorieTarget:   schema.DefaultDailyCalories / float64(p.Meals()),
		Bars:            MetricBars(r, p),
		Provenance:      r.Provenance(),
	}
}

// PrintRecipeDetail displays the recipe card, its score, metric bars and provenance warnings.
func PrintRecipeDetail(view RecipeView, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecipeCSV(w, view)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for recipe details")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecipeText(w, view, cfg)
		}, "Wrote text")
	}
}

// writeRecipeText renders the recipe card.
func writeRecipeText(w io.Writer, view RecipeView, cfg *contract.Config) error {
	r := view.Recipe
	fmtFloat := createFormatter(cfg.Precision)
	heading := lipgloss.NewStyle().Bold(true)
	if !cfg.UseColors {
		heading = lipgloss.NewStyle()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", heading.Render(fmt.Sprintf("🥗 %s (#%d)", r.Title, r.ID)))
	fmt.Fprintf(&b, "%s\n", recipeFacts(r))
	if r.URL != "" {
		fmt.Fprintf(&b, "%s\n", r.URL)
	}

	final := fmtFloat(view.Score.Final)
	label := view.Label
	if cfg.UseColors {
		label = contract.GetColorLabel(view.Score.Final)
	}
	fmt.Fprintf(&b, "\nScore: %s (%s) | Health %s | Environment %s\n", final, label, fmtFloat(view.Score.Health), fmtFloat(view.Score.Environment))
	if view.Score.Partial {
		missing := make([]string, len(view.Score.Missing))
		for i, k := range view.Score.Missing {
			missing[i] = string(k)
		}
		fmt.Fprintf(&b, "ℹ️  Scored without: %s\n", strings.Join(missing, ", "))
	}
	fmt.Fprintf(&b, "Calories: %.0f kcal of %.0f kcal per meal\n", view.CaloriesPerMeal, view.CalorieTarget)

	if len(r.Ingredients) > 0 {
		fmt.Fprintf(&b, "\n%s\n", heading.Render("Ingredients"))
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&b, "  - %s\n", ing.Label())
		}
	}
	if steps := r.SortedSteps(); len(steps) > 0 {
		fmt.Fprintf(&b, "\n%s\n", heading.Render("Steps"))
		for _, s := range steps {
			fmt.Fprintf(&b, "  %d. %s\n", s.Number, s.Text)
		}
	}

	nameWidth := 0
	for _, bar := range view.Bars {
		nameWidth = max(nameWidth, len([]rune(bar.Name)))
	}
	nameWidth = min(nameWidth, max(terminalWidth(cfg)-barWidth-30, 12))
	for _, category := range schema.AllCategories {
		fmt.Fprintf(&b, "\n%s\n", heading.Render(categoryTitle(category)))
		for _, bar := range view.Bars {
			if bar.Category != category {
				continue
			}
			name := contract.TruncateText(bar.Name, nameWidth)
			if !bar.Present {
				fmt.Fprintf(&b, "  %-*s %s n/a\n", nameWidth, name, strings.Repeat(" ", barWidth))
				continue
			}
			shape := schema.UpperShape
			if def, ok := schema.LookupMetric(bar.Key); ok {
				shape = def.Shape
			}
			fmt.Fprintf(&b, "  %-*s %s %s %s / %s\n", nameWidth, name, renderBar(bar, cfg.UseColors),
				formatAmount(bar.Value), bar.Unit, formatTarget(shape, bar.Target, bar.Unit))
		}
	}

	fmt.Fprintf(&b, "\n%s\n", heading.Render("Data provenance"))
	writeProvenance(&b, view.Provenance, len(r.Ingredients))

	_, err := io.WriteString(w, b.String())
	return err
}

// recipeFacts joins the non-empty card facts into one line.
func recipeFacts(r schema.Recipe) string {
	var facts []string
	if r.Servings != "" {
		facts = append(facts, "Servings: "+r.Servings)
	}
	if r.Difficulty != "" {
		facts = append(facts, "Difficulty: "+r.Difficulty)
	}
	if r.PrepTime != "" {
		facts = append(facts, "Prep: "+r.PrepTime)
	}
	if r.CookTime != "" {
		facts = append(facts, "Cook: "+r.CookTime)
	}
	facts = append(facts, fmt.Sprintf("Rating: %.1f (%d ratings)", r.Rating, r.NumberOfRatings))
	return strings.Join(facts, " | ")
}

// categoryTitle returns the section heading of a metric category.
func categoryTitle(c schema.Category) string {
	switch c {
	case schema.MacrosCategory:
		return "Macronutrients"
	case schema.MicrosCategory:
		return "Micronutrients"
	case schema.EnvironmentCategory:
		return "Environmental impact"
	default:
		return string(c)
	}
}

// writeProvenance lists ingredients lacking nutrition or environment reference data.
func writeProvenance(b *strings.Builder, p schema.Provenance, total int) {
	if total == 0 {
		fmt.Fprintln(b, "  No ingredient data available")
		return
	}
	if len(p.MissingNutrition) == 0 {
		fmt.Fprintln(b, "  ✅ All ingredients have nutrition reference data")
	} else {
		fmt.Fprintf(b, "  ⚠️  %d of %d ingredient(s) without nutrition reference data: %s\n",
			len(p.MissingNutrition), total, strings.Join(p.MissingNutrition, ", "))
	}
	if len(p.MissingEnvironment) == 0 {
		fmt.Fprintln(b, "  ✅ All ingredients have environment reference data")
	} else {
		fmt.Fprintf(b, "  ⚠️  %d of %d ingredient(s) without environment reference data: %s\n",
			len(p.MissingEnvironment), total, strings.Join(p.MissingEnvironment, ", "))
	}
}

// writeRecipeCSV writes one line per metric with its status.
func writeRecipeCSV(w io.Writer, view RecipeView) error {
	header := []string{"recipe_id", "metric", "category", "unit", "value", "meal_lower", "meal_upper", "status"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		id := strconv.Itoa(view.Recipe.ID)
		for _, bar := range view.Bars {
			value := ""
			if bar.Present {
				value = strconv.FormatFloat(bar.Value, 'g', -1, 64)
			}
			rec := []string{
				id,
				string(bar.Key),
				string(bar.Category),
				bar.Unit,
				value,
				strconv.FormatFloat(bar.Target.Lower, 'g', -1, 64),
				strconv.FormatFloat(bar.Target.Upper, 'g', -1, 64),
				bar.Status,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
