package analysis

import (
	"fmt"

	"github.com/idrees-mahmood/mcbmap/internal/models"
)

// explain builds the plain-language verdict line so consumers never have
// to interpret raw statistics themselves.
func explain(r *models.AnalysisResult) string {
	day := r.Date.Format("2 January 2006")

	if r.ProtestDayFootfall == nil {
		return fmt.Sprintf("No footfall record exists for %s on %s %s, so no comparison against its baseline is possible.",
			r.Station, r.DayOfWeek, day)
	}
	if r.Baseline.Count < minBaselineCount {
		return fmt.Sprintf("Only %d comparable %ss were found in the 14 weeks around %s; at least %d are needed for a reliable baseline.",
			r.Baseline.Count, r.DayOfWeek, day, minBaselineCount)
	}
	if r.EffectiveZ() == nil {
		return fmt.Sprintf("Footfall at %s was identical across all %d comparable %ss, so the deviation on %s cannot be scored.",
			r.Station, r.Baseline.Count, r.DayOfWeek, day)
	}

	z := *r.EffectiveZ()
	observed := *r.ProtestDayFootfall
	basis := fmt.Sprintf("the typical %s baseline of %.0f", r.DayOfWeek, r.Baseline.Mean)
	if r.AdjustedZScore != nil && r.WeatherAdjusted != nil {
		basis = fmt.Sprintf("a weather-adjusted %s baseline of %.0f (%d similar days)",
			r.DayOfWeek, r.WeatherAdjusted.Mean, r.WeatherAdjusted.Count)
	}

	deviation := fmt.Sprintf("%s recorded %d entries and exits on %s, %s against %s",
		r.Station, observed, day, FormatZScore(z), basis)
	if r.PValue != nil {
		deviation += fmt.Sprintf(" (%s)", FormatPValue(*r.PValue))
	}
	if r.PercentChange != nil {
		deviation += fmt.Sprintf(", a %+.1f%% change", *r.PercentChange)
	}

	switch r.ImpactCategory {
	case models.ImpactIncrease:
		return deviation + ". Footfall rose above its usual range; the event may have drawn additional visitors."
	case models.ImpactNone:
		return deviation + ". This is within one standard deviation of normal, so no impact is detectable."
	case models.ImpactMinorDecrease:
		return deviation + ". Footfall dipped below baseline, but not by a statistically significant margin."
	case models.ImpactModerateDecrease:
		return deviation + ". Footfall fell noticeably below its usual range for this day of the week."
	default:
		return deviation + ". Footfall fell far below baseline, a statistically significant decrease."
	}
}
