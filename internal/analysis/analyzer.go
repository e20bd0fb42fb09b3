// Package analysis scores a station's footfall on a target date against
// its own recent same-day-of-week history and classifies the deviation.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/idrees-mahmood/mcbmap/internal/footfall"
	"github.com/idrees-mahmood/mcbmap/internal/geo"
	"github.com/idrees-mahmood/mcbmap/internal/metrics"
	"github.com/idrees-mahmood/mcbmap/internal/models"
	"github.com/idrees-mahmood/mcbmap/internal/weather"
)

// Analyzer computes impact assessments. It only reads from its
// collaborators, so concurrent Analyze calls need no coordination once the
// underlying stores are loaded.
type Analyzer struct {
	store   *footfall.Store
	weather *weather.Provider
	locator *geo.Locator
}

// NewAnalyzer wires an analyzer over a footfall store, a weather provider,
// and a station locator.
func NewAnalyzer(store *footfall.Store, provider *weather.Provider, locator *geo.Locator) *Analyzer {
	return &Analyzer{store: store, weather: provider, locator: locator}
}

// StationsNearRoute returns the gazetteer stations within radiusMeters of
// any point of the route polyline, in order of first proximity.
func (a *Analyzer) StationsNearRoute(route []geo.RoutePoint, radiusMeters float64) []models.Station {
	return a.locator.FindNearRoute(route, radiusMeters)
}

// Analyze assesses one station on one target date. It never fails for
// data-quality reasons: whatever could not be computed comes back as a nil
// field and, when the observation or baseline is missing, an
// INSUFFICIENT_DATA verdict.
func (a *Analyzer) Analyze(ctx context.Context, station string, target time.Time) *models.AnalysisResult {
	window := footfall.WindowAround(target)
	weatherDays := a.weather.Range(ctx, window)

	result := &models.AnalysisResult{
		Station: station,
		Date:    target,
	}

	observation := a.store.RecordFor(station, target)
	if observation != nil {
		total := observation.Total
		result.ProtestDayFootfall = &total
		result.DayOfWeek = observation.DayOfWeek
	} else {
		// No record to trust a label from, so derive it from the calendar.
		result.DayOfWeek = target.Weekday().String()
	}
	result.ProtestDayWeather = weather.For(weatherDays, target)

	// The target day never contributes to its own baseline.
	var baseline []models.FootfallRecord
	for _, rec := range a.store.SameDayRecordsFor(station, result.DayOfWeek, window) {
		if rec.Date.Equal(target) {
			continue
		}
		baseline = append(baseline, rec)
	}
	totals := make([]int, len(baseline))
	for i, rec := range baseline {
		totals[i] = rec.Total
	}
	result.Baseline = baselineStats(totals)

	if result.ProtestDayWeather != nil {
		result.WeatherAdjusted = weatherAdjusted(baseline, weatherDays, *result.ProtestDayWeather)
	}

	if observation != nil && result.Baseline.StdDev > 0 {
		z := (float64(observation.Total) - result.Baseline.Mean) / result.Baseline.StdDev
		pct := percentileOf(result.Baseline.Values, observation.Total)
		p := normalPValue(z)
		result.ZScore = &z
		result.Percentile = &pct
		result.PValue = &p
		result.IsSignificant = p < significanceLevel
	}
	if observation != nil && result.WeatherAdjusted != nil && result.WeatherAdjusted.StdDev > 0 {
		az := (float64(observation.Total) - result.WeatherAdjusted.Mean) / result.WeatherAdjusted.StdDev
		result.AdjustedZScore = &az
	}

	if observation != nil && result.Baseline.Mean > 0 {
		change := (float64(observation.Total) - result.Baseline.Mean) / result.Baseline.Mean * 100
		result.PercentChange = &change
	}

	if observation == nil || result.Baseline.Count < minBaselineCount {
		result.ImpactCategory = models.ImpactInsufficientData
	} else {
		result.ImpactCategory = classify(result.EffectiveZ(), result.IsSignificant)
	}
	result.Chart = a.chartSeries(station, window, weatherDays, target)
	result.ImpactExplanation = explain(result)

	metrics.AnalysesTotal.WithLabelValues(string(result.ImpactCategory)).Inc()
	return result
}

// weatherAdjusted narrows the baseline to days whose weather resembles the
// target day's. Returns nil unless enough similar days remain for the
// standard deviation to mean anything.
func weatherAdjusted(baseline []models.FootfallRecord, days []models.DailyWeather, targetWeather models.DailyWeather) *models.WeatherAdjustedStats {
	var totals []int
	for _, rec := range baseline {
		w := weather.For(days, rec.Date)
		if w == nil {
			continue
		}
		if weather.IsSimilar(*w, targetWeather) {
			totals = append(totals, rec.Total)
		}
	}
	if len(totals) < minBaselineCount {
		return nil
	}
	stats := baselineStats(totals)
	wet := "dry"
	if targetWeather.Precipitation >= 1 {
		wet = "wet"
	}
	return &models.WeatherAdjustedStats{
		Mean:   stats.Mean,
		StdDev: stats.StdDev,
		Count:  stats.Count,
		Criteria: fmt.Sprintf("%s conditions, max temp within 5°C of %.1f°C, %s days",
			weather.ImpactCategory(targetWeather), targetWeather.TempMax, wet),
	}
}

// chartSeries lists every record for the station inside the window, date
// ascending, each tagged with its weather and whether it is the target day.
func (a *Analyzer) chartSeries(station string, window models.DateRange, days []models.DailyWeather, target time.Time) []models.ChartPoint {
	var points []models.ChartPoint
	for _, rec := range a.store.RecordsFor(station, window) {
		points = append(points, models.ChartPoint{
			Date:         rec.Date,
			DayOfWeek:    rec.DayOfWeek,
			Total:        rec.Total,
			Weather:      weather.For(days, rec.Date),
			IsProtestDay: rec.Date.Equal(target),
		})
	}
	return points
}

// AnalyzeRoute assesses every station within radiusMeters of the route and
// returns the results ranked by effect size.
func (a *Analyzer) AnalyzeRoute(ctx context.Context, route []geo.RoutePoint, radiusMeters float64, target time.Time) []*models.AnalysisResult {
	stations := a.locator.FindNearRoute(route, radiusMeters)
	results := make([]*models.AnalysisResult, 0, len(stations))
	for _, st := range stations {
		results = append(results, a.Analyze(ctx, st.Name, target))
	}
	Rank(results)
	return results
}

// Rank orders results by absolute effective z-score descending, so the
// stations with the strongest deviations lead. Results with no usable
// statistic sort last; ties break on station name for stability.
func Rank(results []*models.AnalysisResult) {
	sort.SliceStable(results, func(i, j int) bool {
		zi, zj := results[i].EffectiveZ(), results[j].EffectiveZ()
		switch {
		case zi == nil && zj == nil:
			return results[i].Station < results[j].Station
		case zi == nil:
			return false
		case zj == nil:
			return true
		}
		ai, aj := abs(*zi), abs(*zj)
		if ai != aj {
			return ai > aj
		}
		return results[i].Station < results[j].Station
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
