package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/idrees-mahmood/mcbmap/internal/footfall"
	"github.com/idrees-mahmood/mcbmap/internal/geo"
	"github.com/idrees-mahmood/mcbmap/internal/models"
	"github.com/idrees-mahmood/mcbmap/internal/weather"
)

// mildWeatherServer serves a synthetic archive: one mild dry day per
// requested date, so every baseline day is weather-similar to every other.
func mildWeatherServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, err := time.Parse("2006-01-02", r.URL.Query().Get("start_date"))
		if err != nil {
			t.Errorf("bad start_date: %v", err)
		}
		end, _ := time.Parse("2006-01-02", r.URL.Query().Get("end_date"))

		var dates []string
		var maxs, mins, precs []float64
		var codes []int
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d.Format("2006-01-02"))
			maxs = append(maxs, 18)
			mins = append(mins, 10)
			precs = append(precs, 0)
			codes = append(codes, 0)
		}
		body := map[string]any{"daily": map[string]any{
			"time":               dates,
			"temperature_2m_max": maxs,
			"temperature_2m_min": mins,
			"precipitation_sum":  precs,
			"weathercode":        codes,
		}}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// variableWeatherServer serves mild dry weather except on the dates in
// wet, which get heavy rain. Lets fixtures split the window into
// weather-similar and dissimilar days.
func variableWeatherServer(t *testing.T, wet map[string]bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := time.Parse("2006-01-02", r.URL.Query().Get("start_date"))
		end, _ := time.Parse("2006-01-02", r.URL.Query().Get("end_date"))

		var dates []string
		var maxs, precs []float64
		var codes []int
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := d.Format("2006-01-02")
			dates = append(dates, key)
			if wet[key] {
				maxs = append(maxs, 15)
				precs = append(precs, 15)
				codes = append(codes, 65)
			} else {
				maxs = append(maxs, 18)
				precs = append(precs, 0)
				codes = append(codes, 0)
			}
		}
		body := map[string]any{"daily": map[string]any{
			"time":               dates,
			"temperature_2m_max": maxs,
			"precipitation_sum":  precs,
			"weathercode":        codes,
		}}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// baselineSaturdays returns n Saturdays alternating before and after the
// target, never the target itself, all inside the 49-day window.
func baselineSaturdays(target time.Time, n int) []time.Time {
	var out []time.Time
	for offset := -7; len(out) < n; offset -= 7 {
		out = append(out, target.AddDate(0, 0, offset))
		if len(out) < n {
			out = append(out, target.AddDate(0, 0, -offset))
		}
	}
	return out
}

func newTestAnalyzer(t *testing.T, rows []string) *Analyzer {
	t.Helper()
	return newTestAnalyzerWith(t, rows, mildWeatherServer(t).URL)
}

func newTestAnalyzerWith(t *testing.T, rows []string, weatherURL string) *Analyzer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "footfall.csv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	provider := weather.NewProvider(weatherURL, rand.New(rand.NewSource(1)))
	return NewAnalyzer(footfall.NewStore(path), provider, geo.NewLocator())
}

func row(d time.Time, station string, entries, exits int) string {
	return fmt.Sprintf("%s,%s,%s,%d,%d", d.Format("20060102"), d.Weekday(), station, entries, exits)
}

func mustSaturday(t *testing.T) time.Time {
	t.Helper()
	d, _ := time.Parse("2006-01-02", "2025-06-14")
	if d.Weekday() != time.Saturday {
		t.Fatal("fixture target is not a Saturday")
	}
	return d.UTC()
}

func TestAnalyzeSignificantDecrease(t *testing.T) {
	target := mustSaturday(t)
	values := []int{9000, 9200, 9400, 9600, 9800, 10000, 10200, 10400, 10600, 10800}

	rows := []string{row(target, "Westminster", 4000, 4000)} // 8000 observed
	for i, d := range baselineSaturdays(target, len(values)) {
		rows = append(rows, row(d, "Westminster", values[i], 0))
	}

	a := newTestAnalyzer(t, rows)
	res := a.Analyze(context.Background(), "Westminster", target)

	if res.ProtestDayFootfall == nil || *res.ProtestDayFootfall != 8000 {
		t.Fatalf("ProtestDayFootfall = %v, want 8000", res.ProtestDayFootfall)
	}
	if res.Baseline.Count != 10 {
		t.Fatalf("baseline count = %d, want 10", res.Baseline.Count)
	}
	if math.Abs(res.Baseline.Mean-9900) > 1e-9 {
		t.Errorf("baseline mean = %v, want 9900", res.Baseline.Mean)
	}
	if res.ZScore == nil {
		t.Fatal("ZScore is nil")
	}
	if got := *res.ZScore; math.Abs(got-(-3.307)) > 0.01 {
		t.Errorf("ZScore = %v, want about -3.31", got)
	}
	if res.ImpactCategory != models.ImpactSignificantDecrease {
		t.Errorf("category = %q, want %q", res.ImpactCategory, models.ImpactSignificantDecrease)
	}
	if !res.IsSignificant {
		t.Error("deviation should be significant")
	}
	if res.PercentChange == nil || math.Abs(*res.PercentChange-(-19.19)) > 0.01 {
		t.Errorf("PercentChange = %v, want about -19.19", res.PercentChange)
	}
	if res.Percentile == nil || *res.Percentile != 0 {
		t.Errorf("Percentile = %v, want 0", res.Percentile)
	}
	// Uniform mild weather makes every baseline day similar, so the
	// adjusted branch exists and matches the raw one.
	if res.WeatherAdjusted == nil {
		t.Fatal("WeatherAdjusted is nil under uniform weather")
	}
	if res.WeatherAdjusted.Count != 10 {
		t.Errorf("adjusted count = %d, want 10", res.WeatherAdjusted.Count)
	}
	if res.AdjustedZScore == nil || math.Abs(*res.AdjustedZScore-*res.ZScore) > 1e-9 {
		t.Errorf("AdjustedZScore = %v, want equal to raw %v", res.AdjustedZScore, *res.ZScore)
	}
	if res.ImpactExplanation == "" {
		t.Error("ImpactExplanation is empty")
	}
}

func TestAnalyzeAdjustmentOmittedWhenFewSimilarDays(t *testing.T) {
	target := mustSaturday(t)
	values := []int{9000, 9200, 9400, 9600, 9800, 10000, 10200, 10400, 10600, 10800}
	dates := baselineSaturdays(target, len(values))

	rows := []string{row(target, "Westminster", 4000, 4000)}
	for i, d := range dates {
		rows = append(rows, row(d, "Westminster", values[i], 0))
	}

	// Heavy rain on all but two baseline Saturdays; the target day stays
	// mild, so only two days share its conditions.
	wet := make(map[string]bool)
	for _, d := range dates[:len(dates)-2] {
		wet[d.Format("2006-01-02")] = true
	}
	srv := variableWeatherServer(t, wet)

	a := newTestAnalyzerWith(t, rows, srv.URL)
	res := a.Analyze(context.Background(), "Westminster", target)

	if res.WeatherAdjusted != nil {
		t.Errorf("WeatherAdjusted = %+v, want nil with only 2 similar days", res.WeatherAdjusted)
	}
	if res.AdjustedZScore != nil {
		t.Errorf("AdjustedZScore = %v, want nil", *res.AdjustedZScore)
	}
	// The raw branch is untouched by the omitted adjustment.
	if res.Baseline.Count != 10 {
		t.Errorf("baseline count = %d, want 10", res.Baseline.Count)
	}
	if res.ZScore == nil {
		t.Fatal("ZScore is nil, want raw statistic intact")
	}
	if got := res.EffectiveZ(); got != res.ZScore {
		t.Error("effective z should fall back to the raw z-score")
	}
	if res.ImpactCategory != models.ImpactSignificantDecrease {
		t.Errorf("category = %q, want %q from the raw branch", res.ImpactCategory, models.ImpactSignificantDecrease)
	}
}

func TestAnalyzeAdjustedZDrivesClassification(t *testing.T) {
	target := mustSaturday(t)
	dates := baselineSaturdays(target, 10)

	// Four rainy Saturdays with suppressed footfall drag the raw mean
	// down to 8550, so the observed 9900 looks like a mild rise
	// (z = +0.65). Against the six mild Saturdays alone (mean 10250,
	// stddev = 170.8) the same observation is a sharp drop (z = -2.05).
	rows := []string{row(target, "Westminster", 4950, 4950)}
	wet := make(map[string]bool)
	for _, d := range dates[:4] {
		rows = append(rows, row(d, "Westminster", 3000, 3000))
		wet[d.Format("2006-01-02")] = true
	}
	for i, d := range dates[4:] {
		rows = append(rows, row(d, "Westminster", 5000+i*100, 5000))
	}
	srv := variableWeatherServer(t, wet)

	a := newTestAnalyzerWith(t, rows, srv.URL)
	res := a.Analyze(context.Background(), "Westminster", target)

	if res.ZScore == nil || math.Abs(*res.ZScore-0.647) > 0.01 {
		t.Fatalf("ZScore = %v, want about +0.65", res.ZScore)
	}
	if res.WeatherAdjusted == nil {
		t.Fatal("WeatherAdjusted is nil, want stats over the 6 mild days")
	}
	if res.WeatherAdjusted.Count != 6 {
		t.Errorf("adjusted count = %d, want 6", res.WeatherAdjusted.Count)
	}
	if math.Abs(res.WeatherAdjusted.Mean-10250) > 1e-9 {
		t.Errorf("adjusted mean = %v, want 10250", res.WeatherAdjusted.Mean)
	}
	if res.AdjustedZScore == nil || math.Abs(*res.AdjustedZScore-(-2.049)) > 0.01 {
		t.Fatalf("AdjustedZScore = %v, want about -2.05", res.AdjustedZScore)
	}
	if got := res.EffectiveZ(); got != res.AdjustedZScore {
		t.Error("effective z should prefer the adjusted z-score")
	}
	// Raw z alone would say no_impact; the adjusted statistic flips the
	// verdict.
	if res.ImpactCategory != models.ImpactSignificantDecrease {
		t.Errorf("category = %q, want %q", res.ImpactCategory, models.ImpactSignificantDecrease)
	}
	// Significance still reflects the raw two-tailed test.
	if res.IsSignificant {
		t.Error("IsSignificant = true, want false from the raw p-value")
	}
}

func TestAnalyzeZeroSpreadBaseline(t *testing.T) {
	target := mustSaturday(t)
	rows := []string{row(target, "Westminster", 3500, 3500)}
	for _, d := range baselineSaturdays(target, 8) {
		rows = append(rows, row(d, "Westminster", 5000, 5000))
	}

	a := newTestAnalyzer(t, rows)
	res := a.Analyze(context.Background(), "Westminster", target)

	if res.ZScore != nil {
		t.Errorf("ZScore = %v, want nil for zero-spread baseline", *res.ZScore)
	}
	if res.ImpactCategory != models.ImpactInsufficientData {
		t.Errorf("category = %q, want %q", res.ImpactCategory, models.ImpactInsufficientData)
	}
	// The deviation is obvious to a human, but without spread it cannot
	// be scored; percent change is still reported.
	if res.PercentChange == nil || math.Abs(*res.PercentChange-(-30)) > 1e-9 {
		t.Errorf("PercentChange = %v, want -30", res.PercentChange)
	}
}

func TestAnalyzeMissingObservation(t *testing.T) {
	target := mustSaturday(t)
	var rows []string
	for _, d := range baselineSaturdays(target, 8) {
		rows = append(rows, row(d, "Westminster", 5000, 5000))
	}

	a := newTestAnalyzer(t, rows)
	res := a.Analyze(context.Background(), "Westminster", target)

	if res.ProtestDayFootfall != nil {
		t.Errorf("ProtestDayFootfall = %v, want nil", *res.ProtestDayFootfall)
	}
	if res.DayOfWeek != "Saturday" {
		t.Errorf("DayOfWeek = %q, want derived Saturday", res.DayOfWeek)
	}
	if res.ImpactCategory != models.ImpactInsufficientData {
		t.Errorf("category = %q, want %q", res.ImpactCategory, models.ImpactInsufficientData)
	}
	if res.PercentChange != nil {
		t.Errorf("PercentChange = %v, want nil", *res.PercentChange)
	}
	if res.Baseline.Count != 8 {
		t.Errorf("baseline still computed: count = %d, want 8", res.Baseline.Count)
	}
}

func TestAnalyzeSelfExclusion(t *testing.T) {
	target := mustSaturday(t)
	rows := []string{row(target, "Westminster", 50000, 50000)}
	for _, d := range baselineSaturdays(target, 6) {
		rows = append(rows, row(d, "Westminster", 5000, 5000))
	}

	a := newTestAnalyzer(t, rows)
	res := a.Analyze(context.Background(), "Westminster", target)

	if res.Baseline.Count != 6 {
		t.Fatalf("baseline count = %d, want 6 (target excluded)", res.Baseline.Count)
	}
	for _, v := range res.Baseline.Values {
		if v == 100000 {
			t.Error("target day's own total leaked into its baseline")
		}
	}
}

func TestAnalyzeTooFewBaselineDays(t *testing.T) {
	target := mustSaturday(t)
	rows := []string{
		row(target, "Westminster", 4000, 4000),
		row(target.AddDate(0, 0, -7), "Westminster", 5000, 4000),
		row(target.AddDate(0, 0, 7), "Westminster", 5200, 4100),
	}

	a := newTestAnalyzer(t, rows)
	res := a.Analyze(context.Background(), "Westminster", target)

	if res.ImpactCategory != models.ImpactInsufficientData {
		t.Errorf("category = %q, want %q for 2-day baseline", res.ImpactCategory, models.ImpactInsufficientData)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	target := mustSaturday(t)
	rows := []string{row(target, "Westminster", 4500, 4500)}
	for i, d := range baselineSaturdays(target, 8) {
		rows = append(rows, row(d, "Westminster", 5000+i*100, 4800))
	}

	a := newTestAnalyzer(t, rows)
	first := a.Analyze(context.Background(), "Westminster", target)
	second := a.Analyze(context.Background(), "Westminster", target)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated analysis of the same inputs differed")
	}
}

func TestAnalyzeChartSeries(t *testing.T) {
	target := mustSaturday(t)
	rows := []string{
		row(target, "Westminster", 4000, 4000),
		row(target.AddDate(0, 0, -7), "Westminster", 5000, 5000),
		row(target.AddDate(0, 0, -1), "Westminster", 6000, 6000), // a Friday
		row(target.AddDate(0, 0, 7), "Westminster", 5100, 5100),
	}

	a := newTestAnalyzer(t, rows)
	res := a.Analyze(context.Background(), "Westminster", target)

	if len(res.Chart) != 4 {
		t.Fatalf("chart has %d points, want 4 (all window records, not just Saturdays)", len(res.Chart))
	}
	var protestDays int
	for i, p := range res.Chart {
		if i > 0 && p.Date.Before(res.Chart[i-1].Date) {
			t.Error("chart not sorted by date")
		}
		if p.Weather == nil {
			t.Errorf("chart point %s has no weather", p.Date.Format("2006-01-02"))
		}
		if p.IsProtestDay {
			protestDays++
		}
	}
	if protestDays != 1 {
		t.Errorf("chart flags %d protest days, want 1", protestDays)
	}
}

func TestRank(t *testing.T) {
	res := func(name string, z *float64) *models.AnalysisResult {
		return &models.AnalysisResult{Station: name, ZScore: z}
	}
	results := []*models.AnalysisResult{
		res("Alpha", nil),
		res("Bravo", zp(-1.2)),
		res("Charlie", zp(3.0)),
		res("Delta", zp(-3.0)),
		res("Echo", zp(0.1)),
	}
	Rank(results)

	want := []string{"Charlie", "Delta", "Bravo", "Echo", "Alpha"}
	for i, name := range want {
		if results[i].Station != name {
			t.Errorf("rank[%d] = %s, want %s", i, results[i].Station, name)
		}
	}
}

func TestRankTiesBreakOnName(t *testing.T) {
	results := []*models.AnalysisResult{
		{Station: "Zeta", ZScore: zp(-2)},
		{Station: "Alpha", ZScore: zp(2)},
	}
	Rank(results)
	if results[0].Station != "Alpha" {
		t.Errorf("equal magnitudes should order by name, got %s first", results[0].Station)
	}
}
