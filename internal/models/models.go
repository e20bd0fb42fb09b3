package models

import "time"

// Station is a fixed transit point of interest. Name is the join key into
// the footfall records, so it must match the station column of the source
// files exactly.
type Station struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Lines     []string `json:"lines"`
}

// FootfallRecord holds one station's gateline counts for one calendar day.
// Total is derived as Entries + Exits at parse time.
type FootfallRecord struct {
	Station   string    `json:"station"`
	Date      time.Time `json:"date"`
	DayOfWeek string    `json:"day_of_week"`
	Entries   int       `json:"entries"`
	Exits     int       `json:"exits"`
	Total     int       `json:"total"`
}

// DailyWeather is one day of observed (or estimated) weather for the
// region's reference coordinate.
type DailyWeather struct {
	Date          time.Time `json:"date"`
	TempMax       float64   `json:"temp_max"`
	TempMin       float64   `json:"temp_min"`
	Precipitation float64   `json:"precipitation"`
	WeatherCode   int       `json:"weather_code"`
	Description   string    `json:"description"`
}

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the range, endpoints included.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// BaselineStats describes the distribution of same-day-of-week footfall
// totals inside the comparison window. StdDev is the population standard
// deviation (divide by N, not N-1: this is a descriptive baseline, not a
// sample inference). Values is retained sorted ascending for percentile
// lookup.
type BaselineStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Count  int     `json:"count"`
	Values []int   `json:"values"`
}

// WeatherAdjustedStats is the baseline narrowed to days whose weather
// resembles the target day's weather. Only produced when at least three
// qualifying days exist.
type WeatherAdjustedStats struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Count    int     `json:"count"`
	Criteria string  `json:"criteria"`
}

// ImpactCategory is the categorical verdict for one station and date.
type ImpactCategory string

const (
	ImpactIncrease            ImpactCategory = "increase"
	ImpactNone                ImpactCategory = "no_impact"
	ImpactMinorDecrease       ImpactCategory = "minor_decrease"
	ImpactModerateDecrease    ImpactCategory = "moderate_decrease"
	ImpactSignificantDecrease ImpactCategory = "significant_decrease"
	ImpactInsufficientData    ImpactCategory = "insufficient_data"
)

// ChartPoint is one day of the comparison window, ready for plotting.
type ChartPoint struct {
	Date         time.Time     `json:"date"`
	DayOfWeek    string        `json:"day_of_week"`
	Total        int           `json:"total"`
	Weather      *DailyWeather `json:"weather,omitempty"`
	IsProtestDay bool          `json:"is_protest_day"`
}

// AnalysisResult is the immutable output for one (station, date) pair.
// Pointer fields render as JSON null when the underlying quantity could
// not be computed; they are never zero-filled.
type AnalysisResult struct {
	Station            string                `json:"station"`
	Date               time.Time             `json:"date"`
	DayOfWeek          string                `json:"day_of_week"`
	ProtestDayFootfall *int                  `json:"protest_day_footfall"`
	ProtestDayWeather  *DailyWeather         `json:"protest_day_weather,omitempty"`
	Baseline           BaselineStats         `json:"baseline"`
	WeatherAdjusted    *WeatherAdjustedStats `json:"weather_adjusted,omitempty"`
	ZScore             *float64              `json:"z_score"`
	AdjustedZScore     *float64              `json:"adjusted_z_score"`
	Percentile         *float64              `json:"percentile"`
	PValue             *float64              `json:"p_value"`
	IsSignificant      bool                  `json:"is_significant"`
	PercentChange      *float64              `json:"percent_change"`
	ImpactCategory     ImpactCategory        `json:"impact_category"`
	ImpactExplanation  string                `json:"impact_explanation"`
	Chart              []ChartPoint          `json:"chart"`
}

// EffectiveZ returns the weather-adjusted z-score when available, else the
// raw z-score. This is the single statistic that drives classification.
func (r *AnalysisResult) EffectiveZ() *float64 {
	if r.AdjustedZScore != nil {
		return r.AdjustedZScore
	}
	return r.ZScore
}
