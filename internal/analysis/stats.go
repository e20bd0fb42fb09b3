package analysis

import (
	"math"
	"sort"

	"github.com/idrees-mahmood/mcbmap/internal/models"
)

// minBaselineCount is the smallest sample for which a standard deviation is
// treated as reliable. Applies to both the raw and weather-adjusted
// baselines.
const minBaselineCount = 3

// baselineStats summarizes a set of daily totals. StdDev is the population
// form (divide by N): the window IS the population of interest, we are not
// inferring about days outside it. Values comes back sorted ascending.
func baselineStats(totals []int) models.BaselineStats {
	n := len(totals)
	if n == 0 {
		return models.BaselineStats{}
	}

	values := make([]int, n)
	copy(values, totals)
	sort.Ints(values)

	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}

	var median float64
	if n%2 == 1 {
		median = float64(values[n/2])
	} else {
		median = (float64(values[n/2-1]) + float64(values[n/2])) / 2
	}

	return models.BaselineStats{
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(sq / float64(n)),
		Min:    values[0],
		Max:    values[n-1],
		Count:  n,
		Values: values,
	}
}

// percentileOf returns the share of sorted baseline values strictly below
// observed, as a percentage.
func percentileOf(sorted []int, observed int) float64 {
	below := sort.SearchInts(sorted, observed)
	return float64(below) / float64(len(sorted)) * 100
}

// normalPValue is the two-tailed p-value for a standard-normal z, via the
// Abramowitz & Stegun 26.2.17 rational approximation of the normal tail.
// Accurate to about 7.5e-8, far beyond what the 0.05 cutoff needs.
func normalPValue(z float64) float64 {
	az := math.Abs(z)
	t := 1 / (1 + 0.2316419*az)
	d := 0.3989423 * math.Exp(-az*az/2)
	oneTail := d * t * (0.3193815 + t*(-0.3565638+t*(1.781478+t*(-1.821256+t*1.330274))))
	p := 2 * oneTail
	if p > 1 {
		p = 1
	}
	return p
}

// significanceLevel is the two-tailed threshold below which a deviation is
// reported as statistically significant.
const significanceLevel = 0.05

// classify maps the effective z-score to an impact category via an ordered
// decision table. A z of exactly 1.0 stays NO_IMPACT; a z of exactly −1.0
// falls through the minor branch into MODERATE_DECREASE. The minor branch
// additionally requires the deviation to be non-significant.
func classify(z *float64, significant bool) models.ImpactCategory {
	if z == nil {
		return models.ImpactInsufficientData
	}
	switch v := *z; {
	case v > 1:
		return models.ImpactIncrease
	case v > -1:
		return models.ImpactNone
	case v > -2 && v < -1 && !significant:
		return models.ImpactMinorDecrease
	case v > -2:
		return models.ImpactModerateDecrease
	default:
		return models.ImpactSignificantDecrease
	}
}
