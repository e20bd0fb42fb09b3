package weather

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/idrees-mahmood/mcbmap/internal/metrics"
	"github.com/idrees-mahmood/mcbmap/internal/models"
)

// Impact categories describe how strongly a day's weather suppresses
// discretionary pedestrian traffic.
const (
	ImpactGood     = "GOOD"
	ImpactModerate = "MODERATE"
	ImpactPoor     = "POOR"
)

// rangeEntry is one cached range fetch. The Once guards the fetch so
// concurrent requests for the same range share a single upstream call.
type rangeEntry struct {
	once sync.Once
	days []models.DailyWeather
}

// Provider serves daily weather for date ranges, caching per range and
// falling back to synthetic data when the archive cannot be reached.
// Safe for concurrent use.
type Provider struct {
	client *Client
	rng    *rand.Rand

	mu    sync.Mutex
	cache map[string]*rangeEntry
}

// NewProvider returns a provider backed by the archive at baseURL (the
// public archive when empty). The rng seeds synthetic fallback weather; a
// nil rng gets a time-seeded one.
func NewProvider(baseURL string, rng *rand.Rand) *Provider {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Provider{
		client: NewClient(baseURL),
		rng:    rng,
		cache:  make(map[string]*rangeEntry),
	}
}

// Range returns one record per day across the inclusive range. The first
// call for a given range fetches; concurrent and later calls share the
// result. Fetch failures degrade to synthetic weather rather than erroring,
// and the synthetic result is cached like a real one.
func (p *Provider) Range(ctx context.Context, r models.DateRange) []models.DailyWeather {
	key := r.Start.Format("2006-01-02") + "|" + r.End.Format("2006-01-02")

	p.mu.Lock()
	entry, ok := p.cache[key]
	if !ok {
		entry = &rangeEntry{}
		p.cache[key] = entry
	}
	p.mu.Unlock()

	entry.once.Do(func() {
		days, err := p.client.FetchRange(ctx, r)
		if err != nil {
			log.Printf("weather: archive fetch for %s failed, using estimated weather: %v", key, err)
			metrics.WeatherFallbacksTotal.Inc()
			p.mu.Lock()
			days = synthesizeRange(r, p.rng)
			p.mu.Unlock()
		}
		entry.days = days
	})
	return entry.days
}

// For returns the weather for one date out of a previously fetched range,
// or nil when the date is not covered.
func For(days []models.DailyWeather, date time.Time) *models.DailyWeather {
	for i := range days {
		if sameDay(days[i].Date, date) {
			return &days[i]
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ImpactCategory classifies a day by how hostile its weather is to walking.
// POOR conditions take precedence over MODERATE.
func ImpactCategory(w models.DailyWeather) string {
	switch {
	case w.Precipitation > 10 || w.TempMax < 3 || w.WeatherCode >= 65:
		return ImpactPoor
	case w.Precipitation > 2 || w.TempMax < 8 || w.WeatherCode >= 51:
		return ImpactModerate
	default:
		return ImpactGood
	}
}

// dryThreshold separates a nominally dry day from a wet one, in mm.
const dryThreshold = 1.0

// IsSimilar reports whether two days are close enough in conditions that
// their footfall can be compared directly: same impact category, maximum
// temperatures within 5°C, and agreeing on dry versus wet.
func IsSimilar(a, b models.DailyWeather) bool {
	if ImpactCategory(a) != ImpactCategory(b) {
		return false
	}
	if math.Abs(a.TempMax-b.TempMax) > 5 {
		return false
	}
	return (a.Precipitation < dryThreshold) == (b.Precipitation < dryThreshold)
}
