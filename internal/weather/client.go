// Package weather supplies daily weather context for analysis dates, from a
// historical-archive API when reachable and from a climate-informed
// synthetic model when not.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/idrees-mahmood/mcbmap/internal/metrics"
	"github.com/idrees-mahmood/mcbmap/internal/models"
)

// Central London centroid used for all archive queries. Station-level
// weather variation across the coverage area is negligible for this use.
const (
	londonLatitude  = 51.5074
	londonLongitude = -0.1278
)

// DefaultBaseURL is the public historical weather archive endpoint.
const DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// archiveResponse mirrors the archive API's parallel-array daily layout.
// Pointer element types let a null slot decay to a benign default instead
// of a zero that looks like real weather.
type archiveResponse struct {
	Daily struct {
		Time             []string   `json:"time"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
		WeatherCode      []*int     `json:"weathercode"`
	} `json:"daily"`
}

// Client fetches daily weather history over HTTP with retry.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a client against baseURL, or the public archive when
// baseURL is empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchRange retrieves one record per day across the inclusive range.
// Transient failures are retried with exponential backoff; client errors
// from the API abort immediately.
func (c *Client) FetchRange(ctx context.Context, r models.DateRange) ([]models.DailyWeather, error) {
	var days []models.DailyWeather

	operation := func() error {
		var err error
		days, err = c.fetchOnce(ctx, r)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *Client) fetchOnce(ctx context.Context, r models.DateRange) ([]models.DailyWeather, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", londonLatitude))
	q.Set("longitude", fmt.Sprintf("%.4f", londonLongitude))
	q.Set("start_date", r.Start.Format("2006-01-02"))
	q.Set("end_date", r.End.Format("2006-01-02"))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode")
	q.Set("timezone", "Europe/London")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	metrics.WeatherAPILatency.Observe(time.Since(started).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.WeatherAPICallsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()
		err := fmt.Errorf("weather archive returned %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	metrics.WeatherAPICallsTotal.WithLabelValues("ok").Inc()

	var body archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decoding weather response: %w", err))
	}
	return decodeDaily(body)
}

// Benign defaults for null slots in the archive response: unremarkable
// London weather that never flips an impact category on its own.
const (
	defaultTempMax = 15.0
	defaultTempMin = 8.0
)

func decodeDaily(body archiveResponse) ([]models.DailyWeather, error) {
	d := body.Daily
	days := make([]models.DailyWeather, 0, len(d.Time))
	for i, ts := range d.Time {
		date, err := time.Parse("2006-01-02", ts)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("bad date %q in weather response: %w", ts, err))
		}
		w := models.DailyWeather{
			Date:    date.UTC(),
			TempMax: defaultTempMax,
			TempMin: defaultTempMin,
		}
		if i < len(d.TemperatureMax) && d.TemperatureMax[i] != nil {
			w.TempMax = *d.TemperatureMax[i]
		}
		if i < len(d.TemperatureMin) && d.TemperatureMin[i] != nil {
			w.TempMin = *d.TemperatureMin[i]
		}
		if i < len(d.PrecipitationSum) && d.PrecipitationSum[i] != nil {
			w.Precipitation = *d.PrecipitationSum[i]
		}
		if i < len(d.WeatherCode) && d.WeatherCode[i] != nil {
			w.WeatherCode = *d.WeatherCode[i]
		}
		w.Description = describeCode(w.WeatherCode)
		days = append(days, w)
	}
	return days, nil
}

// describeCode maps a WMO weather code to a short human label.
func describeCode(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code <= 3:
		return "Partly cloudy"
	case code <= 48:
		return "Fog"
	case code <= 55:
		return "Drizzle"
	case code <= 65:
		return "Rain"
	case code <= 77:
		return "Snow"
	case code <= 82:
		return "Rain showers"
	case code <= 86:
		return "Snow showers"
	default:
		return "Thunderstorm"
	}
}
