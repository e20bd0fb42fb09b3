package geo

import (
	"math"

	"github.com/idrees-mahmood/mcbmap/internal/models"
)

const earthRadiusMeters = 6371000.0

// RoutePoint is one vertex of a route polyline, in the (longitude,
// latitude) order routing engines emit.
type RoutePoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Haversine returns the great-circle distance in meters between two points
// on a spherical earth. Error at urban scales is negligible.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180.0
	phi2 := lat2 * math.Pi / 180.0
	dPhi := (lat2 - lat1) * math.Pi / 180.0
	dLambda := (lon2 - lon1) * math.Pi / 180.0
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Locator answers proximity queries against a fixed station gazetteer.
type Locator struct {
	stations []models.Station
}

// NewLocator returns a locator over the default central-London gazetteer.
func NewLocator() *Locator {
	return &Locator{stations: centralLondonStations}
}

// NewLocatorWith returns a locator over a caller-supplied gazetteer.
func NewLocatorWith(stations []models.Station) *Locator {
	return &Locator{stations: stations}
}

// Stations returns the locator's full gazetteer.
func (l *Locator) Stations() []models.Station {
	out := make([]models.Station, len(l.stations))
	copy(out, l.stations)
	return out
}

// FindNearby returns every station within radiusMeters of the point.
func (l *Locator) FindNearby(lat, lon, radiusMeters float64) []models.Station {
	var nearby []models.Station
	for _, st := range l.stations {
		if Haversine(lat, lon, st.Latitude, st.Longitude) <= radiusMeters {
			nearby = append(nearby, st)
		}
	}
	return nearby
}

// FindNearRoute returns every station within radiusMeters of any vertex of
// the route, in order of first proximity: a station is added the first time
// a vertex qualifies it and never reconsidered. Downstream default-selection
// behavior depends on that ordering, so it must not be re-sorted.
func (l *Locator) FindNearRoute(route []RoutePoint, radiusMeters float64) []models.Station {
	var found []models.Station
	seen := make(map[string]bool, len(l.stations))
	for _, pt := range route {
		for _, st := range l.stations {
			if seen[st.Name] {
				continue
			}
			if Haversine(pt.Lat, pt.Lon, st.Latitude, st.Longitude) <= radiusMeters {
				seen[st.Name] = true
				found = append(found, st)
			}
		}
	}
	return found
}
