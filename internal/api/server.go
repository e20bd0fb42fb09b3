// Package api exposes the analyzer over HTTP for the map frontend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idrees-mahmood/mcbmap/internal/analysis"
	"github.com/idrees-mahmood/mcbmap/internal/archive"
	"github.com/idrees-mahmood/mcbmap/internal/footfall"
	"github.com/idrees-mahmood/mcbmap/internal/geo"
	"github.com/idrees-mahmood/mcbmap/internal/models"
)

// defaultRadiusMeters is applied when a request omits its radius.
const defaultRadiusMeters = 500

type Server struct {
	analyzer *analysis.Analyzer
	store    *footfall.Store
	locator  *geo.Locator
	archive  *archive.Archive // optional result cache, may be nil
	port     string
}

// NewServer wires the HTTP surface. The archive may be nil, in which case
// every request recomputes.
func NewServer(analyzer *analysis.Analyzer, store *footfall.Store, locator *geo.Locator, arc *archive.Archive, port string) *Server {
	return &Server{
		analyzer: analyzer,
		store:    store,
		locator:  locator,
		archive:  arc,
		port:     port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/stations", s.handleStations)
	mux.HandleFunc("/api/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/route/analysis", s.handleRouteAnalysis)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	records := s.store.Load()
	health := map[string]any{
		"status":           "ok",
		"footfall_records": records,
	}
	if s.archive != nil {
		if v, err := s.archive.MigrationVersion(); err == nil {
			health["archive_schema"] = v
		}
	}
	if records == 0 {
		health["status"] = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

// handleStations returns gazetteer stations, optionally filtered to a
// radius around a point: /api/stations?lat=&lon=&radius=.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	latStr, lonStr := r.URL.Query().Get("lat"), r.URL.Query().Get("lon")
	if latStr == "" && lonStr == "" {
		writeJSON(w, http.StatusOK, s.locator.Stations())
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat %q", latStr)
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lon %q", lonStr)
		return
	}
	radius := float64(defaultRadiusMeters)
	if v := r.URL.Query().Get("radius"); v != "" {
		if radius, err = strconv.ParseFloat(v, 64); err != nil || radius <= 0 {
			writeError(w, http.StatusBadRequest, "invalid radius %q", v)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.locator.FindNearby(lat, lon, radius))
}

// handleAnalysis serves one station's assessment:
// /api/analysis?station=Westminster&date=2025-06-14.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	station := r.URL.Query().Get("station")
	if station == "" {
		writeError(w, http.StatusBadRequest, "station is required")
		return
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, s.analyzeCached(r.Context(), station, date.UTC()))
}

type routeRequest struct {
	Route   [][2]float64 `json:"route"` // [lon, lat] pairs
	Date    string       `json:"date"`
	RadiusM float64      `json:"radius_m"`
}

type routeResponse struct {
	Date     string                   `json:"date"`
	RadiusM  float64                  `json:"radius_m"`
	Stations []models.Station         `json:"stations"`
	Results  []*models.AnalysisResult `json:"results"`
}

// handleRouteAnalysis assesses every station near a route polyline, ranked
// by effect size.
func (s *Server) handleRouteAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if len(req.Route) == 0 {
		writeError(w, http.StatusBadRequest, "route must contain at least one point")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if req.RadiusM <= 0 {
		req.RadiusM = defaultRadiusMeters
	}

	route := make([]geo.RoutePoint, len(req.Route))
	for i, p := range req.Route {
		route[i] = geo.RoutePoint{Lon: p[0], Lat: p[1]}
	}

	stations := s.analyzer.StationsNearRoute(route, req.RadiusM)
	results := make([]*models.AnalysisResult, 0, len(stations))
	for _, st := range stations {
		results = append(results, s.analyzeCached(r.Context(), st.Name, date.UTC()))
	}
	analysis.Rank(results)

	writeJSON(w, http.StatusOK, routeResponse{
		Date:     req.Date,
		RadiusM:  req.RadiusM,
		Stations: stations,
		Results:  results,
	})
}

// analyzeCached consults the archive before computing and writes fresh
// results back. Archive failures only cost the caching, never the result.
func (s *Server) analyzeCached(ctx context.Context, station string, date time.Time) *models.AnalysisResult {
	if s.archive != nil {
		if cached, err := s.archive.Get(station, date); err != nil {
			log.Printf("api: archive read for %s/%s failed: %v", station, date.Format("2006-01-02"), err)
		} else if cached != nil {
			return cached
		}
	}
	result := s.analyzer.Analyze(ctx, station, date)
	if s.archive != nil {
		if err := s.archive.Put(result); err != nil {
			log.Printf("api: archive write for %s/%s failed: %v", station, date.Format("2006-01-02"), err)
		}
	}
	return result
}
