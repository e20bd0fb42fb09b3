// Package footfall loads and queries the historical per-station daily
// gateline counts that the analyzer baselines against.
package footfall

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/idrees-mahmood/mcbmap/internal/metrics"
	"github.com/idrees-mahmood/mcbmap/internal/models"
)

// windowDays is the half-width of the comparison window: 7 weeks each side
// of the target date. Wide enough for at least seven same-weekday
// observations in the common case, narrow enough that seasonal drift does
// not contaminate the baseline.
const windowDays = 49

// Store holds the footfall time series for all stations. Source files are
// parsed once, on first use; the parsed series is immutable afterwards.
// Safe for concurrent use.
type Store struct {
	paths []string

	once    sync.Once
	records []models.FootfallRecord
}

// NewStore creates a store over the given source files. Nothing is read
// until the first query or an explicit Load.
func NewStore(paths ...string) *Store {
	return &Store{paths: paths}
}

// Load parses all configured source files, concatenates them, and sorts the
// result by date ascending. The first caller does the work; concurrent and
// later callers share the same parse. A file that cannot be read is logged
// and skipped, so partial data availability is not fatal. Returns the
// number of records held.
func (s *Store) Load() int {
	s.once.Do(s.loadAll)
	return len(s.records)
}

func (s *Store) loadAll() {
	var all []models.FootfallRecord
	for _, path := range s.paths {
		recs, err := parseFile(path)
		if err != nil {
			log.Printf("footfall: skipping %s: %v", path, err)
			metrics.FootfallFilesTotal.WithLabelValues("error").Inc()
			continue
		}
		metrics.FootfallFilesTotal.WithLabelValues("ok").Inc()
		all = append(all, recs...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	s.records = all
	log.Printf("footfall: loaded %d records from %d source file(s)", len(all), len(s.paths))
}

func parseFile(path string) ([]models.FootfallRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []models.FootfallRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.FootfallRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		rec, ok := parseRow(row)
		if !ok {
			metrics.FootfallRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.FootfallRowsTotal.WithLabelValues("parsed").Inc()
		records = append(records, rec)
	}
	return records, nil
}

// parseRow maps one source row (date YYYYMMDD, day-of-week label, station,
// entries, exits) to a record. Rows with fewer than five fields or an
// unparseable date are dropped; non-numeric counts default to zero. Header
// rows fall out naturally via the date check.
func parseRow(row []string) (models.FootfallRecord, bool) {
	if len(row) < 5 {
		return models.FootfallRecord{}, false
	}
	date, err := time.Parse("20060102", strings.TrimSpace(row[0]))
	if err != nil {
		return models.FootfallRecord{}, false
	}
	entries, _ := strconv.Atoi(strings.TrimSpace(row[3]))
	exits, _ := strconv.Atoi(strings.TrimSpace(row[4]))
	return models.FootfallRecord{
		Station:   strings.TrimSpace(row[2]),
		Date:      date.UTC(),
		DayOfWeek: strings.TrimSpace(row[1]),
		Entries:   entries,
		Exits:     exits,
		Total:     entries + exits,
	}, true
}

// RecordsFor returns the station's records inside the inclusive range, in
// date order.
func (s *Store) RecordsFor(station string, r models.DateRange) []models.FootfallRecord {
	s.Load()
	var out []models.FootfallRecord
	for _, rec := range s.records {
		if rec.Station == station && r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

// SameDayRecordsFor returns the station's records inside the range whose
// day-of-week label equals dayOfWeek exactly. The label comes from the
// source file, not from the date; the two origins are reconciled by the
// analyzer, not here.
func (s *Store) SameDayRecordsFor(station, dayOfWeek string, r models.DateRange) []models.FootfallRecord {
	s.Load()
	var out []models.FootfallRecord
	for _, rec := range s.records {
		if rec.Station == station && rec.DayOfWeek == dayOfWeek && r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

// RecordFor returns the station's record for the exact date, or nil. A
// linear scan is fine at this data scale.
func (s *Store) RecordFor(station string, date time.Time) *models.FootfallRecord {
	s.Load()
	for i := range s.records {
		if s.records[i].Station == station && s.records[i].Date.Equal(date) {
			rec := s.records[i]
			return &rec
		}
	}
	return nil
}

// Stations returns the distinct station names present in the series, in
// first-appearance order.
func (s *Store) Stations() []string {
	s.Load()
	var names []string
	seen := make(map[string]bool)
	for _, rec := range s.records {
		if !seen[rec.Station] {
			seen[rec.Station] = true
			names = append(names, rec.Station)
		}
	}
	return names
}

// WindowAround returns the 14-week comparison window centered on the target
// date: exactly 49 calendar days each side, unaffected by month, year, or
// DST boundaries.
func WindowAround(target time.Time) models.DateRange {
	return models.DateRange{
		Start: target.AddDate(0, 0, -windowDays),
		End:   target.AddDate(0, 0, windowDays),
	}
}
