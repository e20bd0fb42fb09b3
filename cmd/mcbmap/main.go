package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/idrees-mahmood/mcbmap/internal/analysis"
	"github.com/idrees-mahmood/mcbmap/internal/api"
	"github.com/idrees-mahmood/mcbmap/internal/archive"
	"github.com/idrees-mahmood/mcbmap/internal/footfall"
	"github.com/idrees-mahmood/mcbmap/internal/geo"
	"github.com/idrees-mahmood/mcbmap/internal/models"
	"github.com/idrees-mahmood/mcbmap/internal/weather"
)

var cli struct {
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API."`
	Analyze AnalyzeCmd `cmd:"" help:"Analyze one station or a whole route and print the verdicts."`
}

type commonFlags struct {
	Footfall   []string `env:"MCBMAP_FOOTFALL" default:"data/footfall.csv" help:"Footfall CSV source files."`
	WeatherURL string   `env:"MCBMAP_WEATHER_URL" help:"Weather archive base URL (public archive when empty)."`
}

func (f commonFlags) build() (*footfall.Store, *analysis.Analyzer, *geo.Locator) {
	store := footfall.NewStore(f.Footfall...)
	locator := geo.NewLocator()
	provider := weather.NewProvider(f.WeatherURL, rand.New(rand.NewSource(time.Now().UnixNano())))
	return store, analysis.NewAnalyzer(store, provider, locator), locator
}

type ServeCmd struct {
	commonFlags
	Port string `env:"MCBMAP_PORT" default:"8080" help:"HTTP listen port."`
	DB   string `env:"MCBMAP_DB" help:"SQLite path for the result archive (disabled when empty)."`
}

func (c *ServeCmd) Run() error {
	store, analyzer, locator := c.build()
	if n := store.Load(); n == 0 {
		log.Printf("warning: no footfall records loaded from %v", c.Footfall)
	}

	var arc *archive.Archive
	if c.DB != "" {
		db, err := sql.Open("sqlite", c.DB)
		if err != nil {
			return fmt.Errorf("open archive database: %w", err)
		}
		defer db.Close()
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")

		arc = archive.New(db)
		if err := arc.Migrate(); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return api.NewServer(analyzer, store, locator, arc, c.Port).Run(ctx)
}

type AnalyzeCmd struct {
	commonFlags
	Station string  `help:"Station to analyze (exclusive with --route)." xor:"target"`
	Route   string  `help:"Route polyline as \"lon,lat;lon,lat;...\" (exclusive with --station)." xor:"target"`
	Date    string  `required:"" help:"Target date, YYYY-MM-DD."`
	Radius  float64 `default:"500" help:"Station search radius around the route, meters."`
}

func (c *AnalyzeCmd) Run() error {
	date, err := time.Parse("2006-01-02", c.Date)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	_, analyzer, _ := c.build()
	ctx := context.Background()

	switch {
	case c.Station != "":
		printResult(analyzer.Analyze(ctx, c.Station, date.UTC()))
	case c.Route != "":
		route, err := parseRoute(c.Route)
		if err != nil {
			return err
		}
		results := analyzer.AnalyzeRoute(ctx, route, c.Radius, date.UTC())
		if len(results) == 0 {
			fmt.Printf("no stations within %.0fm of the route\n", c.Radius)
			return nil
		}
		for i, r := range results {
			fmt.Printf("%d. ", i+1)
			printResult(r)
		}
	default:
		return fmt.Errorf("either --station or --route is required")
	}
	return nil
}

// parseRoute reads "lon,lat;lon,lat;..." into a polyline.
func parseRoute(s string) ([]geo.RoutePoint, error) {
	var route []geo.RoutePoint
	for _, pair := range strings.Split(s, ";") {
		parts := strings.SplitN(strings.TrimSpace(pair), ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("route point %q is not lon,lat", pair)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("route point %q: %w", pair, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("route point %q: %w", pair, err)
		}
		route = append(route, geo.RoutePoint{Lon: lon, Lat: lat})
	}
	return route, nil
}

func printResult(r *models.AnalysisResult) {
	fmt.Printf("%s — %s %s\n", r.Station, r.DayOfWeek, r.Date.Format("2006-01-02"))
	fmt.Printf("   verdict: %s\n", r.ImpactCategory)
	if z := r.EffectiveZ(); z != nil {
		line := "   deviation: " + analysis.FormatZScore(*z)
		if r.PValue != nil {
			line += ", " + analysis.FormatPValue(*r.PValue)
		}
		if r.PercentChange != nil {
			line += fmt.Sprintf(", %+.1f%%", *r.PercentChange)
		}
		fmt.Println(line)
	}
	fmt.Printf("   %s\n", r.ImpactExplanation)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("mcbmap"),
		kong.Description("Assess whether a march route measurably changed footfall at nearby stations."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
