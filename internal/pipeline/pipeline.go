package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/weatherwise/weatherwise/internal/store"
	"github.com/weatherwise/weatherwise/internal/weather"
)

// WeatherClient is the provider surface the pipeline depends on.
type WeatherClient interface {
	FetchCurrent(ctx context.Context, cityName string) (weather.CurrentConditions, error)
	FetchForecast(ctx context.Context, lat, lon float64) ([]weather.ForecastPoint, error)
	FetchCityNames(ctx context.Context) ([]string, error)
}

const suggestionCacheKey = "city-names"

// Pipeline orchestrates the client, the pure mappers, and the city store into
// the composite operations the rendering layer calls.
type Pipeline struct {
	client WeatherClient
	store  *store.CityStore
	clock  weather.Clock

	suggestions *gocache.Cache
}

// New creates a Pipeline. suggestionTTL bounds how long the directory list is
// served from cache before the next lookup.
func New(client WeatherClient, cityStore *store.CityStore, clock weather.Clock, suggestionTTL time.Duration) *Pipeline {
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		client:      client,
		store:       cityStore,
		clock:       clock,
		suggestions: gocache.New(suggestionTTL, suggestionTTL),
	}
}

// ResolveAndAdd resolves a city name to a fully-populated City, appends it to
// the store, and persists. Fetch failures propagate unchanged. When only the
// persist fails, the City is returned together with the error: it is visible
// for this session, and the caller decides how to warn about durability.
func (p *Pipeline) ResolveAndAdd(ctx context.Context, cityName string) (weather.City, error) {
	conditions, err := p.client.FetchCurrent(ctx, cityName)
	if err != nil {
		return weather.City{}, err
	}

	// The stored name is the provider's, which may differ from the query for
	// ambiguous or re-spelled city names. Surface the substitution.
	if !strings.EqualFold(strings.TrimSpace(cityName), conditions.Name) {
		log.Printf("pipeline: provider resolved %q as %q", cityName, conditions.Name)
	}

	city := p.buildCity(conditions)
	if err := p.store.Append(city); err != nil {
		return city, err
	}
	return city, nil
}

// RefreshSummary reports per-city outcomes of a RefreshAll run.
type RefreshSummary struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Errors    map[string]error `json:"-"`
}

// RefreshAll re-fetches every tracked city independently and replaces its
// fields in place, preserving identifier and list position. One city's
// failure never blocks the others.
func (p *Pipeline) RefreshAll(ctx context.Context) RefreshSummary {
	cities := p.store.Cities()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		summary = RefreshSummary{Errors: make(map[string]error)}
	)

	for _, city := range cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := p.refreshOne(ctx, city)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Errors[city.Name] = err
				return
			}
			summary.Succeeded++
		}()
	}
	wg.Wait()

	if summary.Failed > 0 {
		log.Printf("pipeline: refresh finished, %d succeeded, %d failed", summary.Succeeded, summary.Failed)
	}
	return summary
}

func (p *Pipeline) refreshOne(ctx context.Context, city weather.City) error {
	conditions, err := p.client.FetchCurrent(ctx, city.Name)
	if err != nil {
		return err
	}

	replacement := p.buildCity(conditions)
	if err := p.store.Replace(city.ID, replacement); err != nil {
		if errors.Is(err, store.ErrPersistence) {
			// The replacement is visible for this session.
			log.Printf("pipeline: refresh of %s not persisted: %v", city.Name, err)
			return nil
		}
		return err
	}
	return nil
}

// Forecast fetches the chronological forecast for a coordinate.
func (p *Pipeline) Forecast(ctx context.Context, lat, lon float64) ([]weather.ForecastPoint, error) {
	return p.client.FetchForecast(ctx, lat, lon)
}

// Suggestions returns the directory city names for search suggestions,
// served from a TTL cache. Any failure degrades to an empty list; a broken
// directory must never block city search.
func (p *Pipeline) Suggestions(ctx context.Context) []string {
	if cached, ok := p.suggestions.Get(suggestionCacheKey); ok {
		return cached.([]string)
	}

	names, err := p.client.FetchCityNames(ctx)
	if err != nil {
		log.Printf("pipeline: city directory lookup failed: %v", err)
		return []string{}
	}

	p.suggestions.SetDefault(suggestionCacheKey, names)
	return names
}

// SeedDefaults resolves the given city names into the store. It is meant for
// first start, when no persisted list exists; individual failures are logged
// and skipped.
func (p *Pipeline) SeedDefaults(ctx context.Context, names []string) {
	for _, name := range names {
		if _, err := p.ResolveAndAdd(ctx, name); err != nil {
			log.Printf("pipeline: seeding %q failed: %v", name, err)
		}
	}
}

// buildCity maps decoded provider conditions into a display-ready City with a
// freshly generated identifier.
func (p *Pipeline) buildCity(c weather.CurrentConditions) weather.City {
	// Casers are stateful, so one is created per call rather than shared
	// across the refresh goroutines.
	title := cases.Title(language.English)
	return weather.City{
		ID:          uuid.New(),
		Name:        c.Name,
		Temperature: fmt.Sprintf("%d°C", int(math.Round(c.Temperature))),
		Description: title.String(c.Description),
		Icon:        weather.MapIcon(c.IconCode),
		LocalTime:   weather.LocalTime(p.clock, c.TimezoneSec),
		Coord:       c.Coord,
	}
}
