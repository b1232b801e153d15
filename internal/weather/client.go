package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
)

// Default endpoints. Tests intercept these with httpmock; deployments can
// override them through ClientConfig.
const (
	DefaultWeatherURL   = "https://api.openweathermap.org/data/2.5/weather"
	DefaultForecastURL  = "https://api.openweathermap.org/data/2.5/forecast"
	DefaultDirectoryURL = "https://countriesnow.space/api/v0.1/countries/population/cities"
)

var validate = validator.New()

// ClientConfig carries the provider key and endpoint overrides.
type ClientConfig struct {
	APIKey       string
	WeatherURL   string
	ForecastURL  string
	DirectoryURL string
}

// Client performs the three provider calls: current conditions by city name,
// forecast by coordinate, and the city-name directory lookup. The calls are
// independent; none retries internally. Each endpoint sits behind its own
// circuit breaker so a failing directory cannot open the weather path.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	weatherURL   string
	forecastURL  string
	directoryURL string

	currentCB   *gobreaker.CircuitBreaker
	forecastCB  *gobreaker.CircuitBreaker
	directoryCB *gobreaker.CircuitBreaker
}

// NewClient creates a Client. Empty endpoint fields fall back to the defaults.
func NewClient(httpClient *http.Client, cfg ClientConfig) *Client {
	breaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		})
	}

	c := &Client{
		httpClient:   httpClient,
		apiKey:       cfg.APIKey,
		weatherURL:   cfg.WeatherURL,
		forecastURL:  cfg.ForecastURL,
		directoryURL: cfg.DirectoryURL,
		currentCB:    breaker("weather-current"),
		forecastCB:   breaker("weather-forecast"),
		directoryCB:  breaker("city-directory"),
	}
	if c.weatherURL == "" {
		c.weatherURL = DefaultWeatherURL
	}
	if c.forecastURL == "" {
		c.forecastURL = DefaultForecastURL
	}
	if c.directoryURL == "" {
		c.directoryURL = DefaultDirectoryURL
	}
	return c
}

// currentPayload mirrors the provider's current-weather response. Required
// fields are pointers so that "absent" is distinguishable from a zero value;
// a nil required field fails validation and the whole call classifies as a
// decode failure rather than a partial success.
type currentPayload struct {
	Name *string `json:"name" validate:"required"`
	Main *struct {
		Temp     *float64 `json:"temp" validate:"required"`
		Humidity float64  `json:"humidity"`
	} `json:"main" validate:"required"`
	Wind *struct {
		Speed *float64 `json:"speed" validate:"required"`
	} `json:"wind" validate:"required"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather" validate:"required,min=1"`
	Timezone *int `json:"timezone" validate:"required"`
	Coord    *struct {
		Lat *float64 `json:"lat" validate:"required"`
		Lon *float64 `json:"lon" validate:"required"`
	} `json:"coord" validate:"required"`
}

// FetchCurrent fetches current conditions for a city by name, metric units.
func (c *Client) FetchCurrent(ctx context.Context, cityName string) (CurrentConditions, error) {
	cityName = strings.TrimSpace(cityName)
	if cityName == "" {
		return CurrentConditions{}, fmt.Errorf("%w: empty city name", ErrInvalidRequest)
	}

	values := url.Values{}
	values.Set("q", cityName)
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")

	resp, err := c.get(ctx, c.currentCB, c.weatherURL, values)
	if err != nil {
		return CurrentConditions{}, err
	}
	defer resp.Body.Close()

	var payload currentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return CurrentConditions{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := validate.Struct(payload); err != nil {
		return CurrentConditions{}, fmt.Errorf("%w: missing required fields: %v", ErrDecode, err)
	}

	return CurrentConditions{
		Name:        *payload.Name,
		Temperature: *payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   *payload.Wind.Speed,
		Description: payload.Weather[0].Description,
		IconCode:    payload.Weather[0].Icon,
		TimezoneSec: *payload.Timezone,
		Coord:       Coord{Lat: *payload.Coord.Lat, Lon: *payload.Coord.Lon},
	}, nil
}

type forecastPayload struct {
	List *[]struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"list" validate:"required"`
}

// FetchForecast fetches the forecast for a coordinate and maps every entry of
// the provider's list in order. A single entry without an icon code gets the
// IconCodeUnknown sentinel instead of failing the batch.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) ([]ForecastPoint, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")

	resp, err := c.get(ctx, c.forecastCB, c.forecastURL, values)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload forecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: missing forecast list: %v", ErrDecode, err)
	}

	points := make([]ForecastPoint, 0, len(*payload.List))
	for _, entry := range *payload.List {
		icon := IconCodeUnknown
		if len(entry.Weather) > 0 && entry.Weather[0].Icon != "" {
			icon = entry.Weather[0].Icon
		}
		points = append(points, ForecastPoint{
			Timestamp: entry.Dt,
			Temp:      entry.Main.Temp,
			Icon:      icon,
		})
	}
	return points, nil
}

type directoryPayload struct {
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
	Data  []struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"data"`
}

// FetchCityNames fetches the city-name directory used for search suggestions.
// Callers are expected to degrade to an empty list on failure.
func (c *Client) FetchCityNames(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, c.directoryCB, c.directoryURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload directoryPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if payload.Error {
		return nil, fmt.Errorf("%w: directory error: %s", ErrDecode, payload.Msg)
	}

	names := make([]string, 0, len(payload.Data))
	for _, entry := range payload.Data {
		names = append(names, entry.City)
	}
	return names, nil
}

// get executes a GET through the endpoint's circuit breaker and classifies
// the failure modes: transport problems and an open breaker are network
// errors, an unexpected status is a decode error (the body is not the shape
// the caller asked for).
func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker, baseURL string, values url.Values) (*http.Response, error) {
	u := baseURL
	if len(values) > 0 {
		u = fmt.Sprintf("%s?%s", baseURL, values.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, execErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: unexpected status %d", ErrDecode, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open: %v", ErrNetwork, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrNetwork)
	}
	return resp, nil
}
