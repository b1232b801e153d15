package weather

import (
	"errors"

	"github.com/google/uuid"
)

// Classified failures for the acquisition pipeline. Callers check these with
// errors.Is; concrete causes are wrapped underneath.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNetwork        = errors.New("network error")
	ErrDecode         = errors.New("decode error")
)

// Coord is a geographic coordinate.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// City is one tracked location with its display-ready weather fields.
// The ID is generated once at creation and never changes; a refresh replaces
// the other fields wholesale rather than editing them in place.
type City struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Temperature string    `json:"temperature"` // e.g. "19°C"
	Description string    `json:"description"` // capitalized, e.g. "Clear Sky"
	Icon        string    `json:"icon"`        // display icon identifier
	LocalTime   string    `json:"localTime"`
	Coord       Coord     `json:"coord"`
}

// CurrentConditions is the decoded result of one current-weather fetch.
// It lives only for the duration of one fetch-and-map step and is never persisted.
type CurrentConditions struct {
	Name        string
	Temperature float64 // celsius
	Humidity    float64 // percent
	WindSpeed   float64 // m/s
	Description string
	IconCode    string
	TimezoneSec int // UTC offset in seconds
	Coord       Coord
}

// ForecastPoint is one forecast sample. Icon holds the provider icon code,
// or IconCodeUnknown when the entry carried none.
type ForecastPoint struct {
	Timestamp int64   `json:"dt"`
	Temp      float64 `json:"temp"`
	Icon      string  `json:"icon"`
}

// IconCodeUnknown is the sentinel icon code for forecast entries that came
// back without one. It falls through the icon table to the fallback icon.
const IconCodeUnknown = "unknown"
