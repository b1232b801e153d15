package weather

// IconFallback is returned for any icon code outside the known table.
const IconFallback = "questionmark.circle.fill"

// openWeatherIcons maps OpenWeather icon codes to display icon identifiers.
var openWeatherIcons = map[string]string{
	// clear sky
	"01d": "sun.max.fill",
	"01n": "moon.stars.fill",
	// few clouds
	"02d": "cloud.sun.fill",
	"02n": "cloud.moon.fill",
	// scattered clouds
	"03d": "cloud.fill",
	"03n": "cloud.fill",
	// broken clouds
	"04d": "smoke.fill",
	"04n": "smoke.fill",
	// shower rain
	"09d": "cloud.drizzle.fill",
	"09n": "cloud.drizzle.fill",
	// rain
	"10d": "cloud.sun.rain.fill",
	"10n": "cloud.moon.rain.fill",
	// thunderstorm
	"11d": "cloud.bolt.fill",
	"11n": "cloud.bolt.fill",
	// snow
	"13d": "snowflake",
	"13n": "snowflake",
	// mist
	"50d": "cloud.fog.fill",
	"50n": "cloud.fog.fill",
}

// MapIcon converts a provider icon code to a display icon identifier.
// It is total: unknown codes map to IconFallback.
func MapIcon(code string) string {
	if icon, ok := openWeatherIcons[code]; ok {
		return icon
	}
	return IconFallback
}
