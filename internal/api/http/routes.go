package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/weatherwise/weatherwise/internal/config"
	"github.com/weatherwise/weatherwise/internal/pipeline"
	"github.com/weatherwise/weatherwise/internal/store"
	"github.com/weatherwise/weatherwise/internal/weather"
)

var validate = validator.New()

// maxSuggestions caps the suggestion list returned to the search sheet.
const maxSuggestions = 25

// persistWarning is attached to responses whose mutation succeeded in memory
// but could not be written to durable storage.
const persistWarning = "change saved for this session but could not be persisted; it may not survive a restart"

// RegisterRoutes wires the HTTP handlers into the Fiber app. The handlers
// hold no domain logic: they parse requests, call the pipeline or store, and
// map classified errors to statuses.
func RegisterRoutes(app *fiber.App, pipe *pipeline.Pipeline, cityStore *store.CityStore, prefs *config.Preferences) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(cityStore.Cities())
	})

	v1.Post("/cities", func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		city, err := pipe.ResolveAndAdd(c.UserContext(), req.Name)
		if err != nil {
			if errors.Is(err, store.ErrPersistence) {
				// The city is visible for this session; warn, don't fail.
				return c.Status(fiber.StatusCreated).JSON(fiber.Map{
					"city":    city,
					"warning": persistWarning,
				})
			}
			return weatherError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"city": city})
	})

	v1.Delete("/cities/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city id")
		}

		if err := cityStore.Remove(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "city not found")
			}
			if errors.Is(err, store.ErrPersistence) {
				return c.JSON(fiber.Map{"warning": persistWarning})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove city")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/cities/reorder", func(c *fiber.Ctx) error {
		var req reorderRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := cityStore.Reorder(*req.From, *req.To); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "position out of range")
			}
			if errors.Is(err, store.ErrPersistence) {
				return c.JSON(fiber.Map{"warning": persistWarning})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to reorder cities")
		}
		return c.JSON(cityStore.Cities())
	})

	v1.Post("/cities/refresh", func(c *fiber.Ctx) error {
		summary := pipe.RefreshAll(c.UserContext())

		failures := make(map[string]string, len(summary.Errors))
		for name, err := range summary.Errors {
			failures[name] = err.Error()
		}
		return c.JSON(fiber.Map{
			"succeeded": summary.Succeeded,
			"failed":    summary.Failed,
			"failures":  failures,
		})
	})

	v1.Get("/cities/:id/forecast", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city id")
		}

		city, err := cityStore.Get(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "city not found")
		}

		points, err := pipe.Forecast(c.UserContext(), city.Coord.Lat, city.Coord.Lon)
		if err != nil {
			return weatherError(err)
		}
		return c.JSON(fiber.Map{
			"city":     city.Name,
			"forecast": points,
		})
	})

	v1.Get("/suggestions", func(c *fiber.Ctx) error {
		names := pipe.Suggestions(c.UserContext())

		query := strings.ToLower(strings.TrimSpace(c.Query("q")))
		matches := make([]string, 0, maxSuggestions)
		for _, name := range names {
			if query != "" && !strings.HasPrefix(strings.ToLower(name), query) {
				continue
			}
			matches = append(matches, name)
			if len(matches) == maxSuggestions {
				break
			}
		}
		return c.JSON(matches)
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"refreshMinutes": prefs.RefreshMinutes(),
			"darkMode":       prefs.DarkMode(),
		})
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		var warned bool
		if req.RefreshMinutes != nil {
			if err := prefs.SetRefreshMinutes(*req.RefreshMinutes); err != nil {
				if errors.Is(err, store.ErrPersistence) {
					warned = true
				} else {
					return fiber.NewError(fiber.StatusBadRequest, err.Error())
				}
			}
		}
		if req.DarkMode != nil {
			if err := prefs.SetDarkMode(*req.DarkMode); err != nil && errors.Is(err, store.ErrPersistence) {
				warned = true
			}
		}

		resp := fiber.Map{
			"refreshMinutes": prefs.RefreshMinutes(),
			"darkMode":       prefs.DarkMode(),
		}
		if warned {
			resp["warning"] = persistWarning
		}
		return c.JSON(resp)
	})
}

type addCityRequest struct {
	Name string `json:"name" validate:"required"`
}

type reorderRequest struct {
	From *int `json:"from" validate:"required,gte=0"`
	To   *int `json:"to" validate:"required,gte=0"`
}

type settingsRequest struct {
	RefreshMinutes *int  `json:"refreshMinutes"`
	DarkMode       *bool `json:"darkMode"`
}

// weatherError maps classified fetch failures to HTTP statuses.
func weatherError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNetwork), errors.Is(err, weather.ErrDecode):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
