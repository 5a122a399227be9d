package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/openweathermap-client/internal/format"
	"github.com/i474232898/openweathermap-client/internal/request"
	"github.com/i474232898/openweathermap-client/internal/retrieval"
	"github.com/i474232898/openweathermap-client/internal/store"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

// Retriever renders a descriptor's result.
type Retriever interface {
	RetrieveText(ctx context.Context, desc request.Descriptor, f format.Format) (string, error)
}

// Defaults apply when a query omits units or lang.
type Defaults struct {
	Units    weather.UnitSystem
	Language string
}

type handler struct {
	retriever Retriever
	history   store.Store
	defaults  Defaults
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. history may be nil.
func RegisterRoutes(app *fiber.App, retriever Retriever, history store.Store, defaults Defaults) {
	h := &handler{retriever: retriever, history: history, defaults: defaults}

	v1 := app.Group("/api/v1")
	v1.Get("/weather/current", h.single(request.CurrentWeather))
	v1.Get("/weather/forecast", h.single(request.Forecast))
	v1.Get("/weather/box", h.box)
	v1.Get("/weather/cycle", h.cycle)
	v1.Get("/air-pollution", h.airPollution)
	v1.Get("/retrievals", h.retrievals)
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// single serves current weather and forecast. Every selector present in the
// query is applied, so conflicting selectors fail like a second selection.
func (h *handler) single(start func() *request.SingleLocation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b := start()

		var (
			cust *request.Customizer
			err  error
		)
		selectOnce := func(sel request.Selector) {
			if err != nil {
				return
			}
			cust, err = b.Select(sel)
		}

		if city := c.Query("city"); city != "" {
			selectOnce(request.CityName{Name: city, State: c.Query("state"), Country: c.Query("country")})
		}
		if raw := c.Query("id"); raw != "" {
			id, perr := strconv.ParseInt(raw, 10, 64)
			if perr != nil {
				return badRequest("id", "must be an integer")
			}
			selectOnce(request.CityID{ID: id})
		}
		if c.Query("lat") != "" || c.Query("lon") != "" {
			coord, perr := coordinate(c)
			if perr != nil {
				return perr
			}
			selectOnce(request.Coordinates{Point: coord})
		}
		if zip := c.Query("zip"); zip != "" {
			selectOnce(request.ZipCode{Zip: zip, Country: c.Query("country")})
		}
		if err != nil {
			return toHTTPError(err)
		}
		if cust == nil {
			return badRequest("location", "one of city, id, lat/lon or zip is required")
		}

		if raw := c.Query("cnt"); raw != "" {
			n, perr := strconv.Atoi(raw)
			if perr != nil {
				return badRequest("cnt", "must be an integer")
			}
			cust.Count(n)
		}
		return h.respond(c, cust)
	}
}

func (h *handler) box(c *fiber.Ctx) error {
	parts := strings.Split(c.Query("bbox"), ",")
	if len(parts) != 4 {
		return badRequest("bbox", "expected lonLeft,latBottom,lonRight,latTop")
	}
	var corners [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return badRequest("bbox", "corners must be numbers")
		}
		corners[i] = f
	}
	count, err := intQuery(c, "cnt", 10)
	if err != nil {
		return err
	}

	cust, err := request.MultipleCurrentWeather().ByRectangle(weather.CoordinateRectangle{
		LongitudeLeft:  corners[0],
		LatitudeBottom: corners[1],
		LongitudeRight: corners[2],
		LatitudeTop:    corners[3],
	}, count, c.QueryBool("cluster", false))
	if err != nil {
		return toHTTPError(err)
	}
	return h.respond(c, cust)
}

func (h *handler) cycle(c *fiber.Ctx) error {
	center, err := coordinate(c)
	if err != nil {
		return err
	}
	count, err := intQuery(c, "cnt", 10)
	if err != nil {
		return err
	}

	cust, err := request.MultipleCurrentWeather().ByCitiesInCycle(center, count, c.QueryBool("cluster", false))
	if err != nil {
		return toHTTPError(err)
	}
	return h.respond(c, cust)
}

func (h *handler) airPollution(c *fiber.Ctx) error {
	coord, err := coordinate(c)
	if err != nil {
		return err
	}
	cust, err := request.AirPollution().ByCoordinate(coord)
	if err != nil {
		return toHTTPError(err)
	}
	return h.respond(c, cust)
}

func (h *handler) retrievals(c *fiber.Ctx) error {
	if h.history == nil {
		return fiber.NewError(fiber.StatusNotFound, "retrieval history is disabled")
	}
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		return err
	}

	recs, err := h.history.Recent(c.UserContext(), limit)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(fiber.Map{"retrievals": []retrieval.Record{}})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load retrieval history")
	}
	return c.JSON(fiber.Map{"retrievals": recs})
}

// respond applies the common customization, retrieves and writes the body.
func (h *handler) respond(c *fiber.Ctx, cust *request.Customizer) error {
	f, err := format.ParseFormat(c.Query("format", "json"))
	if err != nil {
		return toHTTPError(err)
	}

	units := h.defaults.Units
	if raw := c.Query("units"); raw != "" {
		if units, err = weather.ParseUnitSystem(raw); err != nil {
			return toHTTPError(err)
		}
	}
	if units != "" {
		cust.Units(units)
	}
	if lang := c.Query("lang", h.defaults.Language); lang != "" {
		cust.Language(lang)
	}

	desc, err := cust.Build()
	if err != nil {
		return toHTTPError(err)
	}

	out, err := h.retriever.RetrieveText(c.UserContext(), desc, f)
	if err != nil {
		return toHTTPError(err)
	}

	c.Set(fiber.HeaderContentType, f.ContentType())
	return c.SendString(out)
}

func coordinate(c *fiber.Ctx) (weather.Coordinate, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return weather.Coordinate{}, badRequest("lat", "must be a number")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return weather.Coordinate{}, badRequest("lon", "must be a number")
	}
	return weather.Coordinate{Latitude: lat, Longitude: lon}, nil
}

func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(key, "must be an integer")
	}
	return n, nil
}

func badRequest(field, msg string) error {
	return toHTTPError(&weather.ParameterError{Field: field, Message: msg})
}

func toHTTPError(err error) error {
	var apiErr *weather.APIError
	switch {
	case errors.Is(err, weather.ErrInvalidRequestParameter):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNoDataFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrInvalidAuthToken),
		errors.Is(err, weather.ErrMalformedResponse),
		errors.As(err, &apiErr):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, "upstream request failed: "+err.Error())
	}
}
