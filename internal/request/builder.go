// Package request builds request descriptors for the supported endpoints.
//
// A request goes through three stages: pick an endpoint family, select
// exactly one location, then optionally customize it before Build returns a
// Descriptor:
//
//	c, err := request.Forecast().ByCityName("London", "GB")
//	if err != nil {
//		return err
//	}
//	desc, err := c.Units(weather.Metric).Language("en").Count(8).Build()
//
// Builders are not safe for concurrent use; use one per request.
package request

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/i474232898/openweathermap-client/internal/weather"
)

type family int

const (
	single family = iota + 1
	forecast
	multiple
	airPollution
)

// Descriptor is a fully specified request: the resource path and its query
// parameters, unencoded. The API key is added by the transport.
type Descriptor struct {
	Kind   weather.Kind
	Path   string
	Params map[string]string
	// Units is the unit system the request asks for. Labels on the mapped
	// result must be resolved from this value.
	Units weather.UnitSystem
}

// Key is a stable text form of the descriptor, usable in logs and store keys.
func (d Descriptor) Key() string {
	keys := make([]string, 0, len(d.Params))
	for k := range d.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(d.Path)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(d.Params[k])
	}
	return b.String()
}

type builder struct {
	family   family
	selector Selector
}

// Select sets the location. It fails if a location was already selected,
// leaving the first selection in place, or if sel is invalid or not
// supported by the endpoint.
func (b *builder) Select(sel Selector) (*Customizer, error) {
	if b.selector != nil {
		return nil, &weather.ParameterError{
			Field:   "location",
			Message: fmt.Sprintf("already selected by %s, cannot also select by %s", b.selector.label(), sel.label()),
		}
	}
	if !sel.allowed(b.family) {
		return nil, &weather.ParameterError{
			Field:   "location",
			Message: fmt.Sprintf("selection by %s is not supported by this endpoint", sel.label()),
		}
	}
	if err := check(sel); err != nil {
		return nil, err
	}
	b.selector = sel
	return &Customizer{b: b}, nil
}

// SingleLocation builds current weather and forecast requests.
type SingleLocation struct {
	builder
}

// CurrentWeather starts a current weather request for one place.
func CurrentWeather() *SingleLocation {
	return &SingleLocation{builder{family: single}}
}

// Forecast starts a 5 day / 3 hour forecast request.
func Forecast() *SingleLocation {
	return &SingleLocation{builder{family: forecast}}
}

// ByCityName selects by place name; country may be empty.
func (s *SingleLocation) ByCityName(name, country string) (*Customizer, error) {
	return s.Select(CityName{Name: name, Country: country})
}

// ByCityNameInState selects by place name, state code and country code.
func (s *SingleLocation) ByCityNameInState(name, state, country string) (*Customizer, error) {
	return s.Select(CityName{Name: name, State: state, Country: country})
}

func (s *SingleLocation) ByCityID(id int64) (*Customizer, error) {
	return s.Select(CityID{ID: id})
}

func (s *SingleLocation) ByCoordinate(c weather.Coordinate) (*Customizer, error) {
	return s.Select(Coordinates{Point: c})
}

// ByZipCode selects by postal code; an empty country means the USA.
func (s *SingleLocation) ByZipCode(zip, country string) (*Customizer, error) {
	return s.Select(ZipCode{Zip: zip, Country: country})
}

// MultipleLocation builds multiple-result current weather requests.
type MultipleLocation struct {
	builder
}

// MultipleCurrentWeather starts a current weather request returning several stations.
func MultipleCurrentWeather() *MultipleLocation {
	return &MultipleLocation{builder{family: multiple}}
}

func (m *MultipleLocation) ByRectangle(box weather.CoordinateRectangle, count int, cluster bool) (*Customizer, error) {
	return m.Select(Rectangle{Box: box, Count: count, Cluster: cluster})
}

func (m *MultipleLocation) ByCitiesInCycle(center weather.Coordinate, count int, cluster bool) (*Customizer, error) {
	return m.Select(Cycle{Center: center, Count: count, Cluster: cluster})
}

// PointLocation builds air pollution requests, which only accept a coordinate.
type PointLocation struct {
	builder
}

func AirPollution() *PointLocation {
	return &PointLocation{builder{family: airPollution}}
}

func (p *PointLocation) ByCoordinate(c weather.Coordinate) (*Customizer, error) {
	return p.Select(Coordinates{Point: c})
}

// Customizer sets optional parameters on a request whose location is chosen.
// Values are validated by Build.
type Customizer struct {
	b        *builder
	language string
	units    weather.UnitSystem
	count    int
}

// Language sets the provider language token for descriptions.
func (c *Customizer) Language(lang string) *Customizer {
	c.language = lang
	return c
}

// Units sets the unit system. Without it the provider uses Standard.
func (c *Customizer) Units(u weather.UnitSystem) *Customizer {
	c.units = u
	return c
}

// Count limits the number of forecast steps. Only forecast requests accept it.
func (c *Customizer) Count(n int) *Customizer {
	c.count = n
	return c
}

// Build validates the customization and returns the descriptor.
func (c *Customizer) Build() (Descriptor, error) {
	b := c.b

	desc := Descriptor{
		Params: maps.Clone(b.selector.params()),
		Units:  weather.Standard,
	}
	switch b.family {
	case single:
		desc.Kind = weather.KindCurrent
	case forecast:
		desc.Kind = weather.KindForecast
	case multiple:
		desc.Kind = kindOf(b.selector)
	case airPollution:
		desc.Kind = weather.KindAirPollution
	}
	desc.Path = desc.Kind.Path()

	if c.units != "" {
		if !c.units.Valid() {
			return Descriptor{}, &weather.ParameterError{Field: "units", Message: fmt.Sprintf("unsupported unit system %q", c.units)}
		}
		desc.Units = c.units
		desc.Params["units"] = string(c.units)
	}

	if c.language != "" {
		lang := strings.ToLower(c.language)
		if !SupportedLanguage(lang) {
			return Descriptor{}, &weather.ParameterError{Field: "lang", Message: fmt.Sprintf("unsupported language %q", c.language)}
		}
		desc.Params["lang"] = lang
	}

	if c.count != 0 {
		if b.family != forecast {
			return Descriptor{}, &weather.ParameterError{Field: "cnt", Message: "result count is only supported by forecast requests"}
		}
		if c.count < 0 {
			return Descriptor{}, &weather.ParameterError{Field: "cnt", Message: fmt.Sprintf("count must be positive, got %d", c.count)}
		}
		desc.Params["cnt"] = strconv.Itoa(c.count)
	}

	return desc, nil
}
