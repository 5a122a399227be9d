// Package mapper turns provider JSON into the weather domain model.
package mapper

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/i474232898/openweathermap-client/internal/schema"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

// maxCapacityHint bounds how much a declared count may pre-allocate.
const maxCapacityHint = 1000

// Mapper maps responses for one unit system. It holds no per-response state
// and is safe for concurrent use.
type Mapper struct {
	units  weather.UnitSystem
	zone   *time.Location
	schema schema.Set
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithZone sets the zone instants are expressed in. The default is UTC.
func WithZone(zone *time.Location) Option {
	return func(m *Mapper) {
		if zone != nil {
			m.zone = zone
		}
	}
}

// WithSchema replaces the provider wire schema, e.g. with schema.Model to
// read back formatter output.
func WithSchema(s schema.Set) Option {
	return func(m *Mapper) {
		m.schema = s
	}
}

// New returns a Mapper labelling values for units. units must be the unit
// system the request was sent with.
func New(units weather.UnitSystem, opts ...Option) *Mapper {
	m := &Mapper{
		units:  units,
		zone:   time.UTC,
		schema: schema.Provider,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Units returns the unit system labels are resolved from.
func (m *Mapper) Units() weather.UnitSystem {
	return m.units
}

// Map converts a response body for the given endpoint kind. Any missing or
// mistyped mandatory field fails the whole response with an error matching
// weather.ErrMalformedResponse.
func (m *Mapper) Map(kind weather.Kind, data []byte) (weather.Model, error) {
	if !gjson.ValidBytes(data) {
		return nil, &weather.MalformedResponseError{Endpoint: kind, Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &weather.MalformedResponseError{Endpoint: kind, Reason: "top-level value is not an object"}
	}

	r := newFieldReader(kind, root)
	var model weather.Model
	switch kind {
	case weather.KindCurrent:
		w := m.weather(r, m.schema.Current)
		model = &w
	case weather.KindCurrentRectangle:
		model = m.weatherList(r, m.schema.Rectangle)
	case weather.KindCurrentCycle:
		model = m.weatherList(r, m.schema.Cycle)
	case weather.KindForecast:
		model = m.forecast(r, m.schema.Forecast)
	case weather.KindAirPollution:
		model = m.airPollution(r, m.schema.AirPollution)
	default:
		return nil, fmt.Errorf("%w: unsupported endpoint kind %d", weather.ErrMalformedResponse, int(kind))
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return model, nil
}

func (m *Mapper) instant(epoch int64) time.Time {
	return time.Unix(epoch, 0).In(m.zone)
}

func (m *Mapper) forecast(r fieldReader, s schema.Forecast) *weather.Forecast {
	city, ok := r.object(s.City)
	if !ok {
		return nil
	}
	loc := m.location(city, s.Location)

	list, ok := r.array(s.List)
	if !ok {
		return nil
	}

	steps := make([]weather.WeatherForecast, 0, capacity(r, s.Count, len(list)))
	for i, node := range list {
		step := m.forecastStep(r.at(fmt.Sprintf("%s.%d", s.List, i), node), s.Item)
		if r.failed() {
			return nil
		}
		steps = append(steps, step)
	}

	return &weather.Forecast{Location: loc, Forecasts: steps}
}

func (m *Mapper) forecastStep(r fieldReader, s schema.Item) weather.WeatherForecast {
	return weather.WeatherForecast{
		Time:        m.instant(r.integer(s.Time)),
		TimeText:    r.text(s.TimeText),
		State:       state(r, s),
		Temperature: m.temperature(r, s),
		Pressure:    pressure(r, s),
		Humidity:    weather.Humidity{Value: r.percentage(s.Humidity)},
		Clouds:      clouds(r, s),
		Wind:        m.wind(r, s),
		Rain:        rain(r, s),
		Snow:        snow(r, s),
		DayTime:     dayTime(r, s.DayTime),
	}
}

func (m *Mapper) weather(r fieldReader, s schema.Item) weather.Weather {
	return weather.Weather{
		CalculatedAt: m.instant(r.integer(s.Time)),
		Location:     m.location(r, s.Location),
		State:        state(r, s),
		Temperature:  m.temperature(r, s),
		Pressure:     pressure(r, s),
		Humidity:     weather.Humidity{Value: r.percentage(s.Humidity)},
		Wind:         m.wind(r, s),
		Clouds:       clouds(r, s),
		Rain:         rain(r, s),
		Snow:         snow(r, s),
		Visibility:   r.optInteger(s.Visibility),
	}
}

func (m *Mapper) weatherList(r fieldReader, s schema.List) *weather.WeatherList {
	list, ok := r.array(s.List)
	if !ok {
		return nil
	}

	items := make([]weather.Weather, 0, capacity(r, s.Count, len(list)))
	for i, node := range list {
		item := m.weather(r.at(fmt.Sprintf("%s.%d", s.List, i), node), s.Item)
		if r.failed() {
			return nil
		}
		items = append(items, item)
	}

	return weather.NewWeatherList(r.kind, items)
}

func (m *Mapper) airPollution(r fieldReader, s schema.AirPollution) *weather.AirPollution {
	text := r.text(s.Time)
	if r.failed() {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, text)
	if err != nil {
		r.fail(s.Time, fmt.Sprintf("invalid timestamp %q", text))
		return nil
	}

	coord := weather.Coordinate{
		Latitude:  r.number(s.Latitude),
		Longitude: r.number(s.Longitude),
	}

	data, ok := r.array(s.Data)
	if !ok {
		return nil
	}
	readings := make([]weather.AirPollutionInfo, 0, len(data))
	for i, node := range data {
		item := r.at(fmt.Sprintf("%s.%d", s.Data, i), node)
		readings = append(readings, weather.AirPollutionInfo{
			Precision: item.number(s.Precision),
			Pressure:  item.number(s.Pressure),
			Value:     item.number(s.Value),
		})
		if r.failed() {
			return nil
		}
	}

	return &weather.AirPollution{
		Time:       ts.In(m.zone),
		TimeText:   text,
		Coordinate: coord,
		Readings:   readings,
	}
}

func (m *Mapper) location(r fieldReader, s schema.Location) weather.Location {
	loc := weather.Location{
		ID:          r.integer(s.ID),
		Name:        r.text(s.Name),
		CountryCode: r.optText(s.Country),
		Population:  r.optInteger(s.Population),
	}

	lat, lon := r.optNumber(s.Latitude), r.optNumber(s.Longitude)
	if lat != nil && lon != nil {
		loc.Coordinate = &weather.Coordinate{Latitude: *lat, Longitude: *lon}
	}
	if secs := r.optInteger(s.ZoneOffset); secs != nil {
		offset := time.Duration(*secs) * time.Second
		loc.ZoneOffset = &offset
	}
	if epoch := r.optInteger(s.Sunrise); epoch != nil {
		t := m.instant(*epoch)
		loc.Sunrise = &t
	}
	if epoch := r.optInteger(s.Sunset); epoch != nil {
		t := m.instant(*epoch)
		loc.Sunset = &t
	}

	return loc
}

func (m *Mapper) temperature(r fieldReader, s schema.Item) weather.Temperature {
	t := weather.NewTemperature(r.number(s.Temp), m.units)
	t.Min = r.optNumber(s.TempMin)
	t.Max = r.optNumber(s.TempMax)
	t.FeelsLike = r.optNumber(s.FeelsLike)
	return t
}

// wind is absent when the wind object is; a present object must carry a speed.
func (m *Mapper) wind(r fieldReader, s schema.Item) *weather.Wind {
	if !r.has(s.Wind) {
		return nil
	}
	w := weather.NewWind(r.number(s.WindSpeed), m.units)
	w.Degrees = r.optNumber(s.WindDegrees)
	w.Gust = r.optNumber(s.WindGust)
	return &w
}

func state(r fieldReader, s schema.Item) weather.WeatherState {
	return weather.WeatherState{
		Name:        r.text(s.StateName),
		Description: r.text(s.StateDescription),
		Icon:        r.text(s.StateIcon),
	}
}

func pressure(r fieldReader, s schema.Item) weather.Pressure {
	return weather.Pressure{
		Value:       r.number(s.Pressure),
		SeaLevel:    r.optNumber(s.SeaLevel),
		GroundLevel: r.optNumber(s.GroundLevel),
	}
}

func clouds(r fieldReader, s schema.Item) *weather.Clouds {
	if !r.has(s.Clouds) {
		return nil
	}
	return &weather.Clouds{Value: r.percentage(s.Clouds)}
}

func rain(r fieldReader, s schema.Item) *weather.Rain {
	one, three := r.optNumber(s.RainOneHour), r.optNumber(s.RainThreeHours)
	if one == nil && three == nil {
		return nil
	}
	return &weather.Rain{OneHour: one, ThreeHours: three}
}

func snow(r fieldReader, s schema.Item) *weather.Snow {
	one, three := r.optNumber(s.SnowOneHour), r.optNumber(s.SnowThreeHours)
	if one == nil && three == nil {
		return nil
	}
	return &weather.Snow{OneHour: one, ThreeHours: three}
}

// dayTime rejects codes other than "d" and "n" instead of defaulting.
func dayTime(r fieldReader, path string) *weather.DayTime {
	code := r.optText(path)
	if code == nil {
		return nil
	}
	d, err := weather.ParseDayTime(*code)
	if err != nil {
		r.fail(path, err.Error())
		return nil
	}
	return &d
}

// capacity uses a declared count only to size the slice; the actual list
// length always decides how many items are mapped.
func capacity(r fieldReader, countPath string, actual int) int {
	v, ok := r.lookup(countPath)
	if !ok || v.Type != gjson.Number {
		return actual
	}
	declared := v.Int()
	if declared < int64(actual) || declared > maxCapacityHint {
		return actual
	}
	return int(declared)
}
