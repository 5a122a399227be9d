package weather

import (
	"fmt"
	"time"
)

// Model is implemented by every mapped response.
// Model values are built once per response and are not modified afterwards.
type Model interface {
	Kind() Kind
}

// Coordinate is a point in degrees.
type Coordinate struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("lat=%g, lon=%g", c.Latitude, c.Longitude)
}

// CoordinateRectangle is a bounding box given by its corners.
type CoordinateRectangle struct {
	LongitudeLeft  float64 `validate:"gte=-180,lte=180"`
	LatitudeBottom float64 `validate:"gte=-90,lte=90"`
	LongitudeRight float64 `validate:"gte=-180,lte=180,gtfield=LongitudeLeft"`
	LatitudeTop    float64 `validate:"gte=-90,lte=90,gtfield=LatitudeBottom"`
}

// Location describes the place a result belongs to.
// ID and Name are always set; everything else may be absent.
type Location struct {
	ID          int64
	Name        string
	CountryCode *string
	Coordinate  *Coordinate
	Population  *int64
	// ZoneOffset is the provider's shift from UTC. It is never applied to the
	// other instants, which are expressed in the mapper's zone.
	ZoneOffset *time.Duration
	Sunrise    *time.Time
	Sunset     *time.Time
}

// Temperature is a reading whose unit label is fixed at construction.
type Temperature struct {
	Value     float64
	Min       *float64
	Max       *float64
	FeelsLike *float64

	unit string
}

// NewTemperature labels value with the temperature unit of units.
func NewTemperature(value float64, units UnitSystem) Temperature {
	return Temperature{Value: value, unit: units.Labels().Temperature}
}

func (t Temperature) Unit() string {
	return t.unit
}

// Pressure values are in hPa.
type Pressure struct {
	Value       float64
	SeaLevel    *float64
	GroundLevel *float64
}

func (Pressure) Unit() string {
	return PressureUnit
}

// Humidity is a relative humidity percentage, 0-100.
type Humidity struct {
	Value int
}

// Clouds is a cloud coverage percentage, 0-100.
type Clouds struct {
	Value int
}

// Wind is a reading whose unit label is fixed at construction.
type Wind struct {
	Speed   float64
	Degrees *float64
	Gust    *float64

	unit string
}

// NewWind labels speed with the wind speed unit of units.
func NewWind(speed float64, units UnitSystem) Wind {
	return Wind{Speed: speed, unit: units.Labels().WindSpeed}
}

func (w Wind) Unit() string {
	return w.unit
}

// Rain volumes in millimetres. OneHour is only reported for current weather.
type Rain struct {
	OneHour    *float64
	ThreeHours *float64
}

// Snow volumes in millimetres. OneHour is only reported for current weather.
type Snow struct {
	OneHour    *float64
	ThreeHours *float64
}

// PrecipitationUnit is the unit of Rain and Snow volumes.
const PrecipitationUnit = "mm"

// DayTime is the part of day a forecast step falls in.
type DayTime int

const (
	Day DayTime = iota + 1
	Night
)

// ParseDayTime decodes the provider's single-character part-of-day code.
func ParseDayTime(code string) (DayTime, error) {
	switch code {
	case "d":
		return Day, nil
	case "n":
		return Night, nil
	default:
		return 0, fmt.Errorf("unknown day/night code %q", code)
	}
}

// Code returns the provider code for d.
func (d DayTime) Code() string {
	switch d {
	case Day:
		return "d"
	case Night:
		return "n"
	default:
		return ""
	}
}

func (d DayTime) String() string {
	switch d {
	case Day:
		return "DAY"
	case Night:
		return "NIGHT"
	default:
		return "UNKNOWN"
	}
}

const iconBaseURL = "https://openweathermap.org/img/w/"

// WeatherState is the provider's condition group, description and icon code.
type WeatherState struct {
	Name        string
	Description string
	Icon        string
}

// IconURL returns the provider-hosted icon image for the state.
func (s WeatherState) IconURL() string {
	return iconBaseURL + s.Icon + ".png"
}

// WeatherForecast is one step of a forecast.
type WeatherForecast struct {
	// Time is the authoritative instant; TimeText is the provider's own
	// rendering of it, kept verbatim.
	Time     time.Time
	TimeText string

	State       WeatherState
	Temperature Temperature
	Pressure    Pressure
	Humidity    Humidity

	Clouds  *Clouds
	Wind    *Wind
	Rain    *Rain
	Snow    *Snow
	DayTime *DayTime
}

// Forecast is a location plus its forecast steps in provider order.
type Forecast struct {
	Location  Location
	Forecasts []WeatherForecast
}

func (*Forecast) Kind() Kind {
	return KindForecast
}

// Weather is a current weather result.
type Weather struct {
	CalculatedAt time.Time
	Location     Location

	State       WeatherState
	Temperature Temperature
	Pressure    Pressure
	Humidity    Humidity

	Wind   *Wind
	Clouds *Clouds
	Rain   *Rain
	Snow   *Snow
	// Visibility in metres.
	Visibility *int64
}

func (*Weather) Kind() Kind {
	return KindCurrent
}

// WeatherList holds the results of a multiple-result current weather query,
// in provider order.
type WeatherList struct {
	Items []Weather

	kind Kind
}

// NewWeatherList tags items with the multiple-result kind that produced them.
func NewWeatherList(kind Kind, items []Weather) *WeatherList {
	return &WeatherList{Items: items, kind: kind}
}

func (l *WeatherList) Kind() Kind {
	return l.kind
}

// AirPollutionInfo is one pollutant sample.
type AirPollutionInfo struct {
	Precision float64
	Pressure  float64
	Value     float64
}

// AirPollution is an air quality reading for a coordinate.
type AirPollution struct {
	Time       time.Time
	TimeText   string
	Coordinate Coordinate
	Readings   []AirPollutionInfo
}

func (*AirPollution) Kind() Kind {
	return KindAirPollution
}
