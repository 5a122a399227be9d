// Package schema holds the field paths of every supported response shape.
//
// A path is a dot-separated walk from a node to a value; numeric segments
// index arrays. An empty path means the shape does not carry that field.
// Provider describes the remote wire format. Model describes the format the
// formatter writes, so formatted JSON can be mapped back with the same mapper.
package schema

// Location paths are relative to the node holding the location.
type Location struct {
	ID         string
	Name       string
	Country    string
	Latitude   string
	Longitude  string
	Population string
	ZoneOffset string
	Sunrise    string
	Sunset     string
}

// Item paths are relative to one current weather result or forecast step.
type Item struct {
	Time     string
	TimeText string

	StateName        string
	StateDescription string
	StateIcon        string

	Temp            string
	TempMin         string
	TempMax         string
	FeelsLike       string
	TempUnit        string
	Pressure        string
	SeaLevel        string
	GroundLevel     string
	PressureUnit    string
	Humidity        string
	Clouds          string
	Wind            string
	WindSpeed       string
	WindDegrees     string
	WindGust        string
	WindUnit        string
	RainOneHour     string
	RainThreeHours  string
	SnowOneHour     string
	SnowThreeHours  string
	DayTime         string
	Visibility      string

	// Location is only used by current weather results, which carry their
	// location inline.
	Location Location
}

// List is a multiple-result current weather response.
type List struct {
	Count    string
	List     string
	ItemName string
	Item     Item
}

// Forecast is a forecast response. Location paths are relative to City.
type Forecast struct {
	Count    string
	List     string
	ItemName string
	City     string
	Location Location
	Item     Item
}

// AirPollution is an air pollution response. Reading paths are relative to
// one element of Data.
type AirPollution struct {
	Time      string
	Latitude  string
	Longitude string
	Data      string
	ItemName  string
	Precision string
	Pressure  string
	Value     string
}

// Set groups the shapes of the whole endpoint family.
type Set struct {
	Current      Item
	Rectangle    List
	Cycle        List
	Forecast     Forecast
	AirPollution AirPollution
}

var providerLocation = Location{
	ID:         "id",
	Name:       "name",
	Country:    "sys.country",
	Latitude:   "coord.lat",
	Longitude:  "coord.lon",
	ZoneOffset: "timezone",
	Sunrise:    "sys.sunrise",
	Sunset:     "sys.sunset",
}

var providerCurrent = Item{
	Time:             "dt",
	StateName:        "weather.0.main",
	StateDescription: "weather.0.description",
	StateIcon:        "weather.0.icon",
	Temp:             "main.temp",
	TempMin:          "main.temp_min",
	TempMax:          "main.temp_max",
	FeelsLike:        "main.feels_like",
	Pressure:         "main.pressure",
	SeaLevel:         "main.sea_level",
	GroundLevel:      "main.grnd_level",
	Humidity:         "main.humidity",
	Clouds:           "clouds.all",
	Wind:             "wind",
	WindSpeed:        "wind.speed",
	WindDegrees:      "wind.deg",
	WindGust:         "wind.gust",
	RainOneHour:      "rain.1h",
	RainThreeHours:   "rain.3h",
	SnowOneHour:      "snow.1h",
	SnowThreeHours:   "snow.3h",
	Visibility:       "visibility",
	Location:         providerLocation,
}

// Provider is the remote wire format.
var Provider = Set{
	Current:   providerCurrent,
	Rectangle: List{Count: "cnt", List: "list", Item: rectangleItem()},
	Cycle:     List{Count: "count", List: "list", Item: providerCurrent},
	Forecast: Forecast{
		Count: "cnt",
		List:  "list",
		City:  "city",
		Location: Location{
			ID:         "id",
			Name:       "name",
			Country:    "country",
			Latitude:   "coord.lat",
			Longitude:  "coord.lon",
			Population: "population",
			ZoneOffset: "timezone",
			Sunrise:    "sunrise",
			Sunset:     "sunset",
		},
		Item: forecastItem(),
	},
	AirPollution: AirPollution{
		Time:      "time",
		Latitude:  "location.latitude",
		Longitude: "location.longitude",
		Data:      "data",
		Precision: "precision",
		Pressure:  "pressure",
		Value:     "value",
	},
}

// box/city results spell coordinates with capitals and report cloudiness as "today".
func rectangleItem() Item {
	it := providerCurrent
	it.Clouds = "clouds.today"
	it.Location = Location{
		ID:        "id",
		Name:      "name",
		Latitude:  "coord.Lat",
		Longitude: "coord.Lon",
	}
	return it
}

func forecastItem() Item {
	it := providerCurrent
	it.TimeText = "dt_txt"
	it.RainOneHour = ""
	it.SnowOneHour = ""
	it.DayTime = "sys.pod"
	it.Visibility = ""
	it.Location = Location{}
	return it
}

var modelLocation = Location{
	ID:         "id",
	Name:       "name",
	Country:    "country",
	Latitude:   "coordinate.latitude",
	Longitude:  "coordinate.longitude",
	Population: "population",
	ZoneOffset: "zoneOffset",
	Sunrise:    "sunrise",
	Sunset:     "sunset",
}

var modelForecastItem = Item{
	Time:             "time",
	TimeText:         "timeText",
	StateName:        "state.name",
	StateDescription: "state.description",
	StateIcon:        "state.icon",
	Temp:             "temperature.value",
	TempMin:          "temperature.min",
	TempMax:          "temperature.max",
	FeelsLike:        "temperature.feelsLike",
	TempUnit:         "temperature.unit",
	Pressure:         "pressure.value",
	SeaLevel:         "pressure.seaLevel",
	GroundLevel:      "pressure.groundLevel",
	PressureUnit:     "pressure.unit",
	Humidity:         "humidity.value",
	Clouds:           "clouds.value",
	Wind:             "wind",
	WindSpeed:        "wind.speed",
	WindDegrees:      "wind.degrees",
	WindGust:         "wind.gust",
	WindUnit:         "wind.unit",
	RainThreeHours:   "rain.threeHours",
	SnowThreeHours:   "snow.threeHours",
	DayTime:          "dayTime",
}

func modelCurrent() Item {
	it := modelForecastItem
	it.Time = "calculatedAt"
	it.TimeText = ""
	it.DayTime = ""
	it.RainOneHour = "rain.oneHour"
	it.SnowOneHour = "snow.oneHour"
	it.Visibility = "visibility"
	it.Location = Prefixed("location", modelLocation)
	return it
}

// Model is the formatter's own format.
var Model = Set{
	Current:   modelCurrent(),
	Rectangle: List{List: "results", ItemName: "weather", Item: modelCurrent()},
	Cycle:     List{List: "results", ItemName: "weather", Item: modelCurrent()},
	Forecast: Forecast{
		List:     "forecasts",
		ItemName: "forecast",
		City:     "location",
		Location: modelLocation,
		Item:     modelForecastItem,
	},
	AirPollution: AirPollution{
		Time:      "time",
		Latitude:  "coordinate.latitude",
		Longitude: "coordinate.longitude",
		Data:      "readings",
		ItemName:  "reading",
		Precision: "precision",
		Pressure:  "pressure",
		Value:     "value",
	},
}

// Prefixed returns l with every non-empty path moved under root.
func Prefixed(root string, l Location) Location {
	p := func(path string) string {
		if path == "" {
			return ""
		}
		return root + "." + path
	}
	return Location{
		ID:         p(l.ID),
		Name:       p(l.Name),
		Country:    p(l.Country),
		Latitude:   p(l.Latitude),
		Longitude:  p(l.Longitude),
		Population: p(l.Population),
		ZoneOffset: p(l.ZoneOffset),
		Sunrise:    p(l.Sunrise),
		Sunset:     p(l.Sunset),
	}
}
