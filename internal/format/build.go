package format

import (
	"fmt"
	"time"

	"github.com/i474232898/openweathermap-client/internal/schema"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

// Build lays model out as a tree using the field paths of schema.Model.
func Build(model weather.Model) (*Node, error) {
	s := schema.Model

	switch m := model.(type) {
	case *weather.Weather:
		root := newObject("weather")
		putWeather(root, s.Current, m)
		return root, nil

	case *weather.WeatherList:
		ls := s.Rectangle
		if m.Kind() == weather.KindCurrentCycle {
			ls = s.Cycle
		}
		root := newObject("weatherList")
		list := root.array(ls.List, ls.ItemName)
		for i := range m.Items {
			item := newObject(ls.ItemName)
			putWeather(item, ls.Item, &m.Items[i])
			list.Items = append(list.Items, item)
		}
		return root, nil

	case *weather.Forecast:
		fs := s.Forecast
		root := newObject("forecast")
		putLocation(root.object(fs.City), fs.Location, m.Location)
		list := root.array(fs.List, fs.ItemName)
		for i := range m.Forecasts {
			item := newObject(fs.ItemName)
			putForecastStep(item, fs.Item, &m.Forecasts[i])
			list.Items = append(list.Items, item)
		}
		return root, nil

	case *weather.AirPollution:
		as := s.AirPollution
		root := newObject("airPollution")
		root.set(as.Time, m.TimeText)
		root.set(as.Latitude, m.Coordinate.Latitude)
		root.set(as.Longitude, m.Coordinate.Longitude)
		list := root.array(as.Data, as.ItemName)
		for _, r := range m.Readings {
			item := newObject(as.ItemName)
			item.set(as.Precision, r.Precision)
			item.set(as.Pressure, r.Pressure)
			item.set(as.Value, r.Value)
			list.Items = append(list.Items, item)
		}
		return root, nil

	default:
		return nil, fmt.Errorf("format: unsupported model %T", model)
	}
}

func putLocation(n *Node, s schema.Location, loc weather.Location) {
	n.set(s.ID, loc.ID)
	n.set(s.Name, loc.Name)
	n.setString(s.Country, loc.CountryCode)
	if loc.Coordinate != nil {
		n.set(s.Latitude, loc.Coordinate.Latitude)
		n.set(s.Longitude, loc.Coordinate.Longitude)
	}
	n.setInt(s.Population, loc.Population)
	if loc.ZoneOffset != nil {
		n.set(s.ZoneOffset, int64(*loc.ZoneOffset/time.Second))
	}
	if loc.Sunrise != nil {
		n.set(s.Sunrise, loc.Sunrise.Unix())
	}
	if loc.Sunset != nil {
		n.set(s.Sunset, loc.Sunset.Unix())
	}
}

func putWeather(n *Node, s schema.Item, w *weather.Weather) {
	n.set(s.Time, w.CalculatedAt.Unix())
	putLocation(n, s.Location, w.Location)
	putState(n, s, w.State)
	putTemperature(n, s, w.Temperature)
	putPressure(n, s, w.Pressure)
	n.set(s.Humidity, int64(w.Humidity.Value))
	putWind(n, s, w.Wind)
	putClouds(n, s, w.Clouds)
	if w.Rain != nil {
		n.setFloat(s.RainOneHour, w.Rain.OneHour)
		n.setFloat(s.RainThreeHours, w.Rain.ThreeHours)
	}
	if w.Snow != nil {
		n.setFloat(s.SnowOneHour, w.Snow.OneHour)
		n.setFloat(s.SnowThreeHours, w.Snow.ThreeHours)
	}
	n.setInt(s.Visibility, w.Visibility)
}

func putForecastStep(n *Node, s schema.Item, f *weather.WeatherForecast) {
	n.set(s.Time, f.Time.Unix())
	n.set(s.TimeText, f.TimeText)
	putState(n, s, f.State)
	putTemperature(n, s, f.Temperature)
	putPressure(n, s, f.Pressure)
	n.set(s.Humidity, int64(f.Humidity.Value))
	putClouds(n, s, f.Clouds)
	putWind(n, s, f.Wind)
	if f.Rain != nil {
		n.setFloat(s.RainOneHour, f.Rain.OneHour)
		n.setFloat(s.RainThreeHours, f.Rain.ThreeHours)
	}
	if f.Snow != nil {
		n.setFloat(s.SnowOneHour, f.Snow.OneHour)
		n.setFloat(s.SnowThreeHours, f.Snow.ThreeHours)
	}
	if f.DayTime != nil {
		n.set(s.DayTime, f.DayTime.Code())
	}
}

func putState(n *Node, s schema.Item, st weather.WeatherState) {
	n.set(s.StateName, st.Name)
	n.set(s.StateDescription, st.Description)
	n.set(s.StateIcon, st.Icon)
}

func putTemperature(n *Node, s schema.Item, t weather.Temperature) {
	n.set(s.Temp, t.Value)
	n.setFloat(s.TempMin, t.Min)
	n.setFloat(s.TempMax, t.Max)
	n.setFloat(s.FeelsLike, t.FeelsLike)
	n.set(s.TempUnit, t.Unit())
}

func putPressure(n *Node, s schema.Item, p weather.Pressure) {
	n.set(s.Pressure, p.Value)
	n.setFloat(s.SeaLevel, p.SeaLevel)
	n.setFloat(s.GroundLevel, p.GroundLevel)
	n.set(s.PressureUnit, p.Unit())
}

func putWind(n *Node, s schema.Item, w *weather.Wind) {
	if w == nil {
		return
	}
	n.set(s.WindSpeed, w.Speed)
	n.setFloat(s.WindDegrees, w.Degrees)
	n.setFloat(s.WindGust, w.Gust)
	n.set(s.WindUnit, w.Unit())
}

func putClouds(n *Node, s schema.Item, c *weather.Clouds) {
	if c != nil {
		n.set(s.Clouds, int64(c.Value))
	}
}
