package mapper

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/openweathermap-client/internal/weather"
)

const londonForecast = `{"cnt":1,"list":[{"dt":1600000000,"dt_txt":"2020-09-13 12:00:00","main":{"temp":20.5,"pressure":1013,"humidity":60},"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}],"clouds":{"all":0},"wind":{"speed":3.1}}],"city":{"id":2643743,"name":"London","coord":{"lat":51.5,"lon":-0.13},"country":"GB","timezone":0}}`

func mapForecast(t *testing.T, units weather.UnitSystem, body string) *weather.Forecast {
	t.Helper()
	m, err := New(units).Map(weather.KindForecast, []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := m.(*weather.Forecast)
	if !ok {
		t.Fatalf("expected *weather.Forecast, got %T", m)
	}
	return f
}

func TestMapForecastLondon(t *testing.T) {
	f := mapForecast(t, weather.Metric, londonForecast)

	if f.Location.Name != "London" || f.Location.ID != 2643743 {
		t.Fatalf("unexpected location %+v", f.Location)
	}
	if f.Location.CountryCode == nil || *f.Location.CountryCode != "GB" {
		t.Fatalf("expected country GB, got %v", f.Location.CountryCode)
	}
	if c := f.Location.Coordinate; c == nil || c.Latitude != 51.5 || c.Longitude != -0.13 {
		t.Fatalf("unexpected coordinate %v", c)
	}
	if f.Location.ZoneOffset == nil || *f.Location.ZoneOffset != 0 {
		t.Fatalf("expected explicit zero zone offset, got %v", f.Location.ZoneOffset)
	}
	if f.Location.Population != nil || f.Location.Sunrise != nil || f.Location.Sunset != nil {
		t.Fatalf("expected absent population and sun times, got %+v", f.Location)
	}

	if len(f.Forecasts) != 1 {
		t.Fatalf("expected 1 forecast step, got %d", len(f.Forecasts))
	}
	step := f.Forecasts[0]
	if step.Temperature.Value != 20.5 {
		t.Fatalf("expected temperature 20.5, got %v", step.Temperature.Value)
	}
	if step.Temperature.Unit() != "°C" {
		t.Fatalf("expected °C label, got %q", step.Temperature.Unit())
	}
	if step.Clouds == nil || step.Clouds.Value != 0 {
		t.Fatalf("expected clouds present with 0, got %v", step.Clouds)
	}
	if step.Rain != nil || step.Snow != nil {
		t.Fatalf("expected rain and snow absent, got %v %v", step.Rain, step.Snow)
	}
	if step.Wind == nil || step.Wind.Speed != 3.1 || step.Wind.Degrees != nil {
		t.Fatalf("unexpected wind %+v", step.Wind)
	}
	if step.DayTime != nil {
		t.Fatalf("expected absent day time without sys, got %v", *step.DayTime)
	}
	if !step.Time.Equal(time.Unix(1600000000, 0)) || step.TimeText != "2020-09-13 12:00:00" {
		t.Fatalf("unexpected time %v / %q", step.Time, step.TimeText)
	}
	if step.State.Name != "Clear" || step.State.IconURL() != "https://openweathermap.org/img/w/01d.png" {
		t.Fatalf("unexpected state %+v", step.State)
	}
}

func TestMapNeverRescales(t *testing.T) {
	for _, units := range []weather.UnitSystem{weather.Standard, weather.Metric, weather.Imperial} {
		step := mapForecast(t, units, londonForecast).Forecasts[0]
		if step.Temperature.Value != 20.5 || step.Pressure.Value != 1013 || step.Humidity.Value != 60 {
			t.Fatalf("%s: values changed: %+v %+v %+v", units, step.Temperature, step.Pressure, step.Humidity)
		}
		labels := units.Labels()
		if step.Temperature.Unit() != labels.Temperature || step.Wind.Unit() != labels.WindSpeed {
			t.Fatalf("%s: labels %q/%q do not match request units", units, step.Temperature.Unit(), step.Wind.Unit())
		}
		if step.Pressure.Unit() != "hPa" {
			t.Fatalf("%s: pressure unit %q", units, step.Pressure.Unit())
		}
	}
}

func TestMapDayTimeCodes(t *testing.T) {
	tests := []struct {
		code    string
		want    weather.DayTime
		wantErr bool
	}{
		{code: "d", want: weather.Day},
		{code: "n", want: weather.Night},
		{code: "x", wantErr: true},
		{code: "", wantErr: true},
		{code: "D", wantErr: true},
	}

	for _, tt := range tests {
		body := strings.Replace(londonForecast, `"wind":{"speed":3.1}`, `"wind":{"speed":3.1},"sys":{"pod":"`+tt.code+`"}`, 1)
		m, err := New(weather.Metric).Map(weather.KindForecast, []byte(body))
		if tt.wantErr {
			if !errors.Is(err, weather.ErrMalformedResponse) {
				t.Fatalf("code %q: expected malformed response, got %v", tt.code, err)
			}
			var merr *weather.MalformedResponseError
			if !errors.As(err, &merr) || merr.Field != "list.0.sys.pod" {
				t.Fatalf("code %q: expected field list.0.sys.pod, got %v", tt.code, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("code %q: unexpected error: %v", tt.code, err)
		}
		dt := m.(*weather.Forecast).Forecasts[0].DayTime
		if dt == nil || *dt != tt.want {
			t.Fatalf("code %q: expected %v, got %v", tt.code, tt.want, dt)
		}
	}
}

func TestMapOptionalSubEntities(t *testing.T) {
	withAll := strings.Replace(londonForecast, `"clouds":{"all":0}`,
		`"clouds":{"all":0},"rain":{"3h":0},"snow":{"3h":1.25}`, 1)
	step := mapForecast(t, weather.Standard, withAll).Forecasts[0]
	if step.Rain == nil || step.Rain.ThreeHours == nil || *step.Rain.ThreeHours != 0 {
		t.Fatalf("expected zero-valued rain to be present, got %+v", step.Rain)
	}
	if step.Rain.OneHour != nil {
		t.Fatalf("forecast rain has no 1h volume, got %v", *step.Rain.OneHour)
	}
	if step.Snow == nil || *step.Snow.ThreeHours != 1.25 {
		t.Fatalf("expected snow 1.25, got %+v", step.Snow)
	}

	noClouds := strings.Replace(londonForecast, `"clouds":{"all":0},`, ``, 1)
	if step := mapForecast(t, weather.Standard, noClouds).Forecasts[0]; step.Clouds != nil {
		t.Fatalf("expected clouds absent, got %+v", step.Clouds)
	}

	noWind := strings.Replace(londonForecast, `,"wind":{"speed":3.1}`, ``, 1)
	if step := mapForecast(t, weather.Standard, noWind).Forecasts[0]; step.Wind != nil {
		t.Fatalf("expected wind absent, got %+v", step.Wind)
	}

	nullRain := strings.Replace(londonForecast, `"clouds":{"all":0}`, `"clouds":{"all":0},"rain":null`, 1)
	if step := mapForecast(t, weather.Standard, nullRain).Forecasts[0]; step.Rain != nil {
		t.Fatalf("expected null rain treated as absent, got %+v", step.Rain)
	}
}

func TestMapSequenceLengthIsAuthoritative(t *testing.T) {
	item := `{"dt":%d,"dt_txt":"t","main":{"temp":1,"pressure":2,"humidity":3},"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}]}`
	var items []string
	for i := 0; i < 3; i++ {
		items = append(items, strings.Replace(item, "%d", []string{"30", "10", "20"}[i], 1))
	}
	list := "[" + strings.Join(items, ",") + "]"
	city := `"city":{"id":1,"name":"X"}`

	for _, cnt := range []string{"1", "3", "40", "-5", `"two"`} {
		body := `{"cnt":` + cnt + `,"list":` + list + `,` + city + `}`
		f := mapForecast(t, weather.Standard, body)
		if len(f.Forecasts) != 3 {
			t.Fatalf("cnt %s: expected 3 steps, got %d", cnt, len(f.Forecasts))
		}
		for i, want := range []int64{30, 10, 20} {
			if f.Forecasts[i].Time.Unix() != want {
				t.Fatalf("cnt %s: step %d out of order: %d", cnt, i, f.Forecasts[i].Time.Unix())
			}
		}
	}
}

func TestMapMalformed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "invalid json", body: `{"cnt":`},
		{name: "array top level", body: `[]`},
		{name: "missing city", body: `{"list":[]}`, field: "city"},
		{name: "missing list", body: `{"city":{"id":1,"name":"X"}}`, field: "list"},
		{name: "missing city name", body: `{"list":[],"city":{"id":1}}`, field: "city.name"},
		{
			name:  "missing temperature",
			body:  strings.Replace(londonForecast, `"temp":20.5,`, ``, 1),
			field: "list.0.main.temp",
		},
		{
			name:  "mistyped humidity",
			body:  strings.Replace(londonForecast, `"humidity":60`, `"humidity":"60"`, 1),
			field: "list.0.main.humidity",
		},
		{
			name:  "humidity out of range",
			body:  strings.Replace(londonForecast, `"humidity":60`, `"humidity":160`, 1),
			field: "list.0.main.humidity",
		},
		{
			name:  "wind without speed",
			body:  strings.Replace(londonForecast, `"wind":{"speed":3.1}`, `"wind":{"deg":90}`, 1),
			field: "list.0.wind.speed",
		},
		{
			name:  "missing weather state",
			body:  strings.Replace(londonForecast, `"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}],`, ``, 1),
			field: "list.0.weather.0.main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(weather.Metric).Map(weather.KindForecast, []byte(tt.body))
			if m != nil {
				t.Fatalf("expected no partial result, got %+v", m)
			}
			var merr *weather.MalformedResponseError
			if !errors.As(err, &merr) {
				t.Fatalf("expected MalformedResponseError, got %v", err)
			}
			if !errors.Is(err, weather.ErrMalformedResponse) {
				t.Fatalf("expected errors.Is ErrMalformedResponse")
			}
			if merr.Endpoint != weather.KindForecast {
				t.Fatalf("expected forecast endpoint, got %s", merr.Endpoint)
			}
			if tt.field != "" && merr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, merr.Field)
			}
		})
	}
}

const currentLondon = `{"coord":{"lon":-0.13,"lat":51.51},"weather":[{"id":300,"main":"Drizzle","description":"light intensity drizzle","icon":"09d"}],"base":"stations","main":{"temp":280.32,"feels_like":278.1,"pressure":1012,"humidity":81,"temp_min":279.15,"temp_max":281.15},"visibility":10000,"wind":{"speed":4.1,"deg":80},"clouds":{"all":90},"rain":{"1h":0.3},"dt":1485789600,"sys":{"type":1,"id":5091,"message":0.0103,"country":"GB","sunrise":1485762037,"sunset":1485794875},"timezone":3600,"id":2643743,"name":"London","cod":200}`

func TestMapCurrentWeather(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	m, err := New(weather.Standard, WithZone(zone)).Map(weather.KindCurrent, []byte(currentLondon))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := m.(*weather.Weather)

	if w.Temperature.Value != 280.32 || *w.Temperature.FeelsLike != 278.1 || *w.Temperature.Min != 279.15 {
		t.Fatalf("unexpected temperature %+v", w.Temperature)
	}
	if w.Temperature.Unit() != "K" {
		t.Fatalf("expected K, got %q", w.Temperature.Unit())
	}
	if w.Wind == nil || w.Wind.Degrees == nil || *w.Wind.Degrees != 80 || w.Wind.Gust != nil {
		t.Fatalf("unexpected wind %+v", w.Wind)
	}
	if w.Rain == nil || *w.Rain.OneHour != 0.3 || w.Rain.ThreeHours != nil {
		t.Fatalf("unexpected rain %+v", w.Rain)
	}
	if w.Snow != nil {
		t.Fatalf("expected snow absent")
	}
	if w.Visibility == nil || *w.Visibility != 10000 {
		t.Fatalf("unexpected visibility %v", w.Visibility)
	}
	if w.CalculatedAt.Location() != zone || w.CalculatedAt.Unix() != 1485789600 {
		t.Fatalf("expected instant in injected zone, got %v", w.CalculatedAt)
	}
	if w.Location.Sunrise == nil || w.Location.Sunrise.Unix() != 1485762037 {
		t.Fatalf("unexpected sunrise %v", w.Location.Sunrise)
	}
	if *w.Location.ZoneOffset != time.Hour {
		t.Fatalf("expected 1h zone offset, got %v", *w.Location.ZoneOffset)
	}
}

func TestMapRectangleAndCycle(t *testing.T) {
	box := `{"cod":200,"calctime":0.3107,"cnt":2,"list":[` +
		`{"id":2208791,"name":"Yafran","coord":{"Lon":12.52859,"Lat":32.06329},"main":{"temp":9.68,"pressure":961.02,"humidity":85},"dt":1485784982,"wind":{"speed":3.96,"deg":356.5},"rain":{"3h":0.255},"clouds":{"today":88},"weather":[{"main":"Rain","description":"light rain","icon":"10d"}]},` +
		`{"id":2208425,"name":"Zuwarah","coord":{"Lon":12.08199,"Lat":32.931198},"main":{"temp":15.36,"pressure":1018.56,"humidity":75},"dt":1485784982,"wind":{"speed":11.81,"deg":321.5},"clouds":{"today":0},"weather":[{"main":"Clear","description":"sky is clear","icon":"01d"}]}]}`

	m, err := New(weather.Metric).Map(weather.KindCurrentRectangle, []byte(box))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := m.(*weather.WeatherList)
	if list.Kind() != weather.KindCurrentRectangle || len(list.Items) != 2 {
		t.Fatalf("unexpected list %+v", list)
	}
	if c := list.Items[0].Location.Coordinate; c == nil || c.Latitude != 32.06329 {
		t.Fatalf("expected capitalised coordinates to map, got %v", c)
	}
	if list.Items[1].Clouds == nil || list.Items[1].Clouds.Value != 0 {
		t.Fatalf("expected clouds.today mapped, got %v", list.Items[1].Clouds)
	}

	cycle := `{"message":"accurate","cod":"200","count":1,"list":[{"id":2641549,"name":"Newtonhill","coord":{"lat":57.0333,"lon":-2.15},"main":{"temp":275.15,"pressure":1010,"humidity":93},"dt":1485792967,"wind":{"speed":5.1},"sys":{"country":"GB"},"clouds":{"all":90},"weather":[{"main":"Mist","description":"mist","icon":"50d"}]}]}`
	m, err = New(weather.Standard).Map(weather.KindCurrentCycle, []byte(cycle))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list = m.(*weather.WeatherList)
	if list.Kind() != weather.KindCurrentCycle || *list.Items[0].Location.CountryCode != "GB" {
		t.Fatalf("unexpected cycle list %+v", list)
	}
}

func TestMapAirPollution(t *testing.T) {
	body := `{"time":"2016-01-02T11:54:45Z","location":{"latitude":0,"longitude":10.0},"data":[{"precision":-4.999999987376214e-7,"pressure":1000,"value":8.168363052618588e-8},{"precision":-4.999999987376214e-7,"pressure":681.2920532226562,"value":1.0}]}`
	m, err := New(weather.Standard).Map(weather.KindAirPollution, []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ap := m.(*weather.AirPollution)
	if ap.TimeText != "2016-01-02T11:54:45Z" || ap.Time.Unix() != 1451735685 {
		t.Fatalf("unexpected time %v / %q", ap.Time, ap.TimeText)
	}
	if ap.Coordinate.Latitude != 0 || ap.Coordinate.Longitude != 10 {
		t.Fatalf("unexpected coordinate %v", ap.Coordinate)
	}
	if len(ap.Readings) != 2 || ap.Readings[1].Pressure != 681.2920532226562 || ap.Readings[1].Value != 1 {
		t.Fatalf("unexpected readings %+v", ap.Readings)
	}

	bad := strings.Replace(body, "2016-01-02T11:54:45Z", "yesterday", 1)
	if _, err := New(weather.Standard).Map(weather.KindAirPollution, []byte(bad)); !errors.Is(err, weather.ErrMalformedResponse) {
		t.Fatalf("expected malformed response for bad timestamp, got %v", err)
	}
}

func TestMapIsDeterministic(t *testing.T) {
	a := mapForecast(t, weather.Metric, londonForecast)
	b := mapForecast(t, weather.Metric, londonForecast)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("mapping the same body twice gave different models")
	}
}
