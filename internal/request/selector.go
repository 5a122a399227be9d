package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/openweathermap-client/internal/weather"
)

var validate = validator.New()

// Selector picks the location a request is about. The set of variants is
// closed; each carries only the parameters valid for it and is validated
// when selected.
type Selector interface {
	label() string
	params() map[string]string
	allowed(f family) bool
}

// CityName selects by place name, optionally narrowed by state and country.
type CityName struct {
	Name    string `validate:"required"`
	State   string
	Country string
}

// CityID selects by the provider's numeric place id.
type CityID struct {
	ID int64 `validate:"gt=0"`
}

// Coordinates selects by a single point.
type Coordinates struct {
	Point weather.Coordinate
}

// ZipCode selects by postal code. An empty country means the USA.
type ZipCode struct {
	Zip     string `validate:"required"`
	Country string
}

// Rectangle selects the stations inside a bounding box. Count is sent as
// the fifth bbox component, which bounds how many stations come back.
type Rectangle struct {
	Box     weather.CoordinateRectangle
	Count   int `validate:"min=1"`
	Cluster bool
}

// Cycle selects up to Count stations around Center. Cluster asks the
// provider to group duplicate stations.
type Cycle struct {
	Center  weather.Coordinate
	Count   int `validate:"min=1,max=50"`
	Cluster bool
}

func (CityName) label() string    { return "city name" }
func (CityID) label() string      { return "city id" }
func (Coordinates) label() string { return "coordinate" }
func (ZipCode) label() string     { return "zip code" }
func (Rectangle) label() string   { return "rectangle" }
func (Cycle) label() string       { return "cycle" }

func (CityName) allowed(f family) bool    { return f == single || f == forecast }
func (CityID) allowed(f family) bool      { return f == single || f == forecast }
func (ZipCode) allowed(f family) bool     { return f == single || f == forecast }
func (Coordinates) allowed(f family) bool { return f != multiple }
func (Rectangle) allowed(f family) bool   { return f == multiple }
func (Cycle) allowed(f family) bool       { return f == multiple }

func (s CityName) params() map[string]string {
	q := []string{strings.TrimSpace(s.Name)}
	if s.State != "" {
		q = append(q, s.State)
	}
	if s.Country != "" {
		q = append(q, s.Country)
	}
	return map[string]string{"q": strings.Join(q, ",")}
}

func (s CityID) params() map[string]string {
	return map[string]string{"id": strconv.FormatInt(s.ID, 10)}
}

func (s Coordinates) params() map[string]string {
	return map[string]string{
		"lat": formatFloat(s.Point.Latitude),
		"lon": formatFloat(s.Point.Longitude),
	}
}

func (s ZipCode) params() map[string]string {
	zip := s.Zip
	if s.Country != "" {
		zip += "," + s.Country
	}
	return map[string]string{"zip": zip}
}

func (s Rectangle) params() map[string]string {
	b := s.Box
	return map[string]string{
		"bbox": strings.Join([]string{
			formatFloat(b.LongitudeLeft),
			formatFloat(b.LatitudeBottom),
			formatFloat(b.LongitudeRight),
			formatFloat(b.LatitudeTop),
			strconv.Itoa(s.Count),
		}, ","),
		"cluster": yesNo(s.Cluster),
	}
}

func (s Cycle) params() map[string]string {
	return map[string]string{
		"lat":     formatFloat(s.Center.Latitude),
		"lon":     formatFloat(s.Center.Longitude),
		"cnt":     strconv.Itoa(s.Count),
		"cluster": yesNo(s.Cluster),
	}
}

// kindOf resolves the endpoint a multiple-result selector addresses.
func kindOf(s Selector) weather.Kind {
	if _, ok := s.(Rectangle); ok {
		return weather.KindCurrentRectangle
	}
	return weather.KindCurrentCycle
}

// check validates a selector's struct tags and reports the first violation.
func check(s Selector) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &weather.ParameterError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("value %v fails '%s' constraint", fe.Value(), fe.ActualTag()),
		}
	}
	return &weather.ParameterError{Field: s.label(), Message: err.Error()}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
