package weather

// Kind identifies one endpoint of the supported family. Each kind has its own
// request path and response shape.
type Kind int

const (
	KindCurrent Kind = iota + 1
	KindCurrentRectangle
	KindCurrentCycle
	KindForecast
	KindAirPollution
)

// Path returns the resource path relative to the provider base URL.
func (k Kind) Path() string {
	switch k {
	case KindCurrent:
		return "weather"
	case KindCurrentRectangle:
		return "box/city"
	case KindCurrentCycle:
		return "find"
	case KindForecast:
		return "forecast"
	case KindAirPollution:
		return "air_pollution"
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case KindCurrent:
		return "current"
	case KindCurrentRectangle:
		return "current-rectangle"
	case KindCurrentCycle:
		return "current-cycle"
	case KindForecast:
		return "forecast"
	case KindAirPollution:
		return "air-pollution"
	default:
		return "unknown"
	}
}

// Multiple reports whether the kind returns a list of current weather results.
func (k Kind) Multiple() bool {
	return k == KindCurrentRectangle || k == KindCurrentCycle
}
