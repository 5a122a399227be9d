package weather

import (
	"fmt"
	"strings"
)

// UnitSystem selects the measurement convention the provider converts values to.
// The provider does the conversion; this package only supplies matching labels.
type UnitSystem string

const (
	Standard UnitSystem = "standard"
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// PressureUnit is the same for every unit system.
const PressureUnit = "hPa"

// UnitLabels are the display labels for one unit system.
type UnitLabels struct {
	Temperature string
	WindSpeed   string
	Pressure    string
}

// ParseUnitSystem accepts the provider's unit tokens, case-insensitively.
func ParseUnitSystem(s string) (UnitSystem, error) {
	u := UnitSystem(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", &ParameterError{Field: "units", Message: fmt.Sprintf("unsupported unit system %q", s)}
	}
	return u, nil
}

// Valid reports whether u is one of the three supported systems.
func (u UnitSystem) Valid() bool {
	switch u {
	case Standard, Metric, Imperial:
		return true
	default:
		return false
	}
}

// Labels resolves the unit labels for u. Unknown systems resolve to empty labels.
func (u UnitSystem) Labels() UnitLabels {
	switch u {
	case Standard:
		return UnitLabels{Temperature: "K", WindSpeed: "m/s", Pressure: PressureUnit}
	case Metric:
		return UnitLabels{Temperature: "°C", WindSpeed: "m/s", Pressure: PressureUnit}
	case Imperial:
		return UnitLabels{Temperature: "°F", WindSpeed: "mph", Pressure: PressureUnit}
	default:
		return UnitLabels{Pressure: PressureUnit}
	}
}

func (u UnitSystem) String() string {
	return string(u)
}
