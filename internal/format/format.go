// Package format renders mapped weather models as JSON, XML or HTML.
//
// All three renderers walk the same ordered tree produced by Build, so a
// given model always renders to the same bytes. Absent optional fields are
// omitted in every format; no null markers are written.
package format

import (
	"fmt"
	"strings"

	"github.com/i474232898/openweathermap-client/internal/weather"
)

// Format is an output representation.
type Format int

const (
	JSON Format = iota + 1
	XML
	HTML
)

// ParseFormat accepts "json", "xml" or "html", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "xml":
		return XML, nil
	case "html":
		return HTML, nil
	default:
		return 0, &weather.ParameterError{Field: "format", Message: fmt.Sprintf("unsupported output format %q", s)}
	}
}

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case XML:
		return "xml"
	case HTML:
		return "html"
	default:
		return "unknown"
	}
}

// ContentType is the MIME type of rendered output.
func (f Format) ContentType() string {
	switch f {
	case XML:
		return "application/xml; charset=utf-8"
	case HTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// Render formats model as f.
func Render(model weather.Model, f Format) (string, error) {
	root, err := Build(model)
	if err != nil {
		return "", err
	}

	switch f {
	case JSON:
		return renderJSON(root)
	case XML:
		return renderXML(root)
	case HTML:
		return renderHTML(root)
	default:
		return "", &weather.ParameterError{Field: "format", Message: fmt.Sprintf("unsupported output format %d", int(f))}
	}
}
