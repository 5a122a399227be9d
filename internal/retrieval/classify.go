package retrieval

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/i474232898/openweathermap-client/internal/common"
	"github.com/i474232898/openweathermap-client/internal/transport"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

// classify decides whether a reply may be mapped. Auth failures are decided
// from the status alone, before the body is looked at.
func classify(resp transport.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", weather.ErrInvalidAuthToken, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", weather.ErrNoDataFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &weather.APIError{StatusCode: resp.StatusCode, Message: providerMessage(resp.Body)}
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return fmt.Errorf("%w: empty response body", weather.ErrNoDataFound)
	}

	return envelope(resp.Body)
}

// envelope inspects the provider's in-body status code. Some replies carry a
// failure with a 2xx HTTP status.
func envelope(body []byte) error {
	cod := gjson.GetBytes(body, "cod")
	if !cod.Exists() {
		return nil
	}

	var code int
	switch cod.Type {
	case gjson.Number:
		code = int(cod.Int())
	case gjson.String:
		n, err := strconv.Atoi(cod.String())
		if err != nil {
			return nil
		}
		code = n
	default:
		return nil
	}

	msg := providerMessage(body)
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", weather.ErrInvalidAuthToken, msg)
	case code == http.StatusNotFound || common.HasAny(msg, "not found", "Nothing to geocode"):
		return fmt.Errorf("%w: %s", weather.ErrNoDataFound, msg)
	default:
		return &weather.APIError{StatusCode: code, Message: msg}
	}
}

func providerMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return http.StatusText(http.StatusBadGateway)
	}
	if m := gjson.GetBytes(body, "message"); m.Type == gjson.String && m.String() != "" {
		return m.String()
	}
	return "no message"
}
