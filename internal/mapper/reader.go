package mapper

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/i474232898/openweathermap-client/internal/weather"
)

// fieldReader reads typed values out of one JSON node. The first failure is
// kept in a slot shared with every reader derived from it; later reads
// return zero values.
type fieldReader struct {
	kind   weather.Kind
	prefix string
	node   gjson.Result
	err    *error
}

func newFieldReader(kind weather.Kind, node gjson.Result) fieldReader {
	return fieldReader{kind: kind, node: node, err: new(error)}
}

// at derives a reader for a child node reached by path.
func (r fieldReader) at(path string, node gjson.Result) fieldReader {
	return fieldReader{kind: r.kind, prefix: r.field(path), node: node, err: r.err}
}

func (r fieldReader) Err() error {
	return *r.err
}

func (r fieldReader) failed() bool {
	return *r.err != nil
}

func (r fieldReader) field(path string) string {
	if r.prefix == "" {
		return path
	}
	if path == "" {
		return r.prefix
	}
	return r.prefix + "." + path
}

func (r fieldReader) fail(path, reason string) {
	if *r.err != nil {
		return
	}
	*r.err = &weather.MalformedResponseError{Endpoint: r.kind, Field: r.field(path), Reason: reason}
}

// lookup treats JSON null the same as a missing key.
func (r fieldReader) lookup(path string) (gjson.Result, bool) {
	if path == "" {
		return gjson.Result{}, false
	}
	v := r.node.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return gjson.Result{}, false
	}
	return v, true
}

func (r fieldReader) has(path string) bool {
	_, ok := r.lookup(path)
	return ok
}

func (r fieldReader) required(path string) (gjson.Result, bool) {
	v, ok := r.lookup(path)
	if !ok {
		r.fail(path, "missing mandatory field")
		return gjson.Result{}, false
	}
	return v, true
}

func (r fieldReader) number(path string) float64 {
	v, ok := r.required(path)
	if !ok {
		return 0
	}
	if v.Type != gjson.Number {
		r.fail(path, fmt.Sprintf("expected number, got %s", v.Type))
		return 0
	}
	return v.Float()
}

func (r fieldReader) integer(path string) int64 {
	v, ok := r.required(path)
	if !ok {
		return 0
	}
	if v.Type != gjson.Number {
		r.fail(path, fmt.Sprintf("expected number, got %s", v.Type))
		return 0
	}
	return v.Int()
}

func (r fieldReader) text(path string) string {
	v, ok := r.required(path)
	if !ok {
		return ""
	}
	if v.Type != gjson.String {
		r.fail(path, fmt.Sprintf("expected string, got %s", v.Type))
		return ""
	}
	return v.String()
}

func (r fieldReader) optNumber(path string) *float64 {
	v, ok := r.lookup(path)
	if !ok {
		return nil
	}
	if v.Type != gjson.Number {
		r.fail(path, fmt.Sprintf("expected number, got %s", v.Type))
		return nil
	}
	f := v.Float()
	return &f
}

func (r fieldReader) optInteger(path string) *int64 {
	v, ok := r.lookup(path)
	if !ok {
		return nil
	}
	if v.Type != gjson.Number {
		r.fail(path, fmt.Sprintf("expected number, got %s", v.Type))
		return nil
	}
	n := v.Int()
	return &n
}

func (r fieldReader) optText(path string) *string {
	v, ok := r.lookup(path)
	if !ok {
		return nil
	}
	if v.Type != gjson.String {
		r.fail(path, fmt.Sprintf("expected string, got %s", v.Type))
		return nil
	}
	s := v.String()
	return &s
}

func (r fieldReader) percentage(path string) int {
	n := r.integer(path)
	if r.failed() {
		return 0
	}
	if n < 0 || n > 100 {
		r.fail(path, fmt.Sprintf("percentage %d out of range 0-100", n))
		return 0
	}
	return int(n)
}

func (r fieldReader) object(path string) (fieldReader, bool) {
	v, ok := r.required(path)
	if !ok {
		return fieldReader{}, false
	}
	if !v.IsObject() {
		r.fail(path, "expected object")
		return fieldReader{}, false
	}
	return r.at(path, v), true
}

func (r fieldReader) array(path string) ([]gjson.Result, bool) {
	v, ok := r.required(path)
	if !ok {
		return nil, false
	}
	if !v.IsArray() {
		r.fail(path, "expected array")
		return nil, false
	}
	return v.Array(), true
}
