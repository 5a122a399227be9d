// Package retrieval runs the transport, mapping and formatting stages of a
// request, blocking or in the background.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/openweathermap-client/internal/format"
	"github.com/i474232898/openweathermap-client/internal/mapper"
	"github.com/i474232898/openweathermap-client/internal/request"
	"github.com/i474232898/openweathermap-client/internal/transport"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

// Transport sends a descriptor and returns the raw reply.
type Transport interface {
	Get(ctx context.Context, desc request.Descriptor) (transport.Response, error)
}

// Outcome values of a Record.
const (
	OutcomeOK             = "ok"
	OutcomeInvalidAuth    = "invalid_auth_token"
	OutcomeNoData         = "no_data_found"
	OutcomeMalformed      = "malformed_response"
	OutcomeInvalidRequest = "invalid_request_parameter"
	OutcomeAPIError       = "api_error"
	OutcomeTransportError = "transport_error"
	OutcomeCancelled      = "cancelled"
)

// Record describes one finished retrieval. It never holds the mapped model.
type Record struct {
	ID        string        `json:"id"`
	Endpoint  string        `json:"endpoint"`
	Request   string        `json:"request"`
	Units     string        `json:"units"`
	Outcome   string        `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Observer is told about every finished retrieval.
type Observer func(Record)

// Executor drives retrievals. It is safe for concurrent use.
type Executor struct {
	transport Transport
	pool      Pool
	zone      *time.Location
	observers []Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithPool sets the pool asynchronous retrievals run on.
func WithPool(p Pool) Option {
	return func(e *Executor) {
		e.pool = p
	}
}

// WithZone sets the zone mapped instants are expressed in.
func WithZone(zone *time.Location) Option {
	return func(e *Executor) {
		e.zone = zone
	}
}

// WithObserver adds an observer of finished retrievals.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observers = append(e.observers, o)
	}
}

func New(t Transport, opts ...Option) *Executor {
	e := &Executor{
		transport: t,
		zone:      time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = NewBoundedPool(0)
	}
	return e
}

// Retrieve blocks until desc is fetched and mapped.
func (e *Executor) Retrieve(ctx context.Context, desc request.Descriptor) (weather.Model, error) {
	return run(ctx, e, desc, nil, asModel)
}

// RetrieveText blocks until desc is fetched, mapped and rendered as f.
func (e *Executor) RetrieveText(ctx context.Context, desc request.Descriptor, f format.Format) (string, error) {
	return run(ctx, e, desc, nil, renderer(f))
}

// RetrieveAsync starts the retrieval on the pool and returns its handle.
func (e *Executor) RetrieveAsync(ctx context.Context, desc request.Descriptor) *Future[weather.Model] {
	return submit(ctx, e, desc, asModel)
}

// RetrieveTextAsync is the asynchronous form of RetrieveText.
func (e *Executor) RetrieveTextAsync(ctx context.Context, desc request.Descriptor, f format.Format) *Future[string] {
	return submit(ctx, e, desc, renderer(f))
}

// RetrieveAs retrieves desc and asserts the model type, e.g.
// RetrieveAs[*weather.Forecast].
func RetrieveAs[T weather.Model](ctx context.Context, e *Executor, desc request.Descriptor) (T, error) {
	var zero T
	m, err := e.Retrieve(ctx, desc)
	if err != nil {
		return zero, err
	}
	v, ok := m.(T)
	if !ok {
		return zero, fmt.Errorf("%s response mapped to %T, not %T", desc.Kind, m, zero)
	}
	return v, nil
}

func asModel(m weather.Model) (weather.Model, error) {
	return m, nil
}

func renderer(f format.Format) func(weather.Model) (string, error) {
	return func(m weather.Model) (string, error) {
		return format.Render(m, f)
	}
}

func submit[T any](ctx context.Context, e *Executor, desc request.Descriptor, finish func(weather.Model) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	fut := newFuture[T](cancel)
	e.pool.Submit(func() {
		defer cancel()
		val, err := run(ctx, e, desc, fut.beginMapping, finish)
		fut.complete(val, err)
	})
	return fut
}

// run is one unit of work: transport, classification, mapping, finishing.
// gate is consulted once transport is done; when it refuses, nothing is mapped.
func run[T any](
	ctx context.Context,
	e *Executor,
	desc request.Descriptor,
	gate func() bool,
	finish func(weather.Model) (T, error),
) (val T, err error) {
	rec := Record{
		ID:        uuid.NewString(),
		Endpoint:  desc.Kind.String(),
		Request:   desc.Key(),
		Units:     desc.Units.String(),
		StartedAt: time.Now(),
	}
	defer func() {
		rec.Duration = time.Since(rec.StartedAt)
		rec.Outcome = outcome(err)
		if err != nil {
			rec.Error = err.Error()
		}
		e.notify(rec)
	}()

	if !desc.Units.Valid() {
		return val, &weather.ParameterError{Field: "units", Message: fmt.Sprintf("unsupported unit system %q", desc.Units)}
	}

	log.Printf("DEBUG: retrieval %s: GET %s", rec.ID, rec.Request)
	resp, err := e.transport.Get(ctx, desc)
	if gate != nil && !gate() {
		return val, ErrCancelled
	}
	if err != nil {
		return val, err
	}
	if err := classify(resp); err != nil {
		return val, err
	}

	m, err := mapper.New(desc.Units, mapper.WithZone(e.zone)).Map(desc.Kind, resp.Body)
	if err != nil {
		return val, err
	}
	return finish(m)
}

func (e *Executor) notify(rec Record) {
	if rec.Outcome == OutcomeOK {
		log.Printf("INFO: retrieval %s: %s ok in %s", rec.ID, rec.Endpoint, rec.Duration)
	} else {
		log.Printf("ERROR: retrieval %s: %s failed: %s", rec.ID, rec.Endpoint, rec.Error)
	}
	for _, o := range e.observers {
		o(rec)
	}
}

func outcome(err error) string {
	var apiErr *weather.APIError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return OutcomeCancelled
	case errors.Is(err, weather.ErrInvalidAuthToken):
		return OutcomeInvalidAuth
	case errors.Is(err, weather.ErrNoDataFound):
		return OutcomeNoData
	case errors.Is(err, weather.ErrMalformedResponse):
		return OutcomeMalformed
	case errors.Is(err, weather.ErrInvalidRequestParameter):
		return OutcomeInvalidRequest
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	default:
		return OutcomeTransportError
	}
}
