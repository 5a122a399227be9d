package retrieval

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/openweathermap-client/internal/format"
	"github.com/i474232898/openweathermap-client/internal/request"
	"github.com/i474232898/openweathermap-client/internal/transport"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

const londonForecast = `{"cnt":1,"list":[{"dt":1600000000,"dt_txt":"2020-09-13 12:00:00","main":{"temp":20.5,"pressure":1013,"humidity":60},"weather":[{"main":"Clear","description":"clear sky","icon":"01d"}],"clouds":{"all":0},"wind":{"speed":3.1}}],"city":{"id":2643743,"name":"London","coord":{"lat":51.5,"lon":-0.13},"country":"GB","timezone":0}}`

// fakeTransport replies with a fixed response, optionally waiting for
// release or for the request context to end.
type fakeTransport struct {
	resp    transport.Response
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (f *fakeTransport) Get(ctx context.Context, _ request.Descriptor) (transport.Response, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return transport.Response{}, ctx.Err()
		}
	}
	return f.resp, f.err
}

func forecastDescriptor(t *testing.T) request.Descriptor {
	t.Helper()
	c, err := request.Forecast().ByCityName("London", "GB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	desc, err := c.Units(weather.Metric).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return desc
}

func TestRetrieve(t *testing.T) {
	tr := &fakeTransport{resp: transport.Response{StatusCode: http.StatusOK, Body: []byte(londonForecast)}}
	var records []Record
	e := New(tr, WithObserver(func(r Record) { records = append(records, r) }))

	f, err := RetrieveAs[*weather.Forecast](context.Background(), e, forecastDescriptor(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Location.Name != "London" || f.Forecasts[0].Temperature.Unit() != "°C" {
		t.Fatalf("unexpected forecast %+v", f)
	}

	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	rec := records[0]
	if rec.Outcome != OutcomeOK || rec.Endpoint != "forecast" || rec.Units != "metric" || rec.ID == "" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !strings.Contains(rec.Request, "q=London,GB") {
		t.Fatalf("expected request key in record, got %q", rec.Request)
	}

	if _, err := RetrieveAs[*weather.Weather](context.Background(), e, forecastDescriptor(t)); err == nil {
		t.Fatalf("expected a type mismatch error")
	}
}

func TestRetrieveText(t *testing.T) {
	tr := &fakeTransport{resp: transport.Response{StatusCode: http.StatusOK, Body: []byte(londonForecast)}}
	e := New(tr)

	out, err := e.RetrieveText(context.Background(), forecastDescriptor(t), format.XML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<name>London</name>") {
		t.Fatalf("unexpected XML output:\n%s", out)
	}
}

func TestRetrieveClassification(t *testing.T) {
	tests := []struct {
		name    string
		resp    transport.Response
		err     error
		want    error
		outcome string
	}{
		{
			name:    "unauthorized status",
			resp:    transport.Response{StatusCode: http.StatusUnauthorized, Body: []byte(`not even json`)},
			want:    weather.ErrInvalidAuthToken,
			outcome: OutcomeInvalidAuth,
		},
		{
			name:    "not found status",
			resp:    transport.Response{StatusCode: http.StatusNotFound, Body: []byte(`{"cod":"404","message":"city not found"}`)},
			want:    weather.ErrNoDataFound,
			outcome: OutcomeNoData,
		},
		{
			name:    "empty body",
			resp:    transport.Response{StatusCode: http.StatusOK, Body: []byte("  \n")},
			want:    weather.ErrNoDataFound,
			outcome: OutcomeNoData,
		},
		{
			name:    "not found envelope",
			resp:    transport.Response{StatusCode: http.StatusOK, Body: []byte(`{"cod":"404","message":"city not found"}`)},
			want:    weather.ErrNoDataFound,
			outcome: OutcomeNoData,
		},
		{
			name:    "auth envelope",
			resp:    transport.Response{StatusCode: http.StatusOK, Body: []byte(`{"cod":401,"message":"Invalid API key"}`)},
			want:    weather.ErrInvalidAuthToken,
			outcome: OutcomeInvalidAuth,
		},
		{
			name:    "malformed body",
			resp:    transport.Response{StatusCode: http.StatusOK, Body: []byte(`{"list":[]}`)},
			want:    weather.ErrMalformedResponse,
			outcome: OutcomeMalformed,
		},
		{
			name:    "transport failure",
			err:     transport.ErrCircuitOpen,
			want:    transport.ErrCircuitOpen,
			outcome: OutcomeTransportError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			e := New(&fakeTransport{resp: tt.resp, err: tt.err}, WithObserver(func(r Record) { rec = r }))

			m, err := e.Retrieve(context.Background(), forecastDescriptor(t))
			if m != nil {
				t.Fatalf("expected no model, got %+v", m)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if rec.Outcome != tt.outcome || rec.Error == "" {
				t.Fatalf("unexpected record %+v", rec)
			}
		})
	}
}

func TestRetrieveAPIError(t *testing.T) {
	e := New(&fakeTransport{resp: transport.Response{StatusCode: http.StatusTooManyRequests, Body: []byte(`{"cod":429,"message":"slow down"}`)}})

	_, err := e.Retrieve(context.Background(), forecastDescriptor(t))
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "slow down" {
		t.Fatalf("unexpected API error %+v", apiErr)
	}
}

func TestRetrieveRejectsInvalidUnits(t *testing.T) {
	tr := &fakeTransport{}
	desc := forecastDescriptor(t)
	desc.Units = "kelvin"

	if _, err := New(tr).Retrieve(context.Background(), desc); !errors.Is(err, weather.ErrInvalidRequestParameter) {
		t.Fatalf("expected invalid request parameter, got %v", err)
	}
	if tr.calls.Load() != 0 {
		t.Fatalf("expected nothing to be sent")
	}
}

func TestRetrieveOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("appid") {
		case "good":
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"cod":401, "message": "Invalid API key."}`))
			return
		}
		if r.URL.Query().Get("q") != "London,GB" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"cod":"404","message":"city not found"}`))
			return
		}
		w.Write([]byte(londonForecast))
	}))
	defer srv.Close()

	client := func(key string) *Executor {
		return New(transport.NewClient(srv.Client(), key, transport.WithBaseURL(srv.URL)))
	}

	if _, err := client("bad").Retrieve(context.Background(), forecastDescriptor(t)); !errors.Is(err, weather.ErrInvalidAuthToken) {
		t.Fatalf("expected invalid auth token, got %v", err)
	}

	c, _ := request.Forecast().ByCityName("Atlantis", "")
	desc, _ := c.Build()
	if _, err := client("good").Retrieve(context.Background(), desc); !errors.Is(err, weather.ErrNoDataFound) {
		t.Fatalf("expected no data found, got %v", err)
	}

	if _, err := client("good").Retrieve(context.Background(), forecastDescriptor(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRetrieveAsync(t *testing.T) {
	tr := &fakeTransport{
		resp:    transport.Response{StatusCode: http.StatusOK, Body: []byte(londonForecast)},
		release: make(chan struct{}),
	}
	e := New(tr, WithPool(NewBoundedPool(2)))

	fut := e.RetrieveTextAsync(context.Background(), forecastDescriptor(t), format.JSON)
	select {
	case <-fut.Done():
		t.Fatalf("future completed before transport replied")
	default:
	}

	close(tr.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := fut.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"name": "London"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if fut.Cancel() {
		t.Fatalf("cancel after completion must be a no-op")
	}
}

func TestRetrieveAsyncCancelBeforeTransport(t *testing.T) {
	tr := &fakeTransport{
		resp:    transport.Response{StatusCode: http.StatusOK, Body: []byte(londonForecast)},
		release: make(chan struct{}),
	}
	var (
		mu      sync.Mutex
		records []Record
		done    = make(chan struct{})
	)
	e := New(tr, WithObserver(func(r Record) {
		mu.Lock()
		records = append(records, r)
		mu.Unlock()
		close(done)
	}))

	fut := e.RetrieveAsync(context.Background(), forecastDescriptor(t))
	if !fut.Cancel() {
		t.Fatalf("expected cancel to succeed before transport completes")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := fut.Get(ctx); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not finish after cancel")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(records) != 1 || records[0].Outcome != OutcomeCancelled {
		t.Fatalf("expected one cancelled record, got %+v", records)
	}
}

// blockingPool runs tasks only when told to, so a test can act between
// submission and execution.
type blockingPool struct {
	tasks chan func()
}

func (p *blockingPool) Submit(task func()) {
	p.tasks <- task
}

func TestRetrieveAsyncCancelAfterMappingBegins(t *testing.T) {
	tr := &fakeTransport{resp: transport.Response{StatusCode: http.StatusOK, Body: []byte(londonForecast)}}
	pool := &blockingPool{tasks: make(chan func(), 1)}
	e := New(tr, WithPool(pool))

	fut := e.RetrieveAsync(context.Background(), forecastDescriptor(t))
	task := <-pool.tasks

	task()
	if fut.Cancel() {
		t.Fatalf("cancel after mapping began must be a no-op")
	}

	m, err := fut.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Kind() != weather.KindForecast {
		t.Fatalf("unexpected model kind %s", m.Kind())
	}
	if tr.calls.Load() != 1 {
		t.Fatalf("expected exactly one transport call, got %d", tr.calls.Load())
	}
}

func TestFutureCancelDuringMapping(t *testing.T) {
	var cancelled atomic.Bool
	fut := newFuture[int](func() { cancelled.Store(true) })

	if !fut.beginMapping() {
		t.Fatalf("expected to claim a pending future")
	}
	if fut.Cancel() {
		t.Fatalf("cancel during mapping must be a no-op")
	}
	if cancelled.Load() {
		t.Fatalf("cancel during mapping must not abort the context")
	}

	fut.complete(42, nil)
	v, err := fut.Get(context.Background())
	if v != 42 || err != nil {
		t.Fatalf("expected the mapped result, got %v, %v", v, err)
	}
}

func TestFutureGetHonoursContext(t *testing.T) {
	tr := &fakeTransport{release: make(chan struct{})}
	defer close(tr.release)
	e := New(tr)

	fut := e.RetrieveAsync(context.Background(), forecastDescriptor(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := fut.Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	select {
	case <-fut.Done():
		t.Fatalf("an expired Get must not cancel the retrieval")
	default:
	}
}
