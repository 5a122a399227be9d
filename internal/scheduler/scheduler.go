package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/openweathermap-client/internal/config"
	"github.com/i474232898/openweathermap-client/internal/events"
	"github.com/i474232898/openweathermap-client/internal/format"
	"github.com/i474232898/openweathermap-client/internal/geo"
	"github.com/i474232898/openweathermap-client/internal/request"
	"github.com/i474232898/openweathermap-client/internal/retrieval"
	"github.com/i474232898/openweathermap-client/internal/weather"
)

// Scheduler periodically prefetches forecasts for configured locations and
// publishes the rendered JSON.
type Scheduler struct {
	scheduler *gocron.Scheduler
	executor  *retrieval.Executor
	resolver  geo.Resolver
	publisher events.Publisher
	locations []config.WatchLocation
	interval  time.Duration
	units     weather.UnitSystem
	language  string

	mu     sync.Mutex
	coords map[string]weather.Coordinate
}

// Options are the optional collaborators of a Scheduler. A nil Resolver
// skips address locations; a nil Publisher only logs results.
type Options struct {
	Resolver  geo.Resolver
	Publisher events.Publisher
	Units     weather.UnitSystem
	Language  string
}

func New(locations []config.WatchLocation, interval time.Duration, executor *retrieval.Executor, opts Options) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		executor:  executor,
		resolver:  opts.Resolver,
		publisher: opts.Publisher,
		locations: locations,
		interval:  interval,
		units:     opts.Units,
		language:  opts.Language,
		coords:    make(map[string]weather.Coordinate),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("INFO: scheduler: no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce starts one forecast retrieval per location, waits for all of them
// and returns how many succeeded. Retrievals still running when ctx ends
// are cancelled.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	log.Println("INFO: scheduler: running forecast prefetch job")

	type pending struct {
		key    string
		future *retrieval.Future[string]
	}
	var jobs []pending
	for _, loc := range s.locations {
		desc, err := s.descriptor(ctx, loc)
		if err != nil {
			log.Printf("ERROR: scheduler: cannot build request for %s: %v", loc.Key(), err)
			continue
		}
		jobs = append(jobs, pending{key: loc.Key(), future: s.executor.RetrieveTextAsync(ctx, desc, format.JSON)})
	}

	var ok int
	for _, job := range jobs {
		out, err := job.future.Get(ctx)
		if err != nil {
			job.future.Cancel()
			log.Printf("ERROR: scheduler: fetch failed for %s: %v", job.key, err)
			continue
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, []byte(job.key), []byte(out)); err != nil {
				log.Printf("ERROR: scheduler: publish failed for %s: %v", job.key, err)
				continue
			}
		}
		ok++
	}

	log.Printf("INFO: scheduler: completed forecast prefetch job (%d/%d ok)", ok, len(s.locations))
	return ok
}

func (s *Scheduler) descriptor(ctx context.Context, loc config.WatchLocation) (request.Descriptor, error) {
	b := request.Forecast()

	var (
		c   *request.Customizer
		err error
	)
	if loc.Address != "" {
		coord, rerr := s.coordinate(ctx, loc.Address)
		if rerr != nil {
			return request.Descriptor{}, rerr
		}
		c, err = b.ByCoordinate(coord)
	} else {
		c, err = b.ByCityName(loc.City, loc.Country)
	}
	if err != nil {
		return request.Descriptor{}, err
	}

	if s.units != "" {
		c.Units(s.units)
	}
	if s.language != "" {
		c.Language(s.language)
	}
	return c.Build()
}

// coordinate geocodes address once and remembers the result.
func (s *Scheduler) coordinate(ctx context.Context, address string) (weather.Coordinate, error) {
	s.mu.Lock()
	coord, ok := s.coords[address]
	s.mu.Unlock()
	if ok {
		return coord, nil
	}

	if s.resolver == nil {
		return weather.Coordinate{}, &weather.ParameterError{Field: "address", Message: "no geocoder configured"}
	}
	coord, err := s.resolver.Resolve(ctx, geo.ParseAddress(address))
	if err != nil {
		return weather.Coordinate{}, err
	}

	s.mu.Lock()
	s.coords[address] = coord
	s.mu.Unlock()
	return coord, nil
}
