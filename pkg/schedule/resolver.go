package schedule

import (
	"context"
	"errors"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/metrics"
)

// DefaultNetworkTimeout bounds one remote schedule request
const DefaultNetworkTimeout = 5 * time.Second

// Resolver finds the timetable segment for a journey. Sources are tried
// in order: built-in timetable, reference database, cache, network. The
// first source that knows both stations wins. Failures of any source are
// logged and skipped.
type Resolver struct {
	db      repository.TrainScheduleRepository
	cache   repository.ScheduleCache
	api     repository.ScheduleAPI
	timeout time.Duration
	metrics *metrics.Metrics
	logger  logger.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithDatabase adds the reference database as a source
func WithDatabase(db repository.TrainScheduleRepository) Option {
	return func(r *Resolver) { r.db = db }
}

// WithCache caches network results
func WithCache(cache repository.ScheduleCache) Option {
	return func(r *Resolver) { r.cache = cache }
}

// WithNetwork adds the remote schedule API as the last source
func WithNetwork(api repository.ScheduleAPI, timeout time.Duration) Option {
	return func(r *Resolver) {
		r.api = api
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithMetrics counts lookups per answering source
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver backed by the built-in timetable and
// whatever extra sources are passed as options
func NewResolver(logger logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		timeout: DefaultNetworkTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the segment between boardingCode and destinationCode of
// the given train, or false when no source knows it.
func (r *Resolver) Resolve(ctx context.Context, trainNumber, boardingCode, destinationCode string) (*entity.ScheduleLookup, bool) {
	if s, ok := StaticSchedule(trainNumber); ok {
		if lookup, ok := Segment(s, boardingCode, destinationCode); ok {
			return r.found(lookup, metrics.SourceStatic), true
		}
	}

	if trainNumber == "" {
		r.count(metrics.SourceNone)
		return nil, false
	}

	if r.db != nil {
		s, err := r.db.GetByTrainNumber(ctx, trainNumber)
		switch {
		case err == nil:
			if lookup, ok := Segment(s, boardingCode, destinationCode); ok {
				return r.found(lookup, metrics.SourceDB), true
			}
		case !errors.Is(err, repository.ErrNotFound):
			r.logger.Warn("Schedule database lookup failed", "trainNumber", trainNumber, "error", err)
		}
	}

	if r.cache != nil {
		s, err := r.cache.Get(ctx, trainNumber)
		switch {
		case err == nil:
			if lookup, ok := Segment(s, boardingCode, destinationCode); ok {
				return r.found(lookup, metrics.SourceCache), true
			}
		case !errors.Is(err, repository.ErrNotFound):
			r.logger.Warn("Schedule cache lookup failed", "trainNumber", trainNumber, "error", err)
		}
	}

	if r.api != nil {
		if lookup, ok := r.fromNetwork(ctx, trainNumber, boardingCode, destinationCode); ok {
			return r.found(lookup, metrics.SourceNetwork), true
		}
	}

	r.count(metrics.SourceNone)
	return nil, false
}

func (r *Resolver) fromNetwork(ctx context.Context, trainNumber, boardingCode, destinationCode string) (*entity.ScheduleLookup, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.api.FetchSchedule(ctx, trainNumber)
	if res.Outcome != entity.FetchSuccess || res.Schedule == nil {
		r.logger.Debug("Network schedule lookup gave no result",
			"trainNumber", trainNumber,
			"outcome", res.Outcome,
			"error", res.Err)
		if r.metrics != nil {
			r.metrics.ErrorsCount.WithLabelValues("schedule_" + string(res.Outcome)).Inc()
		}
		return nil, false
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, res.Schedule); err != nil {
			r.logger.Warn("Failed to cache schedule", "trainNumber", trainNumber, "error", err)
		}
	}

	return Segment(res.Schedule, boardingCode, destinationCode)
}

func (r *Resolver) found(lookup *entity.ScheduleLookup, source string) *entity.ScheduleLookup {
	lookup.Source = source
	r.count(source)
	return lookup
}

func (r *Resolver) count(source string) {
	if r.metrics != nil {
		r.metrics.ScheduleLookups.WithLabelValues(source).Inc()
	}
}
