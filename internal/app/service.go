// Package service wires the roster store, the rating pipeline and the
// balancing and simulation core into the operations the HTTP API exposes.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/squad/internal/adapters/mq/queue"
	workerpool "github.com/okian/squad/internal/adapters/mq/worker"
	"github.com/okian/squad/internal/adapters/repository"
	"github.com/okian/squad/internal/domain/balance"
	"github.com/okian/squad/internal/domain/dedupe"
	"github.com/okian/squad/internal/domain/simulate"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

// Default team bounds for saved teams.
const (
	DefaultTeamMinPlayers = 3
	DefaultTeamMaxPlayers = 5
)

// Service implements the API dependencies for the roster.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	ratings    eventqueue.Queue
	workerPool *workerpool.Pool
	simulator  *simulate.Simulator

	workerCount    int
	queueSize      int
	dedupeSize     int
	maxTeamSize    int
	minPool        int
	teamMinPlayers int
	teamMaxPlayers int
	sizeBonus      float64
	jitter         float64
	randomSeed     int64
	randomSource   simulate.RandomSource

	now   func() time.Time
	newID func() string

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the roster store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of rating workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the rating queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many rating IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBalanceDefaults sets the cap and minimum pool used when a balance
// request does not specify them.
func WithBalanceDefaults(maxTeamSize, minPool int) Option {
	return func(s *Service) {
		if maxTeamSize > 0 {
			s.maxTeamSize = maxTeamSize
		}
		if minPool >= 0 {
			s.minPool = minPool
		}
	}
}

// WithTeamSizeLimits bounds the member count of saved teams.
func WithTeamSizeLimits(minPlayers, maxPlayers int) Option {
	return func(s *Service) {
		if minPlayers > 0 && maxPlayers >= minPlayers {
			s.teamMinPlayers = minPlayers
			s.teamMaxPlayers = maxPlayers
		}
	}
}

// WithSimulation sets the per-player size bonus and jitter half-width.
func WithSimulation(sizeBonus, jitter float64) Option {
	return func(s *Service) {
		if sizeBonus >= 0 {
			s.sizeBonus = sizeBonus
		}
		if jitter >= 0 {
			s.jitter = jitter
		}
	}
}

// WithRandomSeed seeds the simulator. Zero seeds from the clock.
func WithRandomSeed(seed int64) Option {
	return func(s *Service) {
		s.randomSeed = seed
	}
}

// WithRandomSource replaces the simulator's random source; it wins over
// WithRandomSeed.
func WithRandomSource(src simulate.RandomSource) Option {
	return func(s *Service) {
		s.randomSource = src
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid generation, mostly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// New constructs a Service. Roster, team, balance and simulation calls work
// immediately; rating submission needs Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      10000,
		dedupeSize:     dedupe.DefaultMaxSize,
		maxTeamSize:    balance.DefaultMaxTeamSize,
		minPool:        balance.DefaultMinPool,
		teamMinPlayers: DefaultTeamMinPlayers,
		teamMaxPlayers: DefaultTeamMaxPlayers,
		sizeBonus:      simulate.DefaultSizeBonus,
		jitter:         simulate.DefaultJitter,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	src := s.randomSource
	if src == nil {
		src = simulate.NewSeededSource(s.randomSeed)
	}
	s.simulator = simulate.New(
		simulate.WithRandomSource(src),
		simulate.WithSizeBonus(s.sizeBonus),
		simulate.WithJitter(s.jitter),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the rating queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting roster service...")

	s.ratings = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.ratings, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "roster service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Drain stops accepting ratings and waits until every accepted one is
// applied. Reads and roster writes keep working until Stop. Later
// SubmitRating calls fail with ErrQueueClosed.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.workerPool == nil {
		return nil
	}
	s.logger.Info(ctx, "draining rating queue", logger.Int("pending", s.ratings.Len(ctx)))
	return s.workerPool.Shutdown(ctx)
}

// Stop drains pending ratings and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping roster service...")

	var firstErr error
	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.started = false
	s.logger.Info(ctx, "roster service stopped")
	return firstErr
}

// Stats is a point-in-time view of the service.
type Stats struct {
	Started       bool  `json:"started"`
	WorkerCount   int   `json:"worker_count"`
	QueueCapacity int   `json:"queue_capacity"`
	QueueLength   int   `json:"queue_length"`
	DedupeSize    int   `json:"dedupe_size"`
	DedupeEntries int64 `json:"dedupe_entries"`
	Players       int   `json:"players"`
	Teams         int   `json:"teams"`
}

// GetStats returns service statistics and refreshes the matching gauges.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:       s.started,
		WorkerCount:   s.workerCount,
		QueueCapacity: s.queueSize,
		DedupeSize:    s.dedupeSize,
		DedupeEntries: s.deduper.Size(),
	}
	if s.started {
		stats.QueueLength = s.ratings.Len(ctx)
	}

	players, err := s.store.CountPlayers(ctx)
	if err != nil {
		return Stats{}, err
	}
	teams, err := s.store.CountTeams(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.Players, stats.Teams = players, teams

	metrics.UpdateRosterSize(players)
	metrics.UpdateTeamCount(teams)
	metrics.UpdateQueueSize(stats.QueueLength)
	return stats, nil
}

// RefreshGauges updates roster, team and queue gauges. Run periodically.
func (s *Service) RefreshGauges(ctx context.Context) error {
	_, err := s.GetStats(ctx)
	return err
}
