// Package service owns the persisted compliance collections and exposes the
// operations used by the HTTP API and the CLI. Every read recomputes derived
// numbers from the source collections; nothing derived is persisted.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/wardwatch/internal/adapters/bus"
	"github.com/okian/wardwatch/internal/adapters/mq/queue"
	"github.com/okian/wardwatch/internal/adapters/mq/worker"
	"github.com/okian/wardwatch/internal/adapters/repository"
	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/dedupe"
	"github.com/okian/wardwatch/internal/domain/model"
	"github.com/okian/wardwatch/internal/domain/scoring"
	"github.com/okian/wardwatch/pkg/logger"
	"github.com/okian/wardwatch/pkg/metrics"
)

// Default expiry windows in days and other tunables.
const (
	defaultEquipmentWindow = 30
	defaultEIPWindow       = 30
	defaultPermitWindow    = 60
	defaultContractWindow  = 90
	defaultTopN            = 5
	defaultRefreshQueue    = 64
	defaultIdempotencySize = 10_000
	idempotencyTTL         = 24 * time.Hour
	workerShutdownTimeout  = 5 * time.Second
	refreshTimeout         = 5 * time.Second
)

// Windows holds the per-module expiry thresholds in days.
type Windows struct {
	Equipment int `json:"equipment"`
	EIP       int `json:"eip"`
	Permits   int `json:"permits"`
	Contracts int `json:"contracts"`
}

// Service implements the compliance operations.
type Service struct {
	mu sync.Mutex

	kv       repository.KV
	bus      *bus.Bus
	deduper  dedupe.Deduper
	scorer   *scoring.Scorer
	clock    calendar.Clock
	location *time.Location
	newID    func() string

	windows         Windows
	topN            int
	refreshQueue    int
	idempotencySize int

	tasks       *repository.Collection[model.Task]
	suggestions *repository.Collection[model.Suggestion]
	training    *repository.Collection[model.TrainingRow]
	responses   *repository.Collection[model.QuestionnaireResponse]

	equipment   *Register[model.Equip]
	incidents   *Register[model.Incident]
	risks       *Register[model.Risk]
	audits      *Register[model.Audit]
	eip         *Register[model.EIPItem]
	evacuations *Register[model.EvacuationDrill]
	permits     *Register[model.Permit]
	kpi         *Register[model.KPIReport]
	waste       *Register[model.EnvWasteEntry]
	contracts   *Register[model.Contract]

	// Gauge refresher state.
	started     bool
	queue       *queue.InMemoryQueue
	worker      *worker.InMemoryWorker
	unsubscribe func()
	cancel      context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithKV sets the backing store. Defaults to an in-memory store.
func WithKV(kv repository.KV) Option {
	return func(s *Service) {
		if kv != nil {
			s.kv = kv
		}
	}
}

// WithClock pins the time source.
func WithClock(clock calendar.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the timezone that defines "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithWindows overrides expiry windows; zero fields keep their default.
func WithWindows(w Windows) Option {
	return func(s *Service) {
		if w.Equipment > 0 {
			s.windows.Equipment = w.Equipment
		}
		if w.EIP > 0 {
			s.windows.EIP = w.EIP
		}
		if w.Permits > 0 {
			s.windows.Permits = w.Permits
		}
		if w.Contracts > 0 {
			s.windows.Contracts = w.Contracts
		}
	}
}

// WithTopN sets how many groups top-N rankings return by default.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithRefreshQueueSize sets the capacity of the gauge refresh queue.
func WithRefreshQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.refreshQueue = size
		}
	}
}

// WithIdempotencyCacheSize bounds the remembered idempotency keys.
func WithIdempotencyCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithIDGenerator replaces uuid generation, mostly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithScorer replaces the impact scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
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

// New constructs a Service. Collections are usable immediately; Start only
// launches the gauge refresher.
func New(opts ...Option) *Service {
	s := &Service{
		kv:       repository.NewMemoryKV(),
		clock:    time.Now,
		location: time.UTC,
		newID:    uuid.NewString,
		windows: Windows{
			Equipment: defaultEquipmentWindow,
			EIP:       defaultEIPWindow,
			Permits:   defaultPermitWindow,
			Contracts: defaultContractWindow,
		},
		topN:            defaultTopN,
		refreshQueue:    defaultRefreshQueue,
		idempotencySize: defaultIdempotencySize,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scorer == nil {
		s.scorer = scoring.New()
	}
	s.bus = bus.New(bus.WithLogger(s.logger.Named("bus")))
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.idempotencySize),
		dedupe.WithTTL(idempotencyTTL),
		dedupe.WithClock(s.clock),
	)

	s.tasks = newCollection[model.Task](s, "dashboard", "tasks", bus.TopicTasks)
	s.suggestions = newCollection[model.Suggestion](s, "dashboard", "suggestions", bus.TopicSuggestions)
	s.training = newCollection[model.TrainingRow](s, "hr", "training", bus.TopicTraining)
	s.responses = newCollection[model.QuestionnaireResponse](s, "quality", "questionnaires", bus.TopicQuestionnaires)
	s.initRegisters()
	return s
}

func newCollection[T any](s *Service, module, name string, topic bus.Topic) *repository.Collection[T] {
	return repository.NewCollection[T](s.kv, repository.Key(module, name), topic,
		repository.WithNotifier(s.bus),
		repository.WithLogger(s.logger.Named("store")),
	)
}

// Bus exposes the change notification bus for additional subscribers.
func (s *Service) Bus() *bus.Bus { return s.bus }

// Windows returns the configured expiry thresholds.
func (s *Service) Windows() Windows { return s.windows }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.clock() }

// Today renders the current calendar day in the configured timezone.
func (s *Service) Today() string { return calendar.Today(s.clock(), s.location) }

// Start launches the gauge refresher: every bus topic is queued and a
// background worker recomputes the gauges for it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting compliance service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.refreshQueue))
	s.worker = worker.NewInMemoryWorker(s.queue, s,
		worker.WithName("gauge-refresher"),
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithRefreshTimeout(refreshTimeout),
	)
	go s.worker.Run(runCtx)

	q := s.queue
	s.unsubscribe = s.bus.Subscribe(func(ctx context.Context, topic bus.Topic) {
		if !q.Enqueue(ctx, topic) {
			s.logger.Debug(ctx, "refresh dropped", logger.String("topic", string(topic)))
		}
	})
	q.Enqueue(ctx, bus.TopicAll)

	s.started = true
	s.logger.Info(ctx, "compliance service started",
		logger.Int("refreshQueue", s.refreshQueue),
		logger.Int("idempotencyCache", s.idempotencySize),
		logger.String("timezone", s.location.String()),
	)
	return nil
}

// Stop shuts the refresher down and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping compliance service...")

	s.unsubscribe()
	_ = s.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	if err := s.worker.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "refresher shutdown", logger.Error(err))
	}
	cancel()
	s.cancel()

	if err := s.kv.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "compliance service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]any{
		"started":          s.started,
		"today":            s.Today(),
		"timezone":         s.location.String(),
		"subscribers":      s.bus.Len(),
		"idempotencyKeys":  s.deduper.Size(),
		"refreshQueueSize": s.refreshQueue,
		"windows":          s.windows,
	}
	if s.started {
		stats["refreshQueueLength"] = s.queue.Len(context.Background())
	}
	return stats
}

// claim records the idempotency key of ctx for op. It returns
// ErrDuplicateRequest when the key was already used; release undoes a claim
// whose write failed.
func (s *Service) claim(ctx context.Context, op string) (release func(), err error) {
	key, ok := IdempotencyKey(ctx)
	if !ok {
		return func() {}, nil
	}
	scoped := op + ":" + key
	if s.deduper.SeenAndRecord(ctx, scoped) {
		metrics.RecordIdempotentReplay()
		s.logger.Debug(ctx, "duplicate request", logger.String("operation", op), logger.String("key", key))
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRequest, key)
	}
	return func() { s.deduper.Unrecord(ctx, scoped) }, nil
}

// create runs validate, claims the idempotency key and performs write.
func create[T any](ctx context.Context, s *Service, op string, validate func() error, write func() (T, error)) (T, error) {
	var zero T
	if err := validate(); err != nil {
		metrics.RecordValidationFailure(op)
		return zero, err
	}
	release, err := s.claim(ctx, op)
	if err != nil {
		return zero, err
	}
	out, err := write()
	if err != nil {
		release()
		return zero, err
	}
	return out, nil
}

// invalid counts and returns the validation failure of op, if any.
func (s *Service) invalid(op string, fields fieldErrors) error {
	if err := fields.err(); err != nil {
		metrics.RecordValidationFailure(op)
		return err
	}
	return nil
}
