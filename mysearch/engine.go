package mysearch

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sagilyp/lab4/mydomain"
)

const (
	DefaultTheta = 2
	DefaultSlots = uint64(1) << 20
)

// ErrConfig - недопустимые параметры поиска.
var ErrConfig = errors.New("invalid search config")

// Config - параметры одного поиска.
type Config struct {
	Theta       int    `yaml:"theta"`        // ширина отличительного префикса
	Slots       uint64 `yaml:"slots"`        // размер словаря
	Target      int    `yaml:"target"`       // сколько коллизий нужно найти
	MaxProbes   uint64 `yaml:"max_probes"`   // 0 - без ограничения
	Workers     int    `yaml:"workers"`      // 1 - однопоточный поиск
	Shards      int    `yaml:"shards"`       // >1 - шардированный словарь
	RequireClaw bool   `yaml:"require_claw"` // засчитывать только пары f(a) = g(b)
}

func DefaultConfig() Config {
	return Config{
		Theta:   DefaultTheta,
		Slots:   DefaultSlots,
		Target:  1,
		Workers: 1,
		Shards:  1,
	}
}

func (c Config) Validate() error {
	if err := checkTheta(c.Theta); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if c.Slots == 0 {
		return fmt.Errorf("%w: zero dictionary slots", ErrConfig)
	}
	if c.Target < 1 {
		return fmt.Errorf("%w: target must be positive, got %d", ErrConfig, c.Target)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrConfig, c.Workers)
	}
	if c.Shards < 1 || uint64(c.Shards) > c.Slots {
		return fmt.Errorf("%w: %d shards for %d slots", ErrConfig, c.Shards, c.Slots)
	}
	return nil
}

// Stats - итог поиска.
type Stats struct {
	Probes         uint64 // случайных начал цепочек
	Distinguished  uint64 // цепочек, дошедших до отличительной точки
	Exhausted      uint64 // цепочек, отброшенных по бюджету
	Steps          uint64 // вычислений f или g при генерации
	Candidates     uint64 // вытеснений чужого начала из словаря
	FalsePositives uint64
	Duplicates     uint64
	Collisions     uint64 // различных восстановленных коллизий
	Satisfied      uint64 // из них принятых задачей
	Embedding      uint64
	DictBytes      uint64
	Elapsed        time.Duration
}

type Result[A, B, C any] struct {
	Pairs    []Pair[A, B, C]
	Stats    Stats
	Complete bool // найдено Target коллизий
}

type settings struct {
	logger  *slog.Logger
	prng    *rand.Rand
	metrics *Metrics
}

type Option func(*settings)

func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

// WithRand задает генератор начал цепочек. По умолчанию ChaCha8 с ключом из crypto/rand.
func WithRand(r *rand.Rand) Option { return func(s *settings) { s.prng = r } }

func WithMetrics(m *Metrics) Option { return func(s *settings) { s.metrics = m } }

// NewEntropyRand - ChaCha8, засеянный из энтропии ОС.
func NewEntropyRand() (*rand.Rand, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("read entropy: %w", err)
	}
	return rand.New(rand.NewChaCha8(seed)), nil
}

// Engine - цикл поиска: Seed -> Generate -> Insert -> Resolve -> Done.
type Engine[A, B, C any] struct {
	pb       mydomain.Problem[A, B, C]
	dom      mydomain.Domain[C]
	cfg      Config
	log      *slog.Logger
	prng     *rand.Rand
	metrics  *Metrics
	verifier mydomain.Verifier[A, B]
	seeder   func(x *C, prng *rand.Rand)
	table    Table[C]

	// embedding меняется только в accept, под mu
	embedding atomic.Uint64

	mu   sync.Mutex
	seen map[string]struct{}
	res  Result[A, B, C]
}

// New проверяет конфигурацию и круговую сериализацию доменов задачи.
// Нарушение круговой сериализации - фатальная ошибка до начала поиска.
func New[A, B, C any](pb mydomain.Problem[A, B, C], cfg Config, opts ...Option) (*Engine[A, B, C], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := settings{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&s)
	}
	if s.prng == nil {
		r, err := NewEntropyRand()
		if err != nil {
			return nil, err
		}
		s.prng = r
	}
	if err := mydomain.CheckProblem(pb, s.prng); err != nil {
		return nil, fmt.Errorf("self-test: %w", err)
	}
	e := &Engine[A, B, C]{
		pb:      pb,
		dom:     pb.DomainC(),
		cfg:     cfg,
		log:     s.logger,
		prng:    s.prng,
		metrics: s.metrics,
	}
	e.seeder = e.dom.Randomize
	if v, ok := pb.(mydomain.Verifier[A, B]); ok {
		e.verifier = v
	}
	return e, nil
}

// UseSeeder подменяет источник начал цепочек. В многопоточном режиме
// функция вызывается из нескольких горутин, у каждой свой prng.
func (e *Engine[A, B, C]) UseSeeder(fn func(x *C, prng *rand.Rand)) { e.seeder = fn }

// UseTable подменяет словарь. В многопоточном режиме таблица должна быть
// потокобезопасной.
func (e *Engine[A, B, C]) UseTable(t Table[C]) { e.table = t }

// Embedding - текущее значение параметра вложения.
func (e *Engine[A, B, C]) Embedding() uint64 { return e.embedding.Load() }

// epochOf - эпоха словаря для вложения, от 1 до 2^32-1; 0 означает пустой слот.
func epochOf(embedding uint64) uint32 {
	return uint32(embedding%math.MaxUint32) + 1
}

func (e *Engine[A, B, C]) buildTable() error {
	if e.table != nil {
		return nil
	}
	switch {
	case e.cfg.Shards > 1:
		t, err := NewShardedDict(e.dom, e.cfg.Slots, e.cfg.Shards)
		if err != nil {
			return err
		}
		e.table = t
	case e.cfg.Workers > 1:
		d, err := NewDict(e.dom, e.cfg.Slots)
		if err != nil {
			return err
		}
		e.table = NewLockedDict(d)
	default:
		d, err := NewDict(e.dom, e.cfg.Slots)
		if err != nil {
			return err
		}
		e.table = d
	}
	return nil
}

// Run ищет коллизии, пока их не станет cfg.Target, не кончится бюджет
// зондов или не будет отменен ctx. При отмене возвращается частичный
// результат вместе с ошибкой контекста.
func (e *Engine[A, B, C]) Run(ctx context.Context) (Result[A, B, C], error) {
	start := time.Now()
	if err := e.buildTable(); err != nil {
		return Result[A, B, C]{}, err
	}
	e.res = Result[A, B, C]{}
	e.seen = make(map[string]struct{})

	var err error
	if e.cfg.Workers > 1 {
		err = e.runParallel(ctx)
	} else {
		err = e.runSequential(ctx)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	res := e.res
	res.Complete = res.Stats.Satisfied >= uint64(e.cfg.Target)
	res.Stats.Embedding = e.embedding.Load()
	res.Stats.DictBytes = e.table.Bytes()
	res.Stats.Elapsed = time.Since(start)
	if res.Complete {
		err = nil
	}
	return res, err
}

type worker[A, B, C any] struct {
	gen    *Generator[A, B, C]
	walker *Walker[A, B, C]
	prng   *rand.Rand
}

func (e *Engine[A, B, C]) newWorker(prng *rand.Rand) (*worker[A, B, C], error) {
	it := NewIterator(e.pb)
	gen, err := NewGenerator(it, e.cfg.Theta)
	if err != nil {
		return nil, err
	}
	walkIt := NewIterator(e.pb)
	walker, err := NewWalker(walkIt, e.cfg.Theta)
	if err != nil {
		return nil, err
	}
	return &worker[A, B, C]{gen: gen, walker: walker, prng: prng}, nil
}

func (e *Engine[A, B, C]) runSequential(ctx context.Context) error {
	w, err := e.newWorker(e.prng)
	if err != nil {
		return err
	}
	for !e.finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.probe(w, e.embedding.Load())
	}
	return nil
}

// finished - состояние Done или исчерпан бюджет зондов.
func (e *Engine[A, B, C]) finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := &e.res.Stats
	if st.Satisfied >= uint64(e.cfg.Target) {
		return true
	}
	return e.cfg.MaxProbes != 0 && st.Probes >= e.cfg.MaxProbes
}

// probe - один проход Seed -> Generate -> Insert -> Resolve.
func (e *Engine[A, B, C]) probe(w *worker[A, B, C], emb uint64) {
	var seed C
	e.seeder(&seed, w.prng)
	end, steps, ok := w.gen.Run(seed, emb)
	e.metrics.probe(steps, ok)

	e.mu.Lock()
	e.res.Stats.Probes++
	e.res.Stats.Steps += uint64(steps)
	if !ok {
		e.res.Stats.Exhausted++
		e.mu.Unlock()
		return
	}
	e.res.Stats.Distinguished++
	e.mu.Unlock()

	evicted, occupied := e.table.PopInsert(seed, end, epochOf(emb))
	if !occupied || e.dom.IsEqual(evicted, seed) {
		return
	}
	if e.embedding.Load() != emb {
		// цепочка построена для старого вложения
		return
	}

	e.mu.Lock()
	e.res.Stats.Candidates++
	e.mu.Unlock()

	pair, err := w.walker.Walk(evicted, seed, emb)
	if err != nil {
		e.mu.Lock()
		e.res.Stats.FalsePositives++
		e.mu.Unlock()
		e.metrics.falsePositive()
		e.log.Debug("false collision", "reason", err, "embedding", emb)
		return
	}
	e.accept(pair, emb)
}

// accept записывает коллизию и сдвигает вложение.
func (e *Engine[A, B, C]) accept(pair Pair[A, B, C], emb uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := &e.res.Stats
	key := pair.Key()
	if _, dup := e.seen[key]; dup {
		st.Duplicates++
	} else {
		e.seen[key] = struct{}{}
		st.Collisions++
		counted := e.satisfies(pair) && st.Satisfied < uint64(e.cfg.Target)
		if counted {
			st.Satisfied++
			e.res.Pairs = append(e.res.Pairs, pair)
		}
		e.metrics.collision(counted, emb+1)
		e.log.Info("collision found",
			"satisfied", st.Satisfied,
			"target", e.cfg.Target,
			"claw", pair.IsClaw(),
			"probes", st.Probes,
			"false_positives", st.FalsePositives,
			"embedding", emb)
	}
	e.embedding.CompareAndSwap(emb, emb+1)
}

func (e *Engine[A, B, C]) satisfies(pair Pair[A, B, C]) bool {
	if e.cfg.RequireClaw && !pair.IsClaw() {
		return false
	}
	if e.verifier == nil {
		return true
	}
	a, b, ok := pair.Claw()
	return ok && e.verifier.IsGoodPair(a, b)
}
