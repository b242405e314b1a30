package gateway

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"inferd/internal/engine"
	"inferd/internal/registry"
)

// Defaults applied when corresponding GatewayConfig fields are unset.
const (
	defaultMaxConcurrentInfer = 10
	defaultSyncMaxTokens      = 64
	defaultStreamMaxTokens    = 128
)

// fragmentBuffer is the capacity of the per-session fragment channel joining
// a streaming producer and its consumer. The producer blocks before emitting
// the (fragmentBuffer+1)-th unsent fragment until the consumer drains.
const fragmentBuffer = 32

// EngineBuilder constructs a concrete engine for a model. Overridable in
// tests; defaults to engine.New.
type EngineBuilder func(kind registry.EngineKind, meta registry.ModelMetadata, opts engine.Options) (engine.Engine, error)

// GatewayConfig encapsulates all tunables for Gateway construction.
type GatewayConfig struct {
	Registry *registry.Registry
	// MaxConcurrentInfer caps simultaneous generation work process-wide.
	MaxConcurrentInfer int
	// SyncMaxTokens / StreamMaxTokens are the token budgets applied when a
	// request does not carry one.
	SyncMaxTokens   int
	StreamMaxTokens int
	// Engine holds construction-time engine tunables.
	Engine engine.Options
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events; defaults to a no-op publisher.
	Publisher EventPublisher
	// NewEngine overrides engine construction (tests only).
	NewEngine EngineBuilder
}

// NewWithConfig constructs a Gateway from GatewayConfig.
func NewWithConfig(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		reg:        cfg.Registry,
		engines:    make(map[string]engine.Engine),
		loadLocks:  make(map[string]*sync.Mutex),
		engineOpts: cfg.Engine,
		log:        zerolog.Nop(),
		publisher:  noopPublisher{},
		newEngine:  engine.New,
	}
	if g.reg == nil {
		g.reg = registry.New(nil)
	}
	if cfg.MaxConcurrentInfer > 0 {
		g.maxConcurrent = cfg.MaxConcurrentInfer
	} else {
		g.maxConcurrent = defaultMaxConcurrentInfer
	}
	g.sem = semaphore.NewWeighted(int64(g.maxConcurrent))
	if cfg.SyncMaxTokens > 0 {
		g.syncMaxTokens = cfg.SyncMaxTokens
	} else {
		g.syncMaxTokens = defaultSyncMaxTokens
	}
	if cfg.StreamMaxTokens > 0 {
		g.streamMaxTokens = cfg.StreamMaxTokens
	} else {
		g.streamMaxTokens = defaultStreamMaxTokens
	}
	if cfg.Logger != nil {
		g.log = *cfg.Logger
	}
	if cfg.Publisher != nil {
		g.publisher = cfg.Publisher
	}
	if cfg.NewEngine != nil {
		g.newEngine = cfg.NewEngine
	}
	return g
}
