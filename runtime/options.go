package runtime

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/module"
)

// RuntimeOption configures a Runtime at construction time, following the
// functional-options idiom used throughout mjsvm.
type RuntimeOption func(*runtimeConfig)

// ContextOption configures one Context.
type ContextOption func(*contextConfig)

type runtimeConfig struct {
	logger         *zap.Logger
	registry       *prometheus.Registry
	moduleCacheDir string
	source         module.Source
	builder        module.Builder
}

type contextConfig struct {
	semiSpaceBytes int
	gcThresholdPct int
}

func defaultRuntimeConfig() *runtimeConfig {
	return &runtimeConfig{
		logger: zap.NewNop(),
	}
}

func defaultContextConfig() *contextConfig {
	return &contextConfig{
		semiSpaceBytes: 1 << 20,
		gcThresholdPct: 80,
	}
}

// WithLogger plugs a structured logger used for GC cycles, module-cache
// misses and module disk-cache errors. The default is a no-op logger until
// an embedder opts in.
func WithLogger(l *zap.Logger) RuntimeOption {
	return func(c *runtimeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics against reg. Passing nil disables
// metrics (the default).
func WithMetrics(reg *prometheus.Registry) RuntimeOption {
	return func(c *runtimeConfig) { c.registry = reg }
}

// WithModuleCacheDir opens a badger-backed module.DiskCache rooted at dir,
// persisting compiled ModuleDef blobs across process restarts.
func WithModuleCacheDir(dir string) RuntimeOption {
	return func(c *runtimeConfig) { c.moduleCacheDir = dir }
}

// WithModuleSource installs the embedder-supplied Resolve/Load
// implementation module.Manager calls on an L1/L2 cache miss.
func WithModuleSource(s module.Source) RuntimeOption {
	return func(c *runtimeConfig) { c.source = s }
}

// WithModuleBuilder installs the embedder-supplied source-to-ModuleDef
// compiler; mjsvm ships no parser of its own.
func WithModuleBuilder(b module.Builder) RuntimeOption {
	return func(c *runtimeConfig) { c.builder = b }
}

// WithGCThreshold overrides the young-space occupancy percentage (1-100)
// that triggers a Scavenge on a Context's heap, default 80.
func WithGCThreshold(percent uint8) ContextOption {
	return func(c *contextConfig) {
		if percent > 0 && percent <= 100 {
			c.gcThresholdPct = int(percent)
		}
	}
}

// WithSemiSpaceSize overrides a Context heap's young-generation semispace
// size in bytes, default 1MiB.
func WithSemiSpaceSize(bytes int) ContextOption {
	return func(c *contextConfig) {
		if bytes > 0 {
			c.semiSpaceBytes = bytes
		}
	}
}

func applyRuntimeOptions(opts []RuntimeOption) (*runtimeConfig, error) {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.moduleCacheDir != "" && cfg.source == nil {
		return nil, errModuleCacheWithoutSource
	}
	return cfg, nil
}

func applyContextOptions(opts []ContextOption) *contextConfig {
	cfg := defaultContextConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

var errModuleCacheWithoutSource = errors.New("runtime: WithModuleCacheDir requires WithModuleSource")
