package outchain

import (
	"io"
	"sort"
	"sync"
)

// Compressors maps logical names to compressing wrappers
type Compressors interface {
	// CanWrap reports whether name's extension has a registered wrapper.
	CanWrap(name string) bool
	// Wrap wraps w with the compressor registered for name's extension.
	Wrap(name string, w io.Writer) (io.WriteCloser, error)
}

// WrapFunc constructs a compressing writer around w
type WrapFunc func(w io.Writer) (io.WriteCloser, error)

// Registry is an extension keyed table of WrapFuncs. It is populated first
// and read afterwards: once frozen, Register fails with ErrRegistryFrozen.
type Registry struct {
	mu         sync.RWMutex
	wrappers   map[string]WrapFunc
	algorithms map[string]Algorithm
	frozen     bool
	autoFreeze bool
}

// NewRegistry returns an empty, unfrozen registry
func NewRegistry() *Registry {
	return &Registry{
		wrappers:   make(map[string]WrapFunc),
		algorithms: make(map[string]Algorithm),
	}
}

// NewRegistryFromConfig returns a registry holding every built-in extension
// plus the extra mappings in cfg, using the levels from cfg.
func NewRegistryFromConfig(cfg *Config) (*Registry, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r := NewRegistry()
	for ext, algo := range reverseExtensionMap {
		if err := r.RegisterAlgorithm(ext, algo, cfg.level(algo)); err != nil {
			return nil, err
		}
	}
	for ext, name := range cfg.Extensions {
		algo := Algorithm(name)
		if err := r.RegisterAlgorithm(ext, algo, cfg.level(algo)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry holding the built-in
// compressors. Extensions may be added with Register until the registry is
// first consulted by CanWrap or Wrap, at which point it freezes.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := NewRegistryFromConfig(DefaultConfig())
		if err != nil {
			// built-in extensions are always valid
			panic(err)
		}
		r.autoFreeze = true
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register maps ext (with or without the leading dot, any case) to fn.
// A later registration of the same extension replaces the earlier one.
func (r *Registry) Register(ext string, fn WrapFunc) error {
	return r.register(ext, fn, "")
}

// RegisterAlgorithm maps ext to a built-in algorithm at the given level.
func (r *Registry) RegisterAlgorithm(ext string, algo Algorithm, level int) error {
	if !Supported(algo) {
		return ErrUnsupportedAlgorithm
	}
	return r.register(ext, func(w io.Writer) (io.WriteCloser, error) {
		return NewWriter(algo, w, level)
	}, algo)
}

func (r *Registry) register(ext string, fn WrapFunc, algo Algorithm) error {
	ext = normalizeExtension(ext)
	if ext == "" || fn == nil {
		return ErrInvalidExtension
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.wrappers[ext] = fn
	if algo != "" {
		r.algorithms[ext] = algo
	} else {
		delete(r.algorithms, ext)
	}
	return nil
}

// Freeze stops further registrations
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the registry rejects registrations
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Extensions returns the registered extensions, sorted
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.wrappers))
	for ext := range r.wrappers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Algorithm returns the built-in algorithm behind name's extension. It is
// false for unknown extensions and for extensions registered with Register.
func (r *Registry) Algorithm(name string) (Algorithm, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	algo, ok := r.algorithms[extensionOf(name)]
	return algo, ok
}

func (r *Registry) lookup(name string) (WrapFunc, bool) {
	r.mu.RLock()
	fn, ok := r.wrappers[extensionOf(name)]
	frozen := r.frozen
	r.mu.RUnlock()
	if r.autoFreeze && !frozen {
		r.Freeze()
	}
	return fn, ok
}

// CanWrap reports whether name's extension is registered
func (r *Registry) CanWrap(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Wrap wraps w with the compressor registered for name's extension
func (r *Registry) Wrap(name string, w io.Writer) (io.WriteCloser, error) {
	fn, ok := r.lookup(name)
	if !ok {
		return nil, ErrUnknownExtension
	}
	return fn(w)
}
