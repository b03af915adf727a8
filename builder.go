package outchain

import (
	"encoding/base64"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Builder configures and opens output chains over a Target. Configuration
// methods return the receiver for chaining; every terminal call opens the
// target again and builds a fresh chain. A Builder is not safe for
// concurrent use.
type Builder struct {
	target      Target
	compressors Compressors
	registryErr error
	config      *Config
	logger      *zap.Logger

	compress bool
	base64   bool
	encoding *base64.Encoding
}

// Option configures a Builder
type Option func(*Builder)

// WithRegistry selects the compressors consulted for named targets.
// Without it the builder uses DefaultRegistry, or a registry built from the
// config when the config carries its own levels or extensions.
func WithRegistry(c Compressors) Option {
	return func(b *Builder) {
		b.compressors = c
	}
}

// WithConfig sets the fallback compressor, buffer size, default charset,
// line separator and default base64 alphabet
func WithConfig(cfg *Config) Option {
	return func(b *Builder) {
		if cfg != nil {
			b.config = cfg
		}
	}
}

// WithLogger sets the logger used to trace chain assembly
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a builder writing to target
func New(target Target, opts ...Option) *Builder {
	b := &Builder{
		target: target,
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.compressors == nil {
		b.compressors, b.registryErr = registryFor(b.config)
	}
	return b
}

func registryFor(cfg *Config) (Compressors, error) {
	if len(cfg.Levels) == 0 && len(cfg.Extensions) == 0 {
		return DefaultRegistry(), nil
	}
	r, err := NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Compress adds a compressor to the chain. If the target has a name whose
// extension the registry knows, that compressor is used; otherwise the
// configured fallback (zlib by default).
func (b *Builder) Compress() *Builder {
	b.compress = true
	return b
}

// EncodeBase64 base64-encodes everything reaching the target, using the
// configured default alphabet.
func (b *Builder) EncodeBase64() *Builder {
	b.base64 = true
	b.encoding = nil
	return b
}

// EncodeBase64With is EncodeBase64 with a specific encoding.
func (b *Builder) EncodeBase64With(enc *base64.Encoding) *Builder {
	b.base64 = true
	b.encoding = enc
	return b
}

// Target returns the target this builder was created with
func (b *Builder) Target() Target {
	return b.target
}

// Stream opens the target and returns it wrapped in the configured layers.
// Without layers the target's own stream is returned unchanged; otherwise
// the result is a *Chain.
func (b *Builder) Stream() (io.WriteCloser, error) {
	return b.createStream()
}

// createStream opens the target, then applies base64 (next to the target)
// and compression (outermost). If a layer cannot be built, everything
// opened so far is closed before returning.
func (b *Builder) createStream() (io.WriteCloser, error) {
	if b.target == nil {
		return nil, &ChainError{Op: "open", Err: ErrNilTarget}
	}
	name, named := b.target.Name()

	raw, err := b.target.OpenStream()
	if err != nil {
		return nil, &ChainError{Op: "open", Target: name, Err: err}
	}
	if !b.base64 && !b.compress {
		b.logger.Debug("opened output stream", zap.String("target", name))
		return raw, nil
	}

	chain := newChain(raw)

	if b.base64 {
		enc := b.encoding
		if enc == nil {
			enc, err = base64Encoding(b.config.Base64)
			if err != nil {
				return nil, b.rollback(chain, "base64", name, err)
			}
		}
		chain.push("base64", base64.NewEncoder(enc, chain.top))
	}

	if b.compress {
		if b.registryErr != nil {
			return nil, b.rollback(chain, "compress", name, b.registryErr)
		}
		var (
			w     io.WriteCloser
			label string
		)
		if named && b.compressors.CanWrap(name) {
			w, err = b.compressors.Wrap(name, chain.top)
			label = b.registryLabel(name)
		} else {
			fallback := b.config.Fallback
			if fallback == "" {
				fallback = AlgorithmZlib
			}
			w, err = NewWriter(fallback, chain.top, b.config.FallbackLevel)
			label = string(fallback) + " fallback"
		}
		if err != nil {
			return nil, b.rollback(chain, "compress", name, err)
		}
		chain.push(label, w)
	}

	b.logger.Debug("assembled output chain",
		zap.String("target", name),
		zap.Strings("layers", chain.layers),
	)
	return chain, nil
}

func (b *Builder) registryLabel(name string) string {
	if r, ok := b.compressors.(interface {
		Algorithm(name string) (Algorithm, bool)
	}); ok {
		if algo, ok := r.Algorithm(name); ok {
			return string(algo)
		}
	}
	return extensionOf(name)
}

func (b *Builder) rollback(chain *Chain, op, name string, err error) error {
	b.logger.Warn("output chain assembly failed",
		zap.String("op", op),
		zap.String("target", name),
		zap.Strings("layers", chain.layers),
		zap.Error(err),
	)
	return &ChainError{Op: op, Target: name, Err: multierr.Append(err, chain.Close())}
}
