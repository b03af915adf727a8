package outchain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedAlgorithm = errors.New("outchain: unsupported compression algorithm")
	ErrInvalidLevel         = errors.New("outchain: invalid compression level")
	ErrUnknownExtension     = errors.New("outchain: no compressor registered for extension")
	ErrInvalidExtension     = errors.New("outchain: invalid extension registration")
	ErrRegistryFrozen       = errors.New("outchain: registry is frozen")
	ErrUnknownCharset       = errors.New("outchain: unknown charset")
	ErrNilTarget            = errors.New("outchain: nil target")
	ErrUnsupportedConfig    = errors.New("outchain: unsupported config format")
)

// ChainError records a failure while assembling an output chain.
// Op is one of "open", "base64", "compress" or "charset".
type ChainError struct {
	Op     string
	Target string
	Err    error
}

func (e *ChainError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("outchain: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("outchain: %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }
