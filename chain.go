package outchain

import (
	"io"

	"go.uber.org/multierr"
)

// Chain is an assembled stack of encoding and compression layers over a
// target stream. Writes enter the outermost layer. Close closes every layer
// from the outermost inwards, ending with the target stream.
type Chain struct {
	top     io.Writer
	closers []io.Closer
	layers  []string
}

func newChain(raw io.WriteCloser) *Chain {
	return &Chain{
		top:     raw,
		closers: []io.Closer{raw},
		layers:  []string{"target"},
	}
}

// push makes w the outermost layer; the chain now owns it
func (c *Chain) push(label string, w io.WriteCloser) {
	c.top = w
	c.closers = append(c.closers, w)
	c.layers = append(c.layers, label)
}

// Layers returns the layer labels, innermost first
func (c *Chain) Layers() []string {
	return append([]string(nil), c.layers...)
}

func (c *Chain) Write(p []byte) (int, error) {
	return c.top.Write(p)
}

// Close flushes and closes all layers. Every layer is closed even if an
// outer one fails; the errors are combined. Calling Close again is a no-op.
func (c *Chain) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.closers[i].Close())
	}
	c.closers = nil
	return err
}
