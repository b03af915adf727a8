package outchain

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/text/encoding"
)

const defaultBufferSize = 8 * 1024

// Writer is a buffered text writer over an output chain. Text is UTF-8
// unless a charset was chosen, in which case it is transcoded on the way
// out.
type Writer struct {
	buf     *bufio.Writer
	text    io.WriteCloser
	stream  io.WriteCloser
	lineSep string
	closed  bool
}

// Writer opens a text writer in the configured default charset
func (b *Builder) Writer() (*Writer, error) {
	enc, err := b.defaultCharset()
	if err != nil {
		return nil, err
	}
	return b.newWriter(enc)
}

// WriterCharset opens a text writer that encodes text with enc
func (b *Builder) WriterCharset(enc encoding.Encoding) (*Writer, error) {
	return b.newWriter(enc)
}

// WriterNamed opens a text writer for a charset looked up by name
func (b *Builder) WriterNamed(charset string) (*Writer, error) {
	enc, err := b.lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return b.newWriter(enc)
}

func (b *Builder) newWriter(enc encoding.Encoding) (*Writer, error) {
	stream, err := b.createStream()
	if err != nil {
		return nil, err
	}
	text := charsetWriter(stream, enc)
	return &Writer{
		buf:     bufio.NewWriterSize(text, b.bufferSize()),
		text:    text,
		stream:  stream,
		lineSep: b.lineSeparator(),
	}, nil
}

func (b *Builder) defaultCharset() (encoding.Encoding, error) {
	if b.config.Charset == "" {
		return nil, nil
	}
	return b.lookupCharset(b.config.Charset)
}

func (b *Builder) lookupCharset(name string) (encoding.Encoding, error) {
	enc, err := LookupCharset(name)
	if err != nil {
		return nil, &ChainError{Op: "charset", Target: b.targetName(), Err: err}
	}
	return enc, nil
}

func (b *Builder) targetName() string {
	if b.target == nil {
		return ""
	}
	name, _ := b.target.Name()
	return name
}

func (b *Builder) bufferSize() int {
	if b.config.BufferSize <= 0 {
		return defaultBufferSize
	}
	return b.config.BufferSize
}

func (b *Builder) lineSeparator() string {
	if b.config.LineSeparator == "" {
		return platformLineSeparator()
	}
	return b.config.LineSeparator
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *Writer) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

// NewLine writes the line separator
func (w *Writer) NewLine() error {
	_, err := w.buf.WriteString(w.lineSep)
	return err
}

// Flush writes buffered text into the chain. Compressors may still hold
// data until Close.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Close flushes the buffer and closes the transcoder and the chain. All
// three are attempted even if one fails.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.buf.Flush()
	err = multierr.Append(err, w.text.Close())
	return multierr.Append(err, w.stream.Close())
}

// Printer formats values onto a Writer. Like a print writer it does not
// return errors per call; the first failure is kept and reported by Err
// and Close, and later calls are skipped.
type Printer struct {
	w   *Writer
	err error
}

// Print opens a Printer in the configured default charset
func (b *Builder) Print() (*Printer, error) {
	w, err := b.Writer()
	if err != nil {
		return nil, err
	}
	return &Printer{w: w}, nil
}

// PrintCharset opens a Printer that encodes text with enc
func (b *Builder) PrintCharset(enc encoding.Encoding) (*Printer, error) {
	w, err := b.WriterCharset(enc)
	if err != nil {
		return nil, err
	}
	return &Printer{w: w}, nil
}

func (p *Printer) Print(a ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprint(p.w, a...)
	}
}

func (p *Printer) Printf(format string, a ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, a...)
	}
}

// Println prints the operands separated by spaces, then the line separator
func (p *Printer) Println(a ...any) {
	if p.err == nil {
		line := strings.TrimSuffix(fmt.Sprintln(a...), "\n")
		_, p.err = p.w.WriteString(line + p.w.lineSep)
	}
}

// Err returns the first error hit by a print call or Flush
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) Flush() error {
	if p.err == nil {
		p.err = p.w.Flush()
	}
	return p.err
}

func (p *Printer) Close() error {
	return multierr.Append(p.err, p.w.Close())
}
