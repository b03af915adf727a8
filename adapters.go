package outchain

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"io"
	"math"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrStringTooLong is returned by DataWriter.WriteString for strings that
// do not fit a uint16 length prefix
var ErrStringTooLong = errors.New("outchain: string too long for length prefix")

type valueEncoder interface {
	Encode(v any) error
}

// Encoder writes a stream of values in one serialization format
type Encoder struct {
	enc    valueEncoder
	finish func() error
	buf    *bufio.Writer
	stream io.WriteCloser
	closed bool
}

// Objects opens a gob encoded object stream
func (b *Builder) Objects() (*Encoder, error) {
	return b.newEncoder(func(w io.Writer) (valueEncoder, func() error) {
		return gob.NewEncoder(w), nil
	})
}

// JSON opens a stream of newline separated JSON documents
func (b *Builder) JSON() (*Encoder, error) {
	return b.newEncoder(func(w io.Writer) (valueEncoder, func() error) {
		return json.NewEncoder(w), nil
	})
}

// YAML opens a stream of "---" separated YAML documents
func (b *Builder) YAML() (*Encoder, error) {
	return b.newEncoder(func(w io.Writer) (valueEncoder, func() error) {
		enc := yaml.NewEncoder(w)
		return enc, enc.Close
	})
}

func (b *Builder) newEncoder(open func(io.Writer) (valueEncoder, func() error)) (*Encoder, error) {
	stream, err := b.createStream()
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriterSize(stream, b.bufferSize())
	enc, finish := open(buf)
	return &Encoder{enc: enc, finish: finish, buf: buf, stream: stream}, nil
}

// Encode writes one value
func (e *Encoder) Encode(v any) error {
	return e.enc.Encode(v)
}

// Close finishes the format, flushes and closes the chain. Calling Close
// again is a no-op.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	var err error
	if e.finish != nil {
		err = e.finish()
	}
	err = multierr.Append(err, e.buf.Flush())
	return multierr.Append(err, e.stream.Close())
}

// DataWriter writes big-endian binary primitives
type DataWriter struct {
	buf     *bufio.Writer
	stream  io.WriteCloser
	written int64
	scratch [8]byte
	closed  bool
}

// Data opens a binary data writer
func (b *Builder) Data() (*DataWriter, error) {
	stream, err := b.createStream()
	if err != nil {
		return nil, err
	}
	return &DataWriter{
		buf:    bufio.NewWriterSize(stream, b.bufferSize()),
		stream: stream,
	}, nil
}

func (d *DataWriter) Write(p []byte) (int, error) {
	n, err := d.buf.Write(p)
	d.written += int64(n)
	return n, err
}

func (d *DataWriter) put(n int) error {
	_, err := d.Write(d.scratch[:n])
	return err
}

func (d *DataWriter) WriteBool(v bool) error {
	if v {
		return d.WriteByte(1)
	}
	return d.WriteByte(0)
}

func (d *DataWriter) WriteByte(c byte) error {
	d.scratch[0] = c
	return d.put(1)
}

func (d *DataWriter) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(d.scratch[:], v)
	return d.put(2)
}

func (d *DataWriter) WriteInt16(v int16) error {
	return d.WriteUint16(uint16(v))
}

func (d *DataWriter) WriteUint32(v uint32) error {
	binary.BigEndian.PutUint32(d.scratch[:], v)
	return d.put(4)
}

func (d *DataWriter) WriteInt32(v int32) error {
	return d.WriteUint32(uint32(v))
}

func (d *DataWriter) WriteUint64(v uint64) error {
	binary.BigEndian.PutUint64(d.scratch[:], v)
	return d.put(8)
}

func (d *DataWriter) WriteInt64(v int64) error {
	return d.WriteUint64(uint64(v))
}

func (d *DataWriter) WriteFloat32(v float32) error {
	return d.WriteUint32(math.Float32bits(v))
}

func (d *DataWriter) WriteFloat64(v float64) error {
	return d.WriteUint64(math.Float64bits(v))
}

// WriteString writes s as UTF-8 prefixed with its byte length as a uint16
func (d *DataWriter) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrStringTooLong
	}
	if err := d.WriteUint16(uint16(len(s))); err != nil {
		return err
	}
	_, err := d.buf.WriteString(s)
	if err == nil {
		d.written += int64(len(s))
	}
	return err
}

// Size returns the number of bytes written so far
func (d *DataWriter) Size() int64 {
	return d.written
}

func (d *DataWriter) Flush() error {
	return d.buf.Flush()
}

func (d *DataWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return multierr.Append(d.buf.Flush(), d.stream.Close())
}

// ZipWriter is a zip archive written into an output chain
type ZipWriter struct {
	*zip.Writer
	buf    *bufio.Writer
	stream io.WriteCloser
	closed bool
}

// Zip opens a zip archive writer
func (b *Builder) Zip() (*ZipWriter, error) {
	stream, err := b.createStream()
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriterSize(stream, b.bufferSize())
	return &ZipWriter{
		Writer: zip.NewWriter(buf),
		buf:    buf,
		stream: stream,
	}, nil
}

// Close writes the central directory and closes the chain
func (z *ZipWriter) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true
	err := z.Writer.Close()
	err = multierr.Append(err, z.buf.Flush())
	return multierr.Append(err, z.stream.Close())
}
