package outchain

import (
	"fmt"
	"iter"
	"slices"

	"go.uber.org/multierr"
	"golang.org/x/text/encoding"
)

// Write writes fmt.Sprint(v) to the target in the default charset and
// closes the chain. A nil v is written as "<nil>", not "null".
func (b *Builder) Write(v any) error {
	w, err := b.Writer()
	if err != nil {
		return err
	}
	return writeValues(w, slices.Values([]any{v}))
}

// WriteCharset is Write with an explicit charset
func (b *Builder) WriteCharset(v any, enc encoding.Encoding) error {
	w, err := b.WriterCharset(enc)
	if err != nil {
		return err
	}
	return writeValues(w, slices.Values([]any{v}))
}

// WriteLines writes each value on its own line, rendered like Write. No
// separator follows the last value.
func (b *Builder) WriteLines(values ...any) error {
	return WriteSlice(b, values)
}

// WriteLinesCharset is WriteLines with an explicit charset
func (b *Builder) WriteLinesCharset(enc encoding.Encoding, values ...any) error {
	return WriteSeqCharset(b, enc, slices.Values(values))
}

// WriteSlice writes each element of values on its own line
func WriteSlice[T any](b *Builder, values []T) error {
	return WriteSeq(b, slices.Values(values))
}

// WriteSeq writes every value produced by seq on its own line
func WriteSeq[T any](b *Builder, seq iter.Seq[T]) error {
	w, err := b.Writer()
	if err != nil {
		return err
	}
	return writeValues(w, seq)
}

// WriteSeqCharset is WriteSeq with an explicit charset
func WriteSeqCharset[T any](b *Builder, enc encoding.Encoding, seq iter.Seq[T]) error {
	w, err := b.WriterCharset(enc)
	if err != nil {
		return err
	}
	return writeValues(w, seq)
}

// writeValues owns w and closes it on every path
func writeValues[T any](w *Writer, seq iter.Seq[T]) (err error) {
	defer multierr.AppendInvoke(&err, multierr.Close(w))

	first := true
	for v := range seq {
		if !first {
			if err = w.NewLine(); err != nil {
				return err
			}
		}
		first = false
		if _, err = w.WriteString(fmt.Sprint(v)); err != nil {
			return err
		}
	}
	return nil
}
