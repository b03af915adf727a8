package outchain

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// LookupCharset resolves an IANA charset name (e.g. "ISO-8859-1",
// "UTF-16LE", "Shift_JIS"), falling back to the WHATWG labels.
func LookupCharset(name string) (encoding.Encoding, error) {
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// charsetWriter returns w transcoding UTF-8 text to enc. A nil enc leaves
// text as UTF-8 and the returned closer is a no-op.
func charsetWriter(w io.Writer, enc encoding.Encoding) io.WriteCloser {
	if enc == nil {
		return nopWriteCloser{w}
	}
	return transform.NewWriter(w, enc.NewEncoder())
}
