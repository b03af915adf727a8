package outchain

import (
	"io"
	"io/fs"
	"os"

	"github.com/absfs/absfs"
)

// Target is a destination that can produce a fresh byte sink on demand.
// Name reports the logical name used for compressor selection, if any.
type Target interface {
	OpenStream() (io.WriteCloser, error)
	Name() (string, bool)
}

// TargetFunc adapts a function to an unnamed Target
type TargetFunc func() (io.WriteCloser, error)

func (f TargetFunc) OpenStream() (io.WriteCloser, error) { return f() }

func (f TargetFunc) Name() (string, bool) { return "", false }

// Opener is the part of an absfs.Filer a FilerTarget needs
type Opener interface {
	OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error)
}

type writerTarget struct {
	w    io.Writer
	name string
}

// WriterTarget writes to w. Closing the stream closes w only if w is an io.Closer.
func WriterTarget(w io.Writer) Target {
	return &writerTarget{w: w}
}

// NamedWriterTarget is WriterTarget with a logical name.
func NamedWriterTarget(name string, w io.Writer) Target {
	return &writerTarget{w: w, name: name}
}

func (t *writerTarget) OpenStream() (io.WriteCloser, error) {
	if wc, ok := t.w.(io.WriteCloser); ok {
		return wc, nil
	}
	return nopWriteCloser{t.w}, nil
}

func (t *writerTarget) Name() (string, bool) {
	return t.name, t.name != ""
}

type fileTarget struct {
	path string
}

// FileTarget creates or truncates the file at path each time it is opened.
func FileTarget(path string) Target {
	return &fileTarget{path: path}
}

func (t *fileTarget) OpenStream() (io.WriteCloser, error) {
	return os.Create(t.path)
}

func (t *fileTarget) Name() (string, bool) {
	return t.path, true
}

type filerTarget struct {
	fsys Opener
	name string
}

// FilerTarget opens name through an absfs filesystem with create/truncate semantics.
func FilerTarget(fsys Opener, name string) Target {
	return &filerTarget{fsys: fsys, name: name}
}

func (t *filerTarget) OpenStream() (io.WriteCloser, error) {
	return t.fsys.OpenFile(t.name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (t *filerTarget) Name() (string, bool) {
	return t.name, true
}

type namedTarget struct {
	Target
	name string
}

// Named gives t the logical name name, replacing any name t reports itself.
func Named(name string, t Target) Target {
	return &namedTarget{Target: t, name: name}
}

func (t *namedTarget) Name() (string, bool) {
	return t.name, t.name != ""
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
