package outchain

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absfs/absfs"
)

// normalizePath removes leading slashes and cleans the path
func normalizePath(name string) string {
	name = filepath.Clean(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, string(filepath.Separator))
	if name == "" {
		name = "."
	}
	return name
}

// MemFS is a flat in-memory file store satisfying the Opener used by
// FilerTarget. Handles share the stored bytes, so data written through
// one handle is visible to ReadFile immediately.
type MemFS struct {
	files map[string]*memNode
	mu    sync.RWMutex
}

// NewMemFS creates an empty in-memory filesystem
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string]*memNode)}
}

type memNode struct {
	mu      sync.Mutex
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// OpenFile opens name honouring O_CREATE, O_EXCL, O_TRUNC and O_APPEND
func (mfs *MemFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	if name == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	node, exists := mfs.files[name]
	switch {
	case exists && flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	case !exists && flag&os.O_CREATE == 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	case !exists:
		node = &memNode{mode: perm, modTime: time.Now()}
		mfs.files[name] = node
	}

	if flag&os.O_TRUNC != 0 {
		node.mu.Lock()
		node.data = nil
		node.modTime = time.Now()
		node.mu.Unlock()
	}

	f := &memFile{name: name, node: node, flag: flag}
	if flag&os.O_APPEND != 0 {
		node.mu.Lock()
		f.pos = int64(len(node.data))
		node.mu.Unlock()
	}
	return f, nil
}

// Create creates or truncates name
func (mfs *MemFS) Create(name string) (absfs.File, error) {
	return mfs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// ReadFile returns a copy of the stored contents of name
func (mfs *MemFS) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	node, ok := mfs.files[normalizePath(name)]
	mfs.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	node.mu.Lock()
	defer node.mu.Unlock()
	return append([]byte(nil), node.data...), nil
}

func (mfs *MemFS) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	node, ok := mfs.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return node.info(name), nil
}

func (mfs *MemFS) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	if _, ok := mfs.files[name]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(mfs.files, name)
	return nil
}

// Names returns the stored file names, sorted
func (mfs *MemFS) Names() []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	names := make([]string, 0, len(mfs.files))
	for name := range mfs.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *memNode) info(name string) *memFileInfo {
	n.mu.Lock()
	defer n.mu.Unlock()
	return &memFileInfo{
		name:    filepath.Base(name),
		size:    int64(len(n.data)),
		mode:    n.mode,
		modTime: n.modTime,
	}
}

// memFile is one open handle onto a memNode
type memFile struct {
	name   string
	node   *memNode
	flag   int
	pos    int64
	closed bool
	mu     sync.Mutex
}

var errNegativeOffset = errors.New("outchain: negative offset")

func (mf *memFile) Name() string {
	return mf.name
}

func (mf *memFile) Read(p []byte) (int, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	if mf.closed {
		return 0, fs.ErrClosed
	}
	n, err := mf.readAt(p, mf.pos)
	mf.pos += int64(n)
	return n, err
}

func (mf *memFile) ReadAt(p []byte, off int64) (int, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	if mf.closed {
		return 0, fs.ErrClosed
	}
	n, err := mf.readAt(p, off)
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (mf *memFile) readAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	mf.node.mu.Lock()
	defer mf.node.mu.Unlock()
	if off >= int64(len(mf.node.data)) {
		return 0, io.EOF
	}
	return copy(p, mf.node.data[off:]), nil
}

func (mf *memFile) Write(p []byte) (int, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	if mf.closed {
		return 0, fs.ErrClosed
	}
	n, err := mf.writeAt(p, mf.pos)
	mf.pos += int64(n)
	return n, err
}

func (mf *memFile) WriteAt(p []byte, off int64) (int, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	if mf.closed {
		return 0, fs.ErrClosed
	}
	return mf.writeAt(p, off)
}

func (mf *memFile) writeAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	if mf.flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return 0, &fs.PathError{Op: "write", Path: mf.name, Err: fs.ErrPermission}
	}
	mf.node.mu.Lock()
	defer mf.node.mu.Unlock()
	if end := off + int64(len(p)); end > int64(len(mf.node.data)) {
		grown := make([]byte, end)
		copy(grown, mf.node.data)
		mf.node.data = grown
	}
	n := copy(mf.node.data[off:], p)
	mf.node.modTime = time.Now()
	return n, nil
}

func (mf *memFile) WriteString(s string) (int, error) {
	return mf.Write([]byte(s))
}

func (mf *memFile) Close() error {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	mf.closed = true
	return nil
}

func (mf *memFile) Seek(offset int64, whence int) (int64, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	if mf.closed {
		return 0, fs.ErrClosed
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = mf.pos + offset
	case io.SeekEnd:
		mf.node.mu.Lock()
		pos = int64(len(mf.node.data)) + offset
		mf.node.mu.Unlock()
	default:
		return 0, errors.New("outchain: invalid whence")
	}
	if pos < 0 {
		return 0, errNegativeOffset
	}
	mf.pos = pos
	return pos, nil
}

func (mf *memFile) Stat() (fs.FileInfo, error) {
	return mf.node.info(mf.name), nil
}

func (mf *memFile) Sync() error {
	return nil
}

func (mf *memFile) Truncate(size int64) error {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	if mf.closed {
		return fs.ErrClosed
	}
	if size < 0 {
		return errNegativeOffset
	}
	mf.node.mu.Lock()
	defer mf.node.mu.Unlock()
	resized := make([]byte, size)
	copy(resized, mf.node.data)
	mf.node.data = resized
	mf.node.modTime = time.Now()
	return nil
}

// memFile is never a directory
func (mf *memFile) Readdir(int) ([]os.FileInfo, error) {
	return nil, os.ErrInvalid
}

func (mf *memFile) Readdirnames(int) ([]string, error) {
	return nil, os.ErrInvalid
}

func (mf *memFile) ReadDir(int) ([]fs.DirEntry, error) {
	return nil, os.ErrInvalid
}

type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *memFileInfo) Sys() interface{}   { return nil }
