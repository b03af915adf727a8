package outchain

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
)

var errBoom = errors.New("boom")

// sink records everything written to it and whether it was closed
type sink struct {
	bytes.Buffer
	closed   bool
	closes   int
	writeErr error
	closeErr error
}

func (s *sink) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.Buffer.Write(p)
}

func (s *sink) Close() error {
	s.closed = true
	s.closes++
	return s.closeErr
}

// countingTarget hands out a new sink on every open
type countingTarget struct {
	name  string
	opens []*sink
}

func (t *countingTarget) OpenStream() (io.WriteCloser, error) {
	s := &sink{}
	t.opens = append(t.opens, s)
	return s, nil
}

func (t *countingTarget) Name() (string, bool) {
	return t.name, t.name != ""
}

func failingWrap(io.Writer) (io.WriteCloser, error) {
	return nil, errBoom
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
