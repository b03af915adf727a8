package targets

import (
	"io"
	"sync"
)

// pipeUpload feeds writes into an upload running on another goroutine
type pipeUpload struct {
	pw     *io.PipeWriter
	result chan error
	once   sync.Once
	err    error
}

// startUpload runs upload with the read side of a pipe. If upload returns
// before consuming everything, pending and later writes fail with its error.
func startUpload(upload func(r io.Reader) error) *pipeUpload {
	pr, pw := io.Pipe()
	u := &pipeUpload{pw: pw, result: make(chan error, 1)}

	go func() {
		err := upload(pr)
		if err != nil {
			_ = pr.CloseWithError(err)
		} else {
			_ = pr.Close()
		}
		u.result <- err
		close(u.result)
	}()
	return u
}

func (u *pipeUpload) Write(p []byte) (int, error) {
	return u.pw.Write(p)
}

// Close ends the stream and waits for the upload result
func (u *pipeUpload) Close() error {
	u.once.Do(func() {
		_ = u.pw.Close()
		u.err = <-u.result
	})
	return u.err
}
