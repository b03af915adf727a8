// Package targets provides outchain targets backed by storage clients:
// go-billy filesystems, S3 compatible object stores through minio-go, and
// Azure Blob Storage.
//
// Object store targets stream: OpenStream starts the upload in the
// background and feeds it through a pipe, and Close on the stream waits for
// the upload to finish and reports its error.
package targets
