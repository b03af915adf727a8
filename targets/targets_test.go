package targets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/absfs/outchain"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpload = errors.New("upload rejected")

type fakePutter struct {
	mu      sync.Mutex
	objects map[string][]byte
	opts    minio.PutObjectOptions
	size    int64
	err     error
}

func (p *fakePutter) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if p.err != nil {
		return minio.UploadInfo{}, p.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.objects == nil {
		p.objects = make(map[string][]byte)
	}
	p.objects[bucket+"/"+key] = data
	p.opts = opts
	p.size = size
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

type fakeUploader struct {
	blobs map[string][]byte
	err   error
}

func (u *fakeUploader) UploadStream(ctx context.Context, container, blob string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error) {
	if u.err != nil {
		return azblob.UploadStreamResponse{}, u.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return azblob.UploadStreamResponse{}, err
	}
	if u.blobs == nil {
		u.blobs = make(map[string][]byte)
	}
	u.blobs[container+"/"+blob] = data
	return azblob.UploadStreamResponse{}, nil
}

func TestBillyTarget(t *testing.T) {
	fsys := memfs.New()
	target := BillyTarget(fsys, "logs/app.zst")

	name, ok := target.Name()
	assert.True(t, ok)
	assert.Equal(t, "logs/app.zst", name)

	require.NoError(t, outchain.New(target).Compress().Write("hello billy"))

	data, err := util.ReadFile(fsys, "logs/app.zst")
	require.NoError(t, err)
	plain, err := outchain.DecompressBytes(data, outchain.AlgorithmZstd)
	require.NoError(t, err)
	assert.Equal(t, "hello billy", string(plain))
}

func TestBillyTargetTruncates(t *testing.T) {
	fsys := memfs.New()
	b := outchain.New(BillyTarget(fsys, "note.txt"))

	require.NoError(t, b.Write("first and longer"))
	require.NoError(t, b.Write("second"))

	data, err := util.ReadFile(fsys, "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestMinioTarget(t *testing.T) {
	putter := &fakePutter{}
	target := MinioTarget(context.Background(), putter, "bucket", "exports/rows.gz", minio.PutObjectOptions{})

	name, ok := target.Name()
	assert.True(t, ok)
	assert.Equal(t, "exports/rows.gz", name)

	s, err := outchain.New(target).Compress().Stream()
	require.NoError(t, err)
	assert.Equal(t, []string{"target", "gzip"}, s.(*outchain.Chain).Layers())

	_, err = io.WriteString(s, "row 1\nrow 2\n")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data := putter.objects["bucket/exports/rows.gz"]
	require.NotEmpty(t, data)
	plain, err := outchain.DecompressBytes(data, outchain.AlgorithmGzip)
	require.NoError(t, err)
	assert.Equal(t, "row 1\nrow 2\n", string(plain))
	assert.Equal(t, int64(-1), putter.size)
	assert.Equal(t, "application/octet-stream", putter.opts.ContentType)
}

func TestMinioTargetKeepsContentType(t *testing.T) {
	putter := &fakePutter{}
	target := MinioTarget(context.Background(), putter, "b", "k.json", minio.PutObjectOptions{ContentType: "application/json"})

	require.NoError(t, outchain.New(target).Write(`{"ok":true}`))
	assert.Equal(t, "application/json", putter.opts.ContentType)
	assert.Equal(t, `{"ok":true}`, string(putter.objects["b/k.json"]))
}

func TestMinioTargetUploadError(t *testing.T) {
	putter := &fakePutter{err: errUpload}
	target := MinioTarget(context.Background(), putter, "bucket", "fail.zst", minio.PutObjectOptions{})

	err := outchain.New(target).Compress().WriteLines("a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUpload)
}

func TestMinioTargetCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := outchain.New(MinioTarget(ctx, &fakePutter{}, "b", "k", minio.PutObjectOptions{})).Stream()

	var chainErr *outchain.ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, "open", chainErr.Op)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBlobTarget(t *testing.T) {
	uploader := &fakeUploader{}
	target := BlobTarget(context.Background(), uploader, "container", "archive.br", nil)

	name, ok := target.Name()
	assert.True(t, ok)
	assert.Equal(t, "archive.br", name)

	enc, err := outchain.New(target).Compress().EncodeBase64().JSON()
	require.NoError(t, err)
	require.NoError(t, enc.Encode(map[string]string{"k": "v"}))
	require.NoError(t, enc.Close())

	encoded := uploader.blobs["container/archive.br"]
	require.NotEmpty(t, encoded)
	compressed, err := base64Decode(encoded)
	require.NoError(t, err)
	plain, err := outchain.DecompressBytes(compressed, outchain.AlgorithmBrotli)
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, string(plain))
}

func TestBlobTargetUploadError(t *testing.T) {
	uploader := &fakeUploader{err: errUpload}
	target := BlobTarget(context.Background(), uploader, "c", "b.txt", nil)

	err := outchain.New(target).Write("data")
	assert.ErrorIs(t, err, errUpload)
}

func TestPipeUploadPartialRead(t *testing.T) {
	var got bytes.Buffer
	u := startUpload(func(r io.Reader) error {
		_, err := io.CopyN(&got, r, 3)
		return err
	})

	_, err := u.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = u.Write([]byte("def"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	require.NoError(t, u.Close())
	require.NoError(t, u.Close())
	assert.Equal(t, "abc", got.String())
}

func base64Decode(src []byte) ([]byte, error) {
	dst := make([]byte, base64.StdEncoding.DecodedLen(len(src)))
	n, err := base64.StdEncoding.Decode(dst, src)
	return dst[:n], err
}
