package targets

import (
	"context"
	"io"

	"github.com/absfs/outchain"
	"github.com/minio/minio-go/v7"
)

// ObjectPutter is the part of *minio.Client a MinioTarget needs
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type minioTarget struct {
	ctx    context.Context
	client ObjectPutter
	bucket string
	key    string
	opts   minio.PutObjectOptions
}

// MinioTarget streams into bucket/key with an unknown-size PutObject. The
// target's name is key, so its extension selects the compressor.
func MinioTarget(ctx context.Context, client ObjectPutter, bucket, key string, opts minio.PutObjectOptions) outchain.Target {
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}
	return &minioTarget{ctx: ctx, client: client, bucket: bucket, key: key, opts: opts}
}

func (t *minioTarget) OpenStream() (io.WriteCloser, error) {
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}
	return startUpload(func(r io.Reader) error {
		_, err := t.client.PutObject(t.ctx, t.bucket, t.key, r, -1, t.opts)
		return err
	}), nil
}

func (t *minioTarget) Name() (string, bool) {
	return t.key, true
}
