package targets

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/absfs/outchain"
)

// StreamUploader is the part of *azblob.Client a BlobTarget needs
type StreamUploader interface {
	UploadStream(ctx context.Context, containerName string, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
}

type blobTarget struct {
	ctx       context.Context
	client    StreamUploader
	container string
	blob      string
	opts      *azblob.UploadStreamOptions
}

// BlobTarget streams into container/blob as a block blob. opts may be nil.
// The target's name is blob.
func BlobTarget(ctx context.Context, client StreamUploader, container, blob string, opts *azblob.UploadStreamOptions) outchain.Target {
	return &blobTarget{ctx: ctx, client: client, container: container, blob: blob, opts: opts}
}

func (t *blobTarget) OpenStream() (io.WriteCloser, error) {
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}
	return startUpload(func(r io.Reader) error {
		_, err := t.client.UploadStream(t.ctx, t.container, t.blob, r, t.opts)
		return err
	}), nil
}

func (t *blobTarget) Name() (string, bool) {
	return t.blob, true
}
