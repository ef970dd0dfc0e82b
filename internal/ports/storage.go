package ports

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is wrapped by GetObject when the key has no object.
var ErrObjectNotFound = errors.New("object not found")

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// ObjectKey is what GetObject expects back. localfs returns the input key,
	// gdrive returns the Drive file id.
	ObjectKey string
	Size      int64
}

// StorageProvider is where converted artifacts are archived (localfs, gdrive).
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
}
