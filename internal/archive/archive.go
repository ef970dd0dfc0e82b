// Package archive exports converted artifacts to a storage provider.
package archive

import (
	"bytes"
	"context"
	"path"
	"strings"

	"convertd/internal/conversion"
	"convertd/internal/ports"
)

// KeyPrefix is the folder every archived artifact lives under.
const KeyPrefix = "conversions"

// Archiver implements conversion.Archiver on a ports.StorageProvider.
type Archiver struct {
	sp ports.StorageProvider
}

func New(sp ports.StorageProvider) *Archiver {
	return &Archiver{sp: sp}
}

// ObjectKey is "conversions/<id>/<name>", where name is the last path
// element of the artifact's display name.
func ObjectKey(conversionID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = "artifact"
	}
	return path.Join(KeyPrefix, conversionID, name)
}

// Archive stores a and returns the provider's key for it.
func (a *Archiver) Archive(ctx context.Context, conversionID string, art *conversion.Artifact) (string, error) {
	out, err := a.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   ObjectKey(conversionID, art.Filename),
		ContentType: art.ContentType,
		Reader:      bytes.NewReader(art.Data),
		Size:        int64(len(art.Data)),
	})
	if err != nil {
		return "", err
	}
	return out.ObjectKey, nil
}
