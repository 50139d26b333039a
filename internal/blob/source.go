// Package blob serves immutable image payloads through a long-TTL cache.
package blob

import (
	"context"

	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/store"
)

// Image is the blob projection: content type and raw bytes, nothing else.
type Image struct {
	Mime string `msgpack:"mime"`
	Data []byte `msgpack:"data"`
}

// Source fetches the authoritative image payload on a cache miss. A
// missing image yields common.ErrNotFound.
type Source interface {
	Fetch(ctx context.Context, imageID int64) (*Image, error)
}

// StoreSource reads image bytes from the relational store through the
// minimal projection, never the full post row.
type StoreSource struct {
	manager store.Manager
}

func NewStoreSource(manager store.Manager) *StoreSource {
	return &StoreSource{manager: manager}
}

func (s *StoreSource) Fetch(ctx context.Context, imageID int64) (*Image, error) {
	var img *Image
	err := s.manager.WithConn(ctx, func(ctx context.Context, db dbx.DBTX) error {
		mime, data, err := s.manager.Posts(db).GetImage(ctx, imageID)
		if err != nil {
			return err
		}
		img = &Image{Mime: mime, Data: data}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}
