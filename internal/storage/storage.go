package storage

import (
	"context"
	"errors"
)

var ErrNotOwned = errors.New("url does not belong to this storage")

// ImageStorage persists uploaded recipe images and returns their public URL
type ImageStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
