package documents

import (
	"context"

	"github.com/JaimeStill/courtfetch/pkg/storage"
)

// System defines document retrieval operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, prefix string) ([]Document, error)
	Info(ctx context.Context, key string) (*Document, error)
	Open(ctx context.Context, key string) (*storage.Blob, error)
	Store(ctx context.Context, cmd StoreCommand) (*Document, error)
	Delete(ctx context.Context, key string) error
}
