package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/courtfetch/pkg/formatting"
	"github.com/JaimeStill/courtfetch/pkg/storage"
)

const pdfContentType = "application/pdf"

type repo struct {
	storage    storage.System
	logger     *slog.Logger
	maxInspect int64
}

// New creates a document System over store. A nil store yields a System
// whose operations fail with storage.ErrDisabled. maxInspect bounds how many
// bytes Info reads to count PDF pages.
func New(store storage.System, logger *slog.Logger, maxInspect int64) System {
	return &repo{
		storage:    store,
		logger:     logger.With("system", "documents"),
		maxInspect: maxInspect,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) List(ctx context.Context, prefix string) ([]Document, error) {
	if r.storage == nil {
		return nil, storage.ErrDisabled
	}

	items, err := r.storage.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, len(items))
	for i, p := range items {
		docs[i] = Document{Properties: p, Filename: path.Base(p.Key)}
	}
	return docs, nil
}

func (r *repo) Info(ctx context.Context, key string) (*Document, error) {
	if r.storage == nil {
		return nil, storage.ErrDisabled
	}

	props, err := r.storage.Properties(ctx, key)
	if err != nil {
		return nil, err
	}

	doc := &Document{Properties: *props, Filename: path.Base(key)}
	if props.ContentType != pdfContentType {
		return doc, nil
	}
	if props.ContentLength > r.maxInspect {
		r.logger.Info("skipping page count for large document",
			"key", key,
			"size", formatting.FormatBytes(props.ContentLength, 1),
			"limit", formatting.FormatBytes(r.maxInspect, 1),
		)
		return doc, nil
	}

	blob, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(io.LimitReader(blob.Body, r.maxInspect))
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", key, err)
	}
	doc.PageCount = pageCount(r.logger, data)
	return doc, nil
}

func (r *repo) Open(ctx context.Context, key string) (*storage.Blob, error) {
	if r.storage == nil {
		return nil, storage.ErrDisabled
	}
	return r.storage.Download(ctx, key)
}

func (r *repo) Store(ctx context.Context, cmd StoreCommand) (*Document, error) {
	if r.storage == nil {
		return nil, storage.ErrDisabled
	}
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidFile)
	}

	if err := r.storage.Upload(ctx, cmd.Key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, err
	}

	doc := &Document{
		Properties: storage.Properties{
			Key:           cmd.Key,
			ContentType:   cmd.ContentType,
			ContentLength: int64(len(cmd.Data)),
		},
		Filename: path.Base(cmd.Key),
	}
	if cmd.ContentType == pdfContentType {
		doc.PageCount = pageCount(r.logger, cmd.Data)
	}

	r.logger.Info("document stored", "key", cmd.Key, "size", formatting.FormatBytes(doc.ContentLength, 1))
	return doc, nil
}

func (r *repo) Delete(ctx context.Context, key string) error {
	if r.storage == nil {
		return storage.ErrDisabled
	}
	return r.storage.Delete(ctx, key)
}

func pageCount(logger *slog.Logger, data []byte) *int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
