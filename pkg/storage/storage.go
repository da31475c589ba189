// Package storage provides blob storage for case documents, backed by Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
)

// Properties describes a stored blob.
type Properties struct {
	Key           string    `json:"key"`
	ContentType   string    `json:"content_type"`
	ContentLength int64     `json:"content_length"`
	LastModified  time.Time `json:"last_modified"`
}

// Blob is a downloaded blob stream. The caller must close Body.
type Blob struct {
	Properties
	Body io.ReadCloser
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that ensures the container exists.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to key with the given content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download opens the blob at key. Returns ErrNotFound if it does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Properties returns metadata for key without reading its content.
	Properties(ctx context.Context, key string) (*Properties, error)
	// List returns up to the configured maximum blobs whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]Properties, error)
	// Delete removes the blob at key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
}

type azure struct {
	client    *azblob.Client
	container string
	maxList   int32
	logger    *slog.Logger
}

// New creates an Azure-backed storage system. The container is created at startup.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		maxList:   cfg.MaxListSize,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup("storage", func(ctx context.Context) error {
		_, err := a.client.CreateContainer(ctx, a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container initialization failed", "error", err)
			return fmt.Errorf("create container %s: %w", a.container, err)
		}

		a.logger.Info("storage container ready", "container", a.container)
		return nil
	})

	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, reader, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func (a *azure) Download(ctx context.Context, key string) (*Blob, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		return nil, a.mapErr("download", key, err)
	}

	return &Blob{
		Properties: Properties{
			Key:           key,
			ContentType:   deref(resp.ContentType),
			ContentLength: deref(resp.ContentLength),
			LastModified:  deref(resp.LastModified),
		},
		Body: resp.Body,
	}, nil
}

func (a *azure) Properties(ctx context.Context, key string) (*Properties, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key).
		GetProperties(ctx, nil)
	if err != nil {
		return nil, a.mapErr("get properties", key, err)
	}

	return &Properties{
		Key:           key,
		ContentType:   deref(resp.ContentType),
		ContentLength: deref(resp.ContentLength),
		LastModified:  deref(resp.LastModified),
	}, nil
}

func (a *azure) List(ctx context.Context, prefix string) ([]Properties, error) {
	if strings.Contains(prefix, "..") {
		return nil, ErrInvalidKey
	}

	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: &a.maxList,
	})

	items := make([]Properties, 0)
	for pager.More() && int32(len(items)) < a.maxList {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %q: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			p := Properties{Key: deref(item.Name)}
			if item.Properties != nil {
				p.ContentType = deref(item.Properties.ContentType)
				p.ContentLength = deref(item.Properties.ContentLength)
				p.LastModified = deref(item.Properties.LastModified)
			}
			items = append(items, p)
		}
	}

	if int32(len(items)) > a.maxList {
		items = items[:a.maxList]
	}
	return items, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		return a.mapErr("delete", key, err)
	}
	return nil
}

func (a *azure) mapErr(op, key string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s blob %s: %w", op, key, err)
}

// ValidateKey rejects empty keys and keys containing path traversal segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
