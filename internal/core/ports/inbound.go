package ports

import (
	"context"
	"io"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

// UploadInput is the inbound shape of one multipart upload.
type UploadInput struct {
	FileName   string
	FileSize   int64
	CategoryID int64
	Tags       []domain.Tag
	Content    io.ReadSeeker
}

// DocumentIngestor is the inbound contract for the upload and delete paths.
type DocumentIngestor interface {
	Upload(ctx context.Context, in UploadInput) (*domain.UploadReceipt, error)
	Delete(ctx context.Context, id string, typ domain.DocumentType) error
}

// DocumentRetriever answers natural-language queries against one document.
type DocumentRetriever interface {
	Search(ctx context.Context, input, documentID string) ([]string, error)
}

// CatalogReader is the inbound read model for listings and document info.
type CatalogReader interface {
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, paging domain.Paging) (*domain.RecordPage, error)
	ListCategories(ctx context.Context, paging domain.Paging) (*domain.RecordPage, error)
	ListTags(ctx context.Context, paging domain.Paging) (*domain.RecordPage, error)
}
