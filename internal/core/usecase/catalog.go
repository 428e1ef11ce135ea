package usecase

import (
	"context"
	"fmt"

	"github.com/rsnlabs/docbase/internal/core/domain"
	"github.com/rsnlabs/docbase/internal/core/ports"
)

// CatalogService is the read model over the metadata store: single-document
// info plus paginated listings.
type CatalogService struct {
	meta ports.MetadataStore
}

func NewCatalogService(meta ports.MetadataStore) *CatalogService {
	return &CatalogService{meta: meta}
}

func (s *CatalogService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if !domain.ValidFingerprint(id) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", fmt.Errorf("malformed document id %q", id))
	}

	result, err := s.meta.Find(ctx, domain.KindDocument, domain.OpFindUnique, domain.FindQuery{ID: id})
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if result == nil || result.Record == nil || result.Record.Document == nil {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
	}
	return result.Record.Document, nil
}

func (s *CatalogService) ListDocuments(ctx context.Context, paging domain.Paging) (*domain.RecordPage, error) {
	return s.list(ctx, domain.KindDocument, paging)
}

func (s *CatalogService) ListCategories(ctx context.Context, paging domain.Paging) (*domain.RecordPage, error) {
	return s.list(ctx, domain.KindCategory, paging)
}

func (s *CatalogService) ListTags(ctx context.Context, paging domain.Paging) (*domain.RecordPage, error) {
	return s.list(ctx, domain.KindTag, paging)
}

// An empty table surfaces as an empty page, not an error.
func (s *CatalogService) list(ctx context.Context, kind domain.EntityKind, paging domain.Paging) (*domain.RecordPage, error) {
	result, err := s.meta.Find(ctx, kind, domain.OpFindMany, domain.FindQuery{Paging: paging})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", string(kind), err)
	}
	if result == nil || result.List == nil {
		return &domain.RecordPage{List: []domain.Record{}}, nil
	}
	return &domain.RecordPage{List: result.List, Total: result.Total}, nil
}
