package extractor

import (
	"context"
	"fmt"

	"github.com/rsnlabs/docbase/internal/core/domain"
	"github.com/rsnlabs/docbase/internal/core/ports"
)

// Registry dispatches text extraction on the document type derived from the
// file extension. Extraction is the failure-prone step of ingestion: it runs
// to completion before any persistent store is touched.
type Registry struct {
	blobs ports.BlobStore
}

func NewRegistry(blobs ports.BlobStore) *Registry {
	return &Registry{blobs: blobs}
}

func (r *Registry) Extract(ctx context.Context, path string, typ domain.DocumentType) (domain.ParsedDocument, error) {
	switch typ {
	case domain.TypeText, domain.TypeCSV:
		return r.extractPlaintext(ctx, path, false)
	case domain.TypeMarkdown:
		return r.extractPlaintext(ctx, path, true)
	case domain.TypePDF:
		return extractPDF(ctx, path)
	case domain.TypeXLSX:
		return extractXLSX(ctx, path)
	default:
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrUnsupportedFormat,
			"extract",
			fmt.Errorf("no parser for type %q", string(typ)),
		)
	}
}
