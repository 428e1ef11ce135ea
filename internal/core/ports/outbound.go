package ports

import (
	"context"
	"io"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

// BlobStore is durable, content-addressed byte storage. Blob locations are
// deterministic: the same (hash, type) pair always yields the same path.
type BlobStore interface {
	PathFor(hash string, typ domain.DocumentType) string
	Exists(hash string, typ domain.DocumentType) bool
	WriteStream(ctx context.Context, hash string, typ domain.DocumentType, src io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// KeyIndex is a small persistent map from content hash to blob location.
// Implementations open and close the underlying store per call; a missing key
// is reported via found=false, not an error.
type KeyIndex interface {
	Has(key string) (bool, error)
	Get(key string) (value string, found bool, err error)
	Put(key string, value any) error
	Delete(key string, all bool) error
}

// TextExtractor parses a stored blob into plain text plus metadata.
type TextExtractor interface {
	Extract(ctx context.Context, path string, typ domain.DocumentType) (domain.ParsedDocument, error)
}

// Chunker splits extracted text into retrieval-sized chunks.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunk batches and query text. Ingestion and
// query must share one implementation; vectors from different backends are
// not comparable.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes chunk embeddings and answers similarity queries scoped
// to one source document.
type VectorStore interface {
	UpsertChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, documentID string, limit int) ([]domain.ScoredChunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// MetadataStore is generic relational access keyed by entity kind and
// operation. Every call validates the kind before touching storage.
type MetadataStore interface {
	Find(ctx context.Context, kind domain.EntityKind, op domain.MetaOp, q domain.FindQuery) (*domain.FindResult, error)
	SaveOrUpdate(ctx context.Context, kind domain.EntityKind, op domain.MetaOp, records []domain.Record) (*domain.Record, error)
	Remove(ctx context.Context, kind domain.EntityKind, op domain.MetaOp, ids []string) (bool, error)
	Count(ctx context.Context, kind domain.EntityKind) (int64, error)
}
