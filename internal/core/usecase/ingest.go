package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rsnlabs/docbase/internal/core/domain"
	"github.com/rsnlabs/docbase/internal/core/ports"
)

// DefaultCategoryID is assigned when an upload names no category. The schema
// bootstrap guarantees the row exists.
const DefaultCategoryID int64 = 1

// IngestionOrchestrator drives the upload path: hash, dedup check, blob
// write, parse/split/embed, vector upsert, then the key-index and metadata
// writes. Parsing and embedding run to completion before any persistent
// store is touched, so a failure there leaves only the blob to clean up.
type IngestionOrchestrator struct {
	blobs     ports.BlobStore
	index     ports.KeyIndex
	meta      ports.MetadataStore
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectors   ports.VectorStore

	// devMode bypasses the dedup short-circuit for local iteration.
	devMode bool
}

func NewIngestionOrchestrator(
	blobs ports.BlobStore,
	index ports.KeyIndex,
	meta ports.MetadataStore,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectors ports.VectorStore,
	devMode bool,
) *IngestionOrchestrator {
	return &IngestionOrchestrator{
		blobs:     blobs,
		index:     index,
		meta:      meta,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectors:   vectors,
		devMode:   devMode,
	}
}

func (o *IngestionOrchestrator) Upload(ctx context.Context, in ports.UploadInput) (*domain.UploadReceipt, error) {
	if in.Content == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("no file content"))
	}

	typ := domain.TypeFromFilename(in.FileName)
	if typ == domain.TypeUnknown {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "upload", fmt.Errorf("unrecognized extension on %q", in.FileName))
	}

	hash, size, err := domain.Fingerprint(in.Content)
	if err != nil {
		return nil, fmt.Errorf("fingerprint upload: %w", err)
	}
	if _, err := in.Content.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload stream: %w", err)
	}

	// Dedup trusts blob existence as a proxy for "this content is fully
	// indexed"; relational and vector records are not re-validated here.
	if o.blobs.Exists(hash, typ) && !o.devMode {
		slog.Info("duplicate upload short-circuited", "hash", hash, "file", in.FileName)
		return &domain.UploadReceipt{
			Status:   domain.IngestDuplicate,
			FileHash: hash,
			FileName: in.FileName,
			FileSize: size,
		}, nil
	}

	path, err := o.blobs.WriteStream(ctx, hash, typ, in.Content)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	doc := &domain.Document{
		ID:         hash,
		FileName:   in.FileName,
		FilePath:   path,
		Type:       typ,
		CategoryID: in.CategoryID,
		Tags:       in.Tags,
	}
	if doc.CategoryID == 0 {
		doc.CategoryID = DefaultCategoryID
	}

	chunks, vectors, meta, err := o.parseAndEmbed(ctx, doc)
	if err != nil {
		o.cleanupBlob(ctx, path)
		return nil, err
	}
	if meta.ByteSize == 0 {
		meta.ByteSize = size
	}
	doc.Meta = meta

	if err := o.vectors.UpsertChunks(ctx, doc, chunks, vectors); err != nil {
		o.cleanupBlob(ctx, path)
		return nil, fmt.Errorf("index chunks in vector store: %w", err)
	}

	if err := o.dualWrite(ctx, doc); err != nil {
		return nil, err
	}

	return &domain.UploadReceipt{
		Status:     domain.IngestStored,
		FileHash:   hash,
		FileName:   in.FileName,
		FileSize:   size,
		Meta:       doc.Meta,
		ChunkCount: len(chunks),
	}, nil
}

// parseAndEmbed is the expensive, fallible stage. It produces the chunk set
// and its vectors, or fails before anything durable has been written besides
// the blob.
func (o *IngestionOrchestrator) parseAndEmbed(ctx context.Context, doc *domain.Document) ([]domain.Chunk, [][]float32, domain.DocumentMeta, error) {
	parsed, err := o.extractor.Extract(ctx, doc.FilePath, doc.Type)
	if err != nil {
		return nil, nil, domain.DocumentMeta{}, fmt.Errorf("extract document: %w", err)
	}

	texts := o.chunker.Split(parsed.Text)
	if len(texts) == 0 {
		return nil, nil, domain.DocumentMeta{}, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("splitting produced zero chunks"))
	}

	vectors, err := o.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, nil, domain.DocumentMeta{}, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, nil, domain.DocumentMeta{}, fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(texts))
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			Index: i,
			Text:  text,
			Meta: domain.ChunkMeta{
				FileName: doc.FileName,
				FileType: string(doc.Type),
			},
		})
	}
	return chunks, vectors, parsed.Meta, nil
}

// dualWrite issues the key-index and metadata writes concurrently and awaits
// both. A failure in either is reported after both finish, naming the writer
// that failed; a succeeded sibling is not unwound.
func (o *IngestionOrchestrator) dualWrite(ctx context.Context, doc *domain.Document) error {
	var wg sync.WaitGroup
	var indexErr, metaErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		indexErr = o.index.Put(doc.ID, doc.FilePath)
	}()
	go func() {
		defer wg.Done()
		_, metaErr = o.meta.SaveOrUpdate(ctx, domain.KindDocument, domain.OpUpsert, []domain.Record{
			{Kind: domain.KindDocument, Document: doc},
		})
	}()
	wg.Wait()

	if indexErr != nil {
		slog.Error("key index write failed", "hash", doc.ID, "error", indexErr)
	}
	if metaErr != nil {
		slog.Error("metadata write failed", "hash", doc.ID, "error", metaErr)
	}
	if indexErr != nil || metaErr != nil {
		return fmt.Errorf("record document %s: %w", doc.ID, errors.Join(indexErr, metaErr))
	}
	return nil
}

// Delete removes the metadata row and vector chunks, drops the key-index
// entry, then best-effort deletes the blob. A missing blob is logged, not a
// failure of the overall delete.
func (o *IngestionOrchestrator) Delete(ctx context.Context, id string, typ domain.DocumentType) error {
	if !domain.ValidFingerprint(id) {
		return domain.WrapError(domain.ErrInvalidInput, "delete", fmt.Errorf("malformed document id %q", id))
	}

	if _, err := o.meta.Remove(ctx, domain.KindDocument, domain.OpDeleteMany, []string{id}); err != nil {
		return fmt.Errorf("remove document metadata: %w", err)
	}
	if err := o.vectors.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("remove document chunks: %w", err)
	}
	if err := o.index.Delete(id, false); err != nil {
		return fmt.Errorf("remove key index entry: %w", err)
	}

	if err := o.blobs.Delete(ctx, o.blobs.PathFor(id, typ)); err != nil {
		slog.Warn("blob cleanup failed on delete", "hash", id, "error", err)
	}
	return nil
}

func (o *IngestionOrchestrator) cleanupBlob(ctx context.Context, path string) {
	if err := o.blobs.Delete(ctx, path); err != nil {
		slog.Warn("blob cleanup failed after ingestion error", "path", path, "error", err)
	}
}
