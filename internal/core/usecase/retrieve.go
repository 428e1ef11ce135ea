package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rsnlabs/docbase/internal/core/domain"
	"github.com/rsnlabs/docbase/internal/core/ports"
)

// NoMatchMessage is the single-element answer returned when every candidate
// scores at or below the relevance threshold.
const NoMatchMessage = "Sorry, I could not find relevant content for your question."

// RetrievalService answers a natural-language question against one document:
// embed the query, run a scoped similarity search, keep candidates above the
// score threshold in engine rank order.
type RetrievalService struct {
	embedder  ports.Embedder
	vectors   ports.VectorStore
	topK      int
	threshold float64
}

func NewRetrievalService(embedder ports.Embedder, vectors ports.VectorStore, topK int, threshold float64) *RetrievalService {
	return &RetrievalService{
		embedder:  embedder,
		vectors:   vectors,
		topK:      topK,
		threshold: threshold,
	}
}

func (s *RetrievalService) Search(ctx context.Context, input, documentID string) ([]string, error) {
	if input == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("empty query"))
	}
	if !domain.ValidFingerprint(documentID) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("malformed document id %q", documentID))
	}

	vector, err := s.embedder.EmbedQuery(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.vectors.Search(ctx, vector, documentID, s.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	texts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > s.threshold {
			texts = append(texts, c.Text)
		}
	}
	if len(texts) == 0 {
		slog.Warn("no candidate cleared the score threshold",
			"document_id", documentID,
			"threshold", s.threshold,
			"scores", scoresOf(candidates),
		)
		return []string{NoMatchMessage}, nil
	}
	return texts, nil
}

func scoresOf(candidates []domain.ScoredChunk) []float64 {
	scores := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		scores = append(scores, c.Score)
	}
	return scores
}
