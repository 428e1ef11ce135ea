package ollama

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rsnlabs/docbase/internal/core/domain"
	"github.com/rsnlabs/docbase/internal/core/ports"
	"github.com/rsnlabs/docbase/internal/infrastructure/resilience"
)

type countingEmbedder struct {
	failures int
	calls    int
	err      error
}

var _ ports.Embedder = (*countingEmbedder)(nil)

func (c *countingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return [][]float32{{0.1}}, nil
}

func (c *countingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return []float32{0.1}, nil
}

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Policy{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1,
		RetryMaxBackoff:     1,
		RetryMultiplier:     1,
		BreakerEnabled:      false,
	})
}

func TestResilientEmbedderRetriesServerErrors(t *testing.T) {
	inner := &countingEmbedder{
		failures: 2,
		err:      &HTTPStatusError{Operation: "embed", StatusCode: http.StatusServiceUnavailable, Status: "503"},
	}
	embedder := NewResilientEmbedder(inner, testExecutor())

	vectors, err := embedder.Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("vectors = %v, want the eventual result", vectors)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 2 retries before success", inner.calls)
	}
}

func TestResilientEmbedderDoesNotRetryClientErrors(t *testing.T) {
	inner := &countingEmbedder{
		failures: 10,
		err:      &HTTPStatusError{Operation: "embed", StatusCode: http.StatusBadRequest, Status: "400"},
	}
	embedder := NewResilientEmbedder(inner, testExecutor())

	_, err := embedder.Embed(context.Background(), []string{"x"})
	if err == nil {
		t.Fatal("expected the client error back")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want no retries on 4xx", inner.calls)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Error("a client error must not be marked temporary")
	}
}

func TestResilientEmbedderMarksExhaustedRetriesTemporary(t *testing.T) {
	inner := &countingEmbedder{
		failures: 10,
		err:      &HTTPStatusError{Operation: "embed", StatusCode: http.StatusBadGateway, Status: "502"},
	}
	embedder := NewResilientEmbedder(inner, testExecutor())

	_, err := embedder.EmbedQuery(context.Background(), "question")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("err = %v, want temporary kind after exhausted retries", err)
	}
}

func TestClassifyEmbedErrorContextCancel(t *testing.T) {
	class := classifyEmbedError(context.Canceled)
	if class.Retryable || class.RecordFailure {
		t.Errorf("class = %+v, cancellation is neither retryable nor a backend failure", class)
	}
}

func TestClassifyEmbedErrorUnknown(t *testing.T) {
	class := classifyEmbedError(errors.New("decode failure"))
	if class.Retryable {
		t.Error("unknown errors must not be retried")
	}
	if !class.RecordFailure {
		t.Error("unknown errors still count against the breaker")
	}
}
