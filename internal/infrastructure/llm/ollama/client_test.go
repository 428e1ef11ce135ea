package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedSendsModelAndInput(t *testing.T) {
	var captured struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q, want /api/embed", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-embed", 100, 10)
	vectors, err := client.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	if captured.Model != "test-embed" {
		t.Errorf("model = %q, want test-embed", captured.Model)
	}
	if len(captured.Input) != 2 {
		t.Errorf("input = %v, want both texts", captured.Input)
	}
	if len(vectors) != 2 || len(vectors[0]) != 2 {
		t.Fatalf("vectors = %v, want 2x2", vectors)
	}
}

func TestEmbedRejectsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1}},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-embed", 100, 10)
	_, err := client.Embed(context.Background(), []string{"one", "two"})
	if err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestEmbedEmptyInputSkipsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for empty input")
	}))
	defer server.Close()

	client := New(server.URL, "test-embed", 100, 10)
	vectors, err := client.Embed(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("got (%v, %v), want clean no-op", vectors, err)
	}
}

func TestEmbedSurfacesHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "missing-model", 100, 10)
	_, err := client.Embed(context.Background(), []string{"text"})

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", statusErr.StatusCode)
	}
}

func TestEmbedQueryReturnsFirstVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.7, 0.8, 0.9}},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-embed", 100, 10)
	vector, err := client.EmbedQuery(context.Background(), "question")
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}
	if len(vector) != 3 || vector[0] != 0.7 {
		t.Errorf("vector = %v, want the single embedding", vector)
	}
}
