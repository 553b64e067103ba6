package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEmbedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Decoding request failed: %v", err)
		}
		if req.Input != "hello" {
			t.Errorf("Expected input 'hello', got %q", req.Input)
		}
		json.NewEncoder(w).Encode(embedResponse{
			Model:      req.Model,
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})
	vec, err := p.EmbedText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedText failed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("Unexpected embedding: %v", vec)
	}
}

func TestEmbedTextServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorResponse{Error: "model not found"})
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})
	if _, err := p.EmbedText(context.Background(), "hello"); err == nil {
		t.Fatal("Expected error from failing server")
	}
}

func TestEmbedTextEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})
	if _, err := p.EmbedText(context.Background(), "hello"); err == nil {
		t.Fatal("Expected error for empty embeddings")
	}
}

func TestEmbedTextContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.EmbedText(ctx, "hello"); err == nil {
		t.Fatal("Expected context deadline error")
	}
}

func TestDefaults(t *testing.T) {
	p := New(Config{})
	if p.baseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", p.baseURL)
	}
	if p.model != DefaultModel {
		t.Errorf("Expected default model, got %s", p.model)
	}
}
