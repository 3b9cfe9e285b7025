package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

func testClient(t *testing.T, baseURL, model string) Client {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", baseURL)
	t.Setenv("GEMINI_MODEL", model)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := NewClient(log)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func completion(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-1.5-flash:generateContent") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Contents[0].Parts[0].Text != "hello" {
			t.Fatalf("unexpected prompt %q", req.Contents[0].Parts[0].Text)
		}
		json.NewEncoder(w).Encode(completion("namaste"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, "gemini-1.5-flash")
	got, err := c.GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "namaste" {
		t.Fatalf("unexpected completion %q", got)
	}
}

func TestGenerateFallsBackToAvailableModel(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch {
		case strings.Contains(r.URL.Path, "gemini-9.9-gone:generateContent"):
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{
				"code": 404, "status": "NOT_FOUND", "message": "model not found",
			}})
		case strings.HasSuffix(r.URL.Path, "/v1beta/models"):
			json.NewEncoder(w).Encode(map[string]any{"models": []map[string]any{
				{"name": "models/embedding-001", "supportedGenerationMethods": []string{"embedContent"}},
				{"name": "models/gemini-9.9-pro", "supportedGenerationMethods": []string{"generateContent"}},
			}})
		case strings.Contains(r.URL.Path, "gemini-9.9-pro:generateContent"):
			json.NewEncoder(w).Encode(completion("from replacement"))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, "gemini-9.9-gone")
	got, err := c.GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "from replacement" {
		t.Fatalf("unexpected completion %q", got)
	}

	// The replacement sticks; no re-listing on the next call.
	listCalls := len(calls)
	if _, err := c.GenerateText(context.Background(), "again"); err != nil {
		t.Fatalf("second generate: %v", err)
	}
	for _, path := range calls[listCalls:] {
		if strings.HasSuffix(path, "/v1beta/models") {
			t.Fatal("model list should not be consulted again")
		}
	}
}

func TestGenerateEmptyCompletionIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, "gemini-1.5-flash")
	if _, err := c.GenerateText(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty completion")
	}
}

func TestListModelsFiltersByCapability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"models": []map[string]any{
			{"name": "models/embedding-001", "supportedGenerationMethods": []string{"embedContent"}},
			{"name": "models/gemini-1.5-pro", "supportedGenerationMethods": []string{"generateContent", "countTokens"}},
		}})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, "gemini-1.5-flash")
	names, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list models: %v", err)
	}
	if len(names) != 1 || names[0] != "gemini-1.5-pro" {
		t.Fatalf("unexpected models %v", names)
	}
}
