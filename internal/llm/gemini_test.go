package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGeminiGenerator_Generate(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "今日研判"}]},
    "groundingMetadata": {"groundingChunks": [
      {"web": {"uri": "https://finance.example/a", "title": "A"}},
      {}
    ]}
  }]
}`))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), "key", srv.URL, "gemini-2.5-flash", 5*time.Second)
	if err != nil {
		t.Fatalf("NewGeminiGenerator() error = %v", err)
	}

	resp, err := g.Generate(context.Background(), &Request{Prompt: "分析 A 股", EnableSearch: true})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "今日研判" {
		t.Errorf("Text = %q", resp.Text)
	}
	if len(resp.Sources) != 2 || resp.Sources[0].URI != "https://finance.example/a" || resp.Sources[1].URI != "" {
		t.Errorf("Sources = %+v", resp.Sources)
	}
	if !strings.Contains(body, "googleSearch") {
		t.Errorf("request body missing googleSearch tool: %s", body)
	}
}

func TestGeminiGenerator_GenerateWithoutSearch(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), "key", srv.URL, "gemini-2.5-flash", 5*time.Second)
	if err != nil {
		t.Fatalf("NewGeminiGenerator() error = %v", err)
	}
	resp, err := g.Generate(context.Background(), &Request{Prompt: "诊断持仓"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Contains(body, "googleSearch") {
		t.Errorf("request body should not carry googleSearch: %s", body)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("Sources = %+v, want none", resp.Sources)
	}
}

func TestGeminiGenerator_GenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), "bad", srv.URL, "gemini-2.5-flash", 5*time.Second)
	if err != nil {
		t.Fatalf("NewGeminiGenerator() error = %v", err)
	}
	if _, err := g.Generate(context.Background(), &Request{Prompt: "x"}); err == nil {
		t.Error("Generate() expected error for 403")
	}
}
