package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/alpha_insight/internal/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("categories") != "news" || q.Get("q") != "央行 降准" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"query":"q","results":[
			{"title":"a","url":"https://a","content":"ca"},
			{"title":"b","url":"https://b","content":"cb"},
			{"title":"c","url":"https://c","content":"cc"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	resp, err := c.Search(context.Background(), &search.Request{Query: "央行 降准", Topic: "news", MaxResults: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Search() got %d results, want 2", len(resp.Results))
	}
	if resp.Results[1].URL != "https://b" {
		t.Errorf("Results[1] = %+v", resp.Results[1])
	}
}

func TestClient_SearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 5).Search(context.Background(), &search.Request{Query: "q"}); err == nil {
		t.Error("Search() expected error for 403")
	}
}
