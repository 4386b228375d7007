package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("list") {
		case "search":
			fmt.Fprint(w, `{"query":{"search":[
				{"title":"Go (programming language)","pageid":101},
				{"title":"Golang runtime","pageid":102}
			]}}`)
		default:
			if q.Get("pageids") != "101|102" {
				t.Errorf("pageids = %q, want 101|102", q.Get("pageids"))
			}
			fmt.Fprint(w, `{"query":{"pages":{
				"102":{"pageid":102,"title":"Golang runtime","extract":"The runtime schedules goroutines.","fullurl":"https://en.wikipedia.org/wiki/Golang_runtime"},
				"101":{"pageid":101,"title":"Go (programming language)","extract":"Go is a statically typed language.","fullurl":"https://en.wikipedia.org/wiki/Go_(programming_language)"}
			}}}`)
		}
	}))
}

func TestRetrieve(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, 3, 4000)
	result, err := c.Retrieve(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(result.Chunks))
	}
	// Results must follow search-ranking order, not the pages map order.
	if result.Chunks[0].Source != "Go (programming language)" {
		t.Errorf("first chunk source = %q", result.Chunks[0].Source)
	}
	if result.Chunks[1].URL != "https://en.wikipedia.org/wiki/Golang_runtime" {
		t.Errorf("second chunk url = %q", result.Chunks[1].URL)
	}
	if !strings.Contains(result.Chunks[0].Content, "statically typed") {
		t.Errorf("first chunk content = %q", result.Chunks[0].Content)
	}
}

func TestRetrieveTruncatesExtracts(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, 3, 10)
	result, err := c.Retrieve(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	for i, ch := range result.Chunks {
		if len(ch.Content) > 10 {
			t.Errorf("chunk %d not truncated: %d chars", i, len(ch.Content))
		}
	}
}

func TestRetrieveNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"search":[]}}`)
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, 3, 4000)
	result, err := c.Retrieve(context.Background(), "zzzz")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(result.Chunks))
	}
}

func TestRetrieveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, 3, 4000)
	if _, err := c.Retrieve(context.Background(), "golang"); err == nil {
		t.Fatal("expected error on server failure")
	}
}
