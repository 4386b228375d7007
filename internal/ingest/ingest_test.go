package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragchat/internal/vectordb"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 1000, 200)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("chunks = %q", chunks)
	}
}

func TestSplitTextEmpty(t *testing.T) {
	if got := SplitText("", 1000, 200); got != nil {
		t.Fatalf("chunks = %q, want nil", got)
	}
	if got := SplitText("   \n  ", 1000, 200); got != nil {
		t.Fatalf("whitespace chunks = %q, want nil", got)
	}
}

func TestSplitTextRespectsSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	chunks := SplitText(b.String(), 1000, 200)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 1000 {
			t.Errorf("chunk %d has %d chars", i, len(c))
		}
	}
}

func TestSplitTextOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	chunks := SplitText(b.String(), 1000, 200)

	// The tail of each chunk must reappear at the head of the next.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-40:]
		if !strings.Contains(chunks[i][:min(len(chunks[i]), 300)], strings.TrimSpace(tail)) {
			t.Errorf("chunk %d does not overlap with its predecessor", i)
		}
	}
}

func TestSplitTextPrefersParagraphBreaks(t *testing.T) {
	text := strings.Repeat("a", 700) + "\n\n" + strings.Repeat("b", 700)
	chunks := SplitText(text, 1000, 100)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if strings.Contains(chunks[0], "b") {
		t.Errorf("first chunk crosses the paragraph break: %q", chunks[0][650:])
	}
}

func TestLoadTextPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain content"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadText(path)
	if err != nil {
		t.Fatalf("LoadText() error = %v", err)
	}
	if got != "plain content" {
		t.Errorf("content = %q", got)
	}
}

func TestLoadTextMarkdown(t *testing.T) {
	md := "# Quarterly Report\n\nRevenue *grew* by **12%** this quarter.\n\n- item one\n- item two\n"
	path := filepath.Join(t.TempDir(), "report.md")
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadText(path)
	if err != nil {
		t.Fatalf("LoadText() error = %v", err)
	}
	for _, want := range []string{"Quarterly Report", "Revenue grew by 12% this quarter.", "item one"} {
		if !strings.Contains(got, want) {
			t.Errorf("content missing %q: %q", want, got)
		}
	}
	for _, marker := range []string{"#", "*"} {
		if strings.Contains(got, marker) {
			t.Errorf("markdown syntax %q leaked into %q", marker, got)
		}
	}
}

func TestLoadTextMissingFile(t *testing.T) {
	if _, err := LoadText(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// fakeStore records added documents.
type fakeStore struct {
	docs []vectordb.Document
}

func (f *fakeStore) Add(ctx context.Context, docs []vectordb.Document) error {
	f.docs = append(f.docs, docs...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, query string, k int) ([]vectordb.SearchResult, error) {
	return nil, nil
}
func (f *fakeStore) DeleteByProject(ctx context.Context, projectID string) error { return nil }
func (f *fakeStore) Reset(ctx context.Context) error                             { return nil }
func (f *fakeStore) Persist(ctx context.Context, dir string) error               { return nil }
func (f *fakeStore) Load(ctx context.Context, dir string) error                  { return nil }
func (f *fakeStore) Count() int                                                  { return len(f.docs) }

func TestIngestFiles(t *testing.T) {
	dir := t.TempDir()
	var long strings.Builder
	for i := 0; i < 100; i++ {
		long.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	if err := os.WriteFile(filepath.Join(dir, "long.txt"), []byte(long.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "short.txt"), []byte("one fact"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{}
	ing := New(store, 1000, 200, nil)

	n, err := ing.IngestFiles(context.Background(), "proj1", []Source{
		{ID: "f1", Name: "long.txt", Path: filepath.Join(dir, "long.txt")},
		{ID: "f2", Name: "short.txt", Path: filepath.Join(dir, "short.txt")},
	})
	if err != nil {
		t.Fatalf("IngestFiles() error = %v", err)
	}
	if n != len(store.docs) {
		t.Errorf("returned %d, store has %d", n, len(store.docs))
	}
	if n < 3 {
		t.Fatalf("got %d chunks, want several", n)
	}

	first := store.docs[0]
	if first.ID != "f1:0" {
		t.Errorf("first chunk id = %q", first.ID)
	}
	if first.Metadata.Source != "long.txt" || first.Metadata.Page != 1 {
		t.Errorf("first chunk metadata = %+v", first.Metadata)
	}
	if first.Metadata.ProjectID != "proj1" {
		t.Errorf("project id = %q", first.Metadata.ProjectID)
	}

	last := store.docs[len(store.docs)-1]
	if last.Metadata.Source != "short.txt" {
		t.Errorf("last chunk source = %q", last.Metadata.Source)
	}
}

func TestIngestFilesMissingSource(t *testing.T) {
	store := &fakeStore{}
	ing := New(store, 1000, 200, nil)

	_, err := ing.IngestFiles(context.Background(), "proj1", []Source{
		{ID: "f1", Name: "ghost.txt", Path: filepath.Join(t.TempDir(), "ghost.txt")},
	})
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
}
