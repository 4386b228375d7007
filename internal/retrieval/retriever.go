// Package retrieval defines the retriever contract shared by the
// document index and the Wikipedia backend, plus citation resolution
// against a retrieval result.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoIndex reports that retrieval was attempted before any document
// index was loaded. Callers should not retry without first loading
// documents; it is a configuration problem, not a transient failure.
var ErrNoIndex = errors.New("no document index loaded")

// Chunk is one retrieved piece of text with its source attribution.
type Chunk struct {
	Content string
	Source  string // file name, or article title for Wikipedia
	Page    int    // 1-based page/chunk ordinal; 0 when not applicable
	URL     string // canonical article URL; empty for document chunks
}

// Result is a self-contained retrieval result. Citation ids are indices
// into Chunks and are only meaningful for this result: a new retrieval
// call produces a new Result and the old indices must not be reused
// against it.
type Result struct {
	Chunks []Chunk
}

// Retriever returns ranked relevant chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*Result, error)
}

// Format renders the result as the source-id-tagged context block fed
// to the answer prompt. Citation ids in model output refer to these
// Source ID tags.
func (r *Result) Format() string {
	if r == nil || len(r.Chunks) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Chunks))
	for i, c := range r.Chunks {
		parts = append(parts, fmt.Sprintf(
			"Source ID: %d\nContext source: %s\nContext page content: %s",
			i, c.Source, c.Content))
	}
	return "\n\n" + strings.Join(parts, "\n\n")
}
