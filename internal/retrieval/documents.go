package retrieval

import (
	"context"
	"fmt"

	"ragchat/internal/vectordb"
)

// Documents retrieves chunks from the uploaded-document vector index.
type Documents struct {
	store vectordb.Store
	topK  int
}

// NewDocuments creates a document retriever returning at most topK chunks.
func NewDocuments(store vectordb.Store, topK int) *Documents {
	return &Documents{store: store, topK: topK}
}

func (d *Documents) Retrieve(ctx context.Context, query string) (*Result, error) {
	if d.store.Count() == 0 {
		return nil, ErrNoIndex
	}

	results, err := d.store.Search(ctx, query, d.topK)
	if err != nil {
		return nil, fmt.Errorf("document search: %w", err)
	}

	chunks := make([]Chunk, len(results))
	for i, r := range results {
		chunks[i] = Chunk{
			Content: r.Document.Content,
			Source:  r.Document.Metadata.Source,
			Page:    r.Document.Metadata.Page,
		}
	}
	return &Result{Chunks: chunks}, nil
}
