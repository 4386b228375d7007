package vectordb

import "context"

// Store defines the interface for storing and searching document chunks
// by embeddings.
type Store interface {
	// Add adds or updates documents in the store.
	Add(ctx context.Context, docs []Document) error

	// Search performs a semantic search using the query text,
	// returning at most k results ordered by similarity.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// DeleteByProject removes all documents belonging to the given project.
	DeleteByProject(ctx context.Context, projectID string) error

	// Reset drops every document in the store.
	Reset(ctx context.Context) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of documents in the store.
	Count() int
}
