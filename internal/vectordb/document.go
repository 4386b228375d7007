package vectordb

import "time"

// Document represents one chunk of an uploaded document, stored and
// searched by embedding.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds structured information about a chunk.
type DocumentMetadata struct {
	Source    string // original file name
	Page      int    // 1-based chunk ordinal within the source file
	ProjectID string // owning project, empty for CLI-ingested documents
	IndexedAt time.Time
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}
