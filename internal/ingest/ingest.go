package ingest

import (
	"context"
	"fmt"
	"time"

	"ragchat/internal/progress"
	"ragchat/internal/vectordb"
)

// Ingestor chunks documents and writes them to a vector store.
type Ingestor struct {
	store    vectordb.Store
	size     int
	overlap  int
	reporter progress.Reporter
}

// New creates an ingestor producing chunks of at most size characters
// with the given overlap.
func New(store vectordb.Store, size, overlap int, reporter progress.Reporter) *Ingestor {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	return &Ingestor{store: store, size: size, overlap: overlap, reporter: reporter}
}

// Source is one document to ingest.
type Source struct {
	ID   string // stable id, used to derive chunk ids
	Name string // display name recorded as the chunk source
	Path string // location on disk
}

// IngestFiles loads, chunks and indexes the given documents under one
// project. It returns the number of chunks written.
func (ing *Ingestor) IngestFiles(ctx context.Context, projectID string, sources []Source) (int, error) {
	ing.reporter.Start(len(sources))
	defer ing.reporter.Finish()

	now := time.Now()
	total := 0
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		ing.reporter.Update(i, src.Name)

		content, err := LoadText(src.Path)
		if err != nil {
			return total, fmt.Errorf("loading %s: %w", src.Name, err)
		}

		chunks := SplitText(content, ing.size, ing.overlap)
		docs := make([]vectordb.Document, 0, len(chunks))
		for n, chunk := range chunks {
			docs = append(docs, vectordb.Document{
				ID:      fmt.Sprintf("%s:%d", src.ID, n),
				Content: chunk,
				Metadata: vectordb.DocumentMetadata{
					Source:    src.Name,
					Page:      n + 1,
					ProjectID: projectID,
					IndexedAt: now,
				},
			})
		}
		if len(docs) == 0 {
			continue
		}
		if err := ing.store.Add(ctx, docs); err != nil {
			return total, fmt.Errorf("indexing %s: %w", src.Name, err)
		}
		total += len(docs)
		ing.reporter.Update(i+1, src.Name)
	}
	return total, nil
}
