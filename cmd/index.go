package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragchat/internal/ingest"
	"ragchat/internal/logging"
	"ragchat/internal/progress"
)

var (
	indexProject string
	indexInclude []string
	indexExclude []string
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Index a directory of documents into the vector store",
	Long: `Walks a directory, chunks every readable text document and writes the
chunks into the persistent vector index so the chat endpoints can
retrieve them. Re-running on the same corpus overwrites in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Init(cfg.Log.File, cfg.Log.Debug || verbose); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer logging.Sync()

		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		ctx := context.Background()
		store, vectorDir, err := openVectorStore(ctx, cfg, embedder)
		if err != nil {
			return err
		}

		discovered, err := ingest.Walk(ingest.WalkConfig{
			RootDir: root,
			Include: indexInclude,
			Exclude: indexExclude,
		})
		if err != nil {
			return fmt.Errorf("discovering documents: %w", err)
		}
		if len(discovered) == 0 {
			fmt.Fprintf(os.Stderr, "No documents found under %s\n", root)
			return nil
		}

		sources := make([]ingest.Source, len(discovered))
		for i, f := range discovered {
			sources[i] = f.Source()
		}

		ingestor := ingest.New(store, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap, progress.NewReporter())
		chunks, err := ingestor.IngestFiles(ctx, indexProject, sources)
		if err != nil {
			return fmt.Errorf("indexing documents: %w", err)
		}

		if err := os.MkdirAll(vectorDir, 0755); err != nil {
			return fmt.Errorf("creating vector dir: %w", err)
		}
		if err := store.Persist(ctx, vectorDir); err != nil {
			return fmt.Errorf("persisting vector store: %w", err)
		}

		fmt.Printf("Indexed %d documents (%d chunks) into %s\n", len(discovered), chunks, vectorDir)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexProject, "project", "local", "Project id to index under")
	indexCmd.Flags().StringSliceVar(&indexInclude, "include", nil, "Glob patterns to include (default all text files)")
	indexCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "Glob patterns to exclude")
	rootCmd.AddCommand(indexCmd)
}
