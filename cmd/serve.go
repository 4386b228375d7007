package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ragchat/internal/auth"
	"ragchat/internal/chat"
	"ragchat/internal/db"
	"ragchat/internal/files"
	"ragchat/internal/ingest"
	"ragchat/internal/logging"
	"ragchat/internal/projects"
	"ragchat/internal/retrieval"
	"ragchat/internal/server"
	"ragchat/internal/wikipedia"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ragchat API server",
	Long:  `Starts the ragchat backend: REST API with user accounts, document uploads, project indexes and the chat endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required (set RAGCHAT_AUTH__JWT_SECRET)")
		}

		if err := logging.Init(cfg.Log.File, cfg.Log.Debug || verbose); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer logging.Sync()

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}

		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		ctx := context.Background()
		store, vectorDir, err := openVectorStore(ctx, cfg, embedder)
		if err != nil {
			return err
		}

		answerProvider, err := buildProvider(cfg, cfg.LLM.Model)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
		condenserModel := cfg.LLM.CondenserModel
		if condenserModel == "" {
			condenserModel = cfg.LLM.Model
		}
		condenserProvider, err := buildProvider(cfg, condenserModel)
		if err != nil {
			return fmt.Errorf("creating condenser provider: %w", err)
		}

		dbPath := filepath.Join(cfg.DataDir, "ragchat.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		sessions := chat.NewStore(cfg.Chat.HistoryLimit, time.Duration(cfg.Chat.SessionTTLMinutes)*time.Minute)
		users := auth.NewStore(database)
		tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMins)*time.Minute)

		fileStore, err := files.NewStore(database, filepath.Join(cfg.DataDir, "uploads"))
		if err != nil {
			return fmt.Errorf("creating file store: %w", err)
		}

		ingestor := ingest.New(store, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap, nil)
		projectService := projects.NewService(projects.NewStore(database), fileStore, sessions, ingestor, store)

		temperature := float32(cfg.LLM.Temperature)
		responder := &chat.Responder{
			Store:       sessions,
			Condenser:   chat.NewCondenser(condenserProvider, condenserModel, temperature),
			Provider:    answerProvider,
			Model:       cfg.LLM.Model,
			Temperature: temperature,
			Documents:   retrieval.NewDocuments(store, cfg.Retrieval.TopK),
			Wikipedia:   wikipedia.New(cfg.Retrieval.WikipediaTopK, cfg.Retrieval.WikipediaMaxLen),
		}

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAll,
		}, server.Deps{
			Database:  database,
			Responder: responder,
			Users:     users,
			Tokens:    tokens,
			Files:     fileStore,
			Projects:  projectService,
		})

		// Graceful shutdown: persist the vector index before exiting.
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-sigCtx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := store.Persist(shutdownCtx, vectorDir); err != nil {
				logging.Errorf("persisting vector store: %v", err)
			}
			srv.Shutdown(shutdownCtx)
		}()

		logging.Infow("ragchat starting",
			"version", Version,
			"port", cfg.Server.Port,
			"database", dbPath,
			"chat", responder.Describe(),
			"documents_indexed", store.Count(),
		)
		fmt.Fprintf(os.Stderr, "ragchat v%s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Chat: %s\n", responder.Describe())
		fmt.Fprintf(os.Stderr, "  Documents indexed: %d\n", store.Count())

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
