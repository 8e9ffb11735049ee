package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/0x3st/quizit/internal/app"
	"github.com/0x3st/quizit/internal/config"
	"github.com/0x3st/quizit/internal/domain"
	"github.com/0x3st/quizit/internal/infra/blob"
	"github.com/0x3st/quizit/internal/infra/memory"
	"github.com/0x3st/quizit/internal/infra/postgres"
	redisinfra "github.com/0x3st/quizit/internal/infra/redis"
	"github.com/0x3st/quizit/internal/llm"
	transport "github.com/0x3st/quizit/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		materialStore app.MaterialStore
		quizStore     app.QuizStore
		attemptStore  app.AttemptStore
		statsStore    app.StatsStore
		quizLoader    redisinfra.QuizLoader
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		store := postgres.NewStore(db)
		materialStore, quizStore, attemptStore, statsStore = store, store, store, store

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		quizLoader = postgres.NewQuizLoader(pool)
	} else {
		store := memory.NewStore()
		materialStore, quizStore, attemptStore, statsStore = store, store, store, store
		quizLoader = storeLoader{store}
	}

	// READY-quiz cache in front of the loader for the attempt read path.
	cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var (
		quizReader  app.QuizReader
		invalidator app.QuizCacheInvalidator
	)
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache := redisinfra.NewQuizCache(client, quizLoader, cacheTTL)
		quizReader, invalidator = cache, cache
	} else {
		cache := memory.NewQuizCache(quizLoader, cacheTTL)
		quizReader, invalidator = cache, cache
	}

	uploadDir := cfg.Upload.Dir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	blobs, err := blob.NewFSStore(uploadDir)
	if err != nil {
		return err
	}

	completer := llm.New(cfg.LLM.Provider, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	generator := app.NewGenerator(quizStore, completer, app.GeneratorConfig{
		PromptVersion:   cfg.LLM.PromptVersion,
		MaxContentChars: config.IntOr(cfg.LLM.MaxContentChars, 60000),
		MaxAttempts:     config.IntOr(cfg.LLM.MaxAttempts, 3),
		BackoffBase:     config.Duration(cfg.LLM.BackoffBase, time.Second),
		CallTimeout:     config.Duration(cfg.LLM.Timeout, 2*time.Minute),
	})

	materials := app.NewMaterialService(materialStore, blobs, app.PlainTextExtractor{}, config.IntOr(cfg.Upload.MaxSizeMB, 25))
	quizzes := app.NewQuizService(quizStore, materialStore, generator, statsStore)
	quizzes.SetQuizCache(invalidator)
	attempts := app.NewAttemptService(attemptStore, quizReader)

	handler := transport.NewHandler(materials, quizzes, attempts)
	wsHandler := transport.NewWSHandler(quizzes)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", handler.Routes)
	r.Get("/ws/quizzes/{id}/status", wsHandler.ServeStatus)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// storeLoader adapts a store's GetQuiz to the cache loader interface.
type storeLoader struct {
	store app.QuizReader
}

func (l storeLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return l.store.GetQuiz(ctx, quizID)
}
