package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"redline/pkg/inference"
	"redline/pkg/review"
	"redline/pkg/server"
	"redline/pkg/store"
	"redline/pkg/version"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	openAI := inference.NewOpenAIInferencer(apiKey, model)
	if apiKey == "" {
		openAI.ChangeBaseURL("http://localhost:1234/v1")
		openAI.SetModel("")
	}
	var inf inference.Inferencer = openAI
	provider := "openai"

	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		gem, err := inference.NewGeminiInferencer(geminiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		inf = gem
		provider = "gemini"
	}

	dataDir := os.Getenv("REDLINE_DATA")
	if dataDir == "" {
		dataDir = "data"
	}

	chapters, err := store.LoadChapters(filepath.Join(dataDir, "chapters"))
	if err != nil {
		log.Fatalf("Failed to load chapter manifest: %v", err)
	}
	reviews := store.NewReviews(filepath.Join(dataDir, "reviews"))

	var versions version.Repository
	switch os.Getenv("REDLINE_VERSIONS") {
	case "sqlite":
		dbPath := os.Getenv("REDLINE_DB")
		if dbPath == "" {
			dbPath = filepath.Join(dataDir, "versions.db")
		}
		repo, err := version.NewSQLiteRepository(dbPath)
		if err != nil {
			log.Fatalf("Failed to open version database: %v", err)
		}
		defer repo.Close()
		versions = repo
	default:
		repo, err := version.NewFileRepository(filepath.Join(dataDir, "versions"))
		if err != nil {
			log.Fatalf("Failed to create version directory: %v", err)
		}
		versions = repo
	}

	requester := review.NewRequester(inf, provider)
	srv := server.NewServer(ctx, requester, chapters, reviews, versions)
	srv.Echo.Logger.SetLevel(log.INFO)

	if pause := os.Getenv("REDLINE_PAUSE"); pause != "" {
		if d, err := time.ParseDuration(pause); err == nil {
			srv.BatchPause = d
		} else {
			log.Warnf("Invalid REDLINE_PAUSE %q: %v", pause, err)
		}
	}

	log.Infof("Loaded %d chapters from %s (provider: %s)", len(chapters.List()), dataDir, provider)

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(err)
		}
		done()
		close(finishedShutDown)
	}()

	log.Infof("Server listening at %s", addr)
	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}
