package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pixelloop/studio/internal/auth"
	"github.com/pixelloop/studio/internal/config"
	"github.com/pixelloop/studio/internal/handlers"
	"github.com/pixelloop/studio/internal/llm"
	"github.com/pixelloop/studio/internal/services"
	"github.com/pixelloop/studio/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Pixelloop Studio")

	llmClient := llm.NewClient(cfg.GeminiAPIKey, cfg.GeminiModelImage, cfg.GeminiModelFlash, cfg.GeminiAPIEndpoint)
	studio := services.NewStudio(llmClient)

	var gallery handlers.GalleryStore
	if cfg.GalleryEnabled() {
		g, err := storage.NewGallery(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket,
			cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL,
			cfg.S3PublicURL, cfg.S3LinkTTL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize gallery storage")
		}
		gallery = g
	} else {
		log.Info().Msg("No S3 bucket configured, gallery save disabled")
	}

	h := handlers.NewHandler(studio, llmClient, gallery, cfg.MaxUploadBytes, cfg.APIToken)
	authService := auth.NewService(cfg.APIToken)

	r := mux.NewRouter()
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	// WebSocket sits outside the middleware; it authenticates in-handler
	// because browsers cannot set an Authorization header on a dial.
	r.HandleFunc("/v1/state/ws", h.StateWS).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(authService.Middleware)
	api.HandleFunc("/generations", h.CreateGeneration).Methods("POST")
	api.HandleFunc("/generations/{id}/image", h.GetGenerationImage).Methods("GET")
	api.HandleFunc("/generations/{id}/download", h.DownloadGeneration).Methods("GET")
	api.HandleFunc("/generations/{id}/save", h.SaveGeneration).Methods("POST")
	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/reset", h.Reset).Methods("POST")
	api.HandleFunc("/retry", h.Retry).Methods("POST")
	api.HandleFunc("/error/clear", h.ClearError).Methods("POST")
	api.HandleFunc("/prompts/suggest", h.SuggestPrompt).Methods("POST")

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Generation calls are synchronous and slow; give writes headroom.
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Studio listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Studio exited")
}
