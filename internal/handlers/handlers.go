package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/pixelloop/studio/internal/models"
	"github.com/rs/zerolog/log"
)

// StudioService is the orchestrator contract the HTTP layer depends on.
type StudioService interface {
	Submit(ctx context.Context, prompt string, style models.Style, ratio models.AspectRatio, image []byte, imageMime string) (models.StateView, error)
	Reset() (models.StateView, error)
	RetryWithAspectRatio(ctx context.Context, ratio models.AspectRatio) (models.StateView, error)
	ClearError() models.StateView
	Snapshot() models.StateView
	Result(id uuid.UUID) (*models.GeneratedImage, error)
	Subscribe() (<-chan models.StateView, func())
}

// PromptSuggester produces starter prompts for the UI.
type PromptSuggester interface {
	SuggestPrompt(ctx context.Context, style models.Style) (string, error)
}

// GalleryStore persists a copy of a generated image and returns its URL.
type GalleryStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	studio         StudioService
	suggester      PromptSuggester
	gallery        GalleryStore // nil when no bucket is configured
	maxUploadBytes int64
	apiToken       string // embedded into the page so the UI can call /v1
}

// NewHandler creates a new handler
func NewHandler(studio StudioService, suggester PromptSuggester, gallery GalleryStore, maxUploadBytes int64, apiToken string) *Handler {
	return &Handler{
		studio:         studio,
		suggester:      suggester,
		gallery:        gallery,
		maxUploadBytes: maxUploadBytes,
		apiToken:       apiToken,
	}
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
