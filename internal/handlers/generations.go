package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pixelloop/studio/internal/models"
	"github.com/pixelloop/studio/internal/services"
	"github.com/rs/zerolog/log"
)

// CreateGeneration handles POST /v1/generations (multipart form: prompt,
// style, aspect_ratio, optional image). The call is synchronous: the
// response carries the final state, success or failure alike.
func (h *Handler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	style, err := models.ParseStyle(r.FormValue("style"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ratio, err := models.ParseAspectRatio(r.FormValue("aspect_ratio"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	image, imageMime, err := readImageFile(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.studio.Submit(r.Context(), r.FormValue("prompt"), style, ratio, image, imageMime)
	switch {
	case services.IsValidationError(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrGenerationInFlight):
		writeJSON(w, http.StatusConflict, state)
	case err != nil:
		log.Error().Err(err).Msg("Failed to submit generation")
		writeJSONError(w, http.StatusInternalServerError, "failed to submit generation")
	default:
		writeJSON(w, http.StatusOK, state)
	}
}

// GetState handles GET /v1/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.studio.Snapshot())
}

// Reset handles POST /v1/reset — clears the result and error, keeps the
// prompt and uploaded image.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := h.studio.Reset()
	if errors.Is(err, services.ErrGenerationInFlight) {
		writeJSON(w, http.StatusConflict, state)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Retry handles POST /v1/retry — re-submits the last text-only request with
// a new aspect ratio.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	var req models.RetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ratio, err := models.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.studio.RetryWithAspectRatio(r.Context(), ratio)
	switch {
	case errors.Is(err, services.ErrGenerationInFlight):
		writeJSON(w, http.StatusConflict, state)
	case errors.Is(err, services.ErrRetryUnavailable):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case services.IsValidationError(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Error().Err(err).Msg("Failed to retry generation")
		writeJSONError(w, http.StatusInternalServerError, "failed to retry generation")
	default:
		writeJSON(w, http.StatusOK, state)
	}
}

// ClearError handles POST /v1/error/clear
func (h *Handler) ClearError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.studio.ClearError())
}

// GetGenerationImage handles GET /v1/generations/{id}/image
func (h *Handler) GetGenerationImage(w http.ResponseWriter, r *http.Request) {
	img, ok := h.currentResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", img.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// DownloadGeneration handles GET /v1/generations/{id}/download — same bytes
// as the image endpoint, served as an attachment.
func (h *Handler) DownloadGeneration(w http.ResponseWriter, r *http.Request) {
	img, ok := h.currentResult(w, r)
	if !ok {
		return
	}
	filename := fmt.Sprintf("generation-%s%s", img.ID, extensionFor(img.MimeType))
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// SaveGeneration handles POST /v1/generations/{id}/save — uploads a copy to
// the gallery bucket and returns its URL.
func (h *Handler) SaveGeneration(w http.ResponseWriter, r *http.Request) {
	if h.gallery == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "gallery storage is not configured")
		return
	}
	img, ok := h.currentResult(w, r)
	if !ok {
		return
	}

	key := fmt.Sprintf("generations/%s%s", img.ID, extensionFor(img.MimeType))
	url, err := h.gallery.Save(r.Context(), key, img.Data, img.MimeType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to save to gallery")
		writeJSONError(w, http.StatusBadGateway, "failed to save to gallery")
		return
	}
	writeJSON(w, http.StatusOK, models.SaveResponse{Key: key, URL: url})
}

// SuggestPrompt handles POST /v1/prompts/suggest
func (h *Handler) SuggestPrompt(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	style, err := models.ParseStyle(req.Style)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestion, err := h.suggester.SuggestPrompt(r.Context(), style)
	if err != nil {
		log.Error().Err(err).Msg("Failed to suggest prompt")
		writeJSONError(w, http.StatusBadGateway, "failed to suggest prompt")
		return
	}
	writeJSON(w, http.StatusOK, models.SuggestPromptResponse{Prompt: suggestion})
}

func (h *Handler) currentResult(w http.ResponseWriter, r *http.Request) (*models.GeneratedImage, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid generation id")
		return nil, false
	}
	img, err := h.studio.Result(id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "generation not found")
		return nil, false
	}
	return img, true
}
