package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pixelloop/studio/internal/models"
	"github.com/rs/zerolog/log"
)

// ImageGenerator is the generation client contract. One call, one attempt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, ratio models.AspectRatio, image []byte, imageMime string) (*models.GeneratedImage, error)
}

// Studio owns the single UI state and drives one-shot generation requests.
// All state transitions happen through the named methods; at most one
// generation is outstanding at any time, and an in-flight request runs to
// completion (no cancellation).
type Studio struct {
	generator ImageGenerator

	mu       sync.Mutex
	inFlight bool
	phase    models.Phase

	// last submitted inputs, preserved across Reset for convenience
	prompt    string
	style     models.Style
	ratio     models.AspectRatio
	image     []byte
	imageMime string

	result  *models.GeneratedImage
	lastErr string

	subs    map[int]chan models.StateView
	nextSub int
}

// NewStudio creates a studio in the Idle state.
func NewStudio(generator ImageGenerator) *Studio {
	return &Studio{
		generator: generator,
		phase:     models.PhaseIdle,
		subs:      make(map[int]chan models.StateView),
	}
}

// Submit runs one generation request to completion and returns the resulting
// state. It fails fast with a ValidationError when both prompt and image are
// absent and with ErrGenerationInFlight when a request is already pending;
// in both cases the generation client is not invoked. A failed remote call
// is not an error here: the failure lands in the returned state.
func (s *Studio) Submit(ctx context.Context, prompt string, style models.Style, ratio models.AspectRatio, image []byte, imageMime string) (models.StateView, error) {
	if strings.TrimSpace(prompt) == "" && len(image) == 0 {
		return s.Snapshot(), &ValidationError{Message: "enter a prompt or attach an image"}
	}

	s.mu.Lock()
	if s.inFlight {
		view := s.snapshotLocked()
		s.mu.Unlock()
		return view, ErrGenerationInFlight
	}
	s.inFlight = true
	s.phase = models.PhaseLoading
	s.prompt = prompt
	s.style = style
	s.ratio = ratio
	s.image = image
	s.imageMime = imageMime
	s.result = nil
	s.lastErr = ""
	s.broadcastLocked()
	s.mu.Unlock()

	finalPrompt := composeFinalPrompt(prompt, style)
	log.Info().
		Str("style", string(style)).
		Str("aspect_ratio", string(ratio)).
		Bool("reference_image", len(image) > 0).
		Msg("Submitting generation request")

	img, err := s.generator.GenerateImage(ctx, finalPrompt, ratio, image, imageMime)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		s.phase = models.PhaseFailed
		s.lastErr = err.Error()
		s.result = nil
		log.Error().Err(err).Msg("Generation failed")
	} else {
		img.TextOnly = len(image) == 0
		s.phase = models.PhaseSuccess
		s.result = img
		s.lastErr = ""
		log.Info().
			Str("generation_id", img.ID.String()).
			Bool("text_only", img.TextOnly).
			Msg("Generation succeeded")
	}
	s.broadcastLocked()
	return s.snapshotLocked(), nil
}

// Reset clears the result and error but preserves the prompt and the
// uploaded image, returning to Idle. A reset during a pending generation is
// rejected; the in-flight request always runs to completion.
func (s *Studio) Reset() (models.StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return s.snapshotLocked(), ErrGenerationInFlight
	}
	s.phase = models.PhaseIdle
	s.result = nil
	s.lastErr = ""
	s.broadcastLocked()
	return s.snapshotLocked(), nil
}

// RetryWithAspectRatio re-submits the last prompt and style with a new
// aspect ratio. Only valid when the prior result was a text-only success.
func (s *Studio) RetryWithAspectRatio(ctx context.Context, ratio models.AspectRatio) (models.StateView, error) {
	s.mu.Lock()
	if s.inFlight {
		view := s.snapshotLocked()
		s.mu.Unlock()
		return view, ErrGenerationInFlight
	}
	if s.phase != models.PhaseSuccess || s.result == nil || !s.result.TextOnly {
		view := s.snapshotLocked()
		s.mu.Unlock()
		return view, ErrRetryUnavailable
	}
	prompt, style := s.prompt, s.style
	s.mu.Unlock()

	return s.Submit(ctx, prompt, style, ratio, nil, "")
}

// ClearError dismisses a failure, returning to Idle. A no-op in any other
// phase.
func (s *Studio) ClearError() models.StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == models.PhaseFailed {
		s.phase = models.PhaseIdle
		s.lastErr = ""
		s.broadcastLocked()
	}
	return s.snapshotLocked()
}

// Snapshot returns a read-only copy of the current state.
func (s *Studio) Snapshot() models.StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the current generated image when id matches it. The studio
// keeps only the most recent result, so any other id is gone.
func (s *Studio) Result(id uuid.UUID) (*models.GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.result.ID != id {
		return nil, ErrResultNotFound
	}
	return s.result, nil
}

// Subscribe registers a state listener. Every transition is pushed as a
// snapshot; slow listeners miss intermediate snapshots rather than blocking
// a transition. The returned func unsubscribes.
func (s *Studio) Subscribe() (<-chan models.StateView, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan models.StateView, 8)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

func (s *Studio) broadcastLocked() {
	view := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- view:
		default:
		}
	}
}

func (s *Studio) snapshotLocked() models.StateView {
	view := models.StateView{
		Status:      s.phase,
		Prompt:      s.prompt,
		Style:       s.style,
		AspectRatio: s.ratio,
		HasImage:    len(s.image) > 0,
		Error:       s.lastErr,
	}
	if s.result != nil {
		view.Result = &models.ResultView{
			ID:          s.result.ID,
			URL:         fmt.Sprintf("/v1/generations/%s/image", s.result.ID),
			DownloadURL: fmt.Sprintf("/v1/generations/%s/download", s.result.ID),
			MimeType:    s.result.MimeType,
			Model:       s.result.Model,
			TextOnly:    s.result.TextOnly,
			CreatedAt:   s.result.CreatedAt,
		}
		view.CanRetryAspect = s.phase == models.PhaseSuccess && s.result.TextOnly
	}
	return view
}

// composeFinalPrompt appends the style clause to the user's prompt. An
// image-only submission sends just the style clause.
func composeFinalPrompt(prompt string, style models.Style) string {
	clause := fmt.Sprintf("in a %s style.", strings.ToLower(string(style)))
	if strings.TrimSpace(prompt) == "" {
		return clause
	}
	return fmt.Sprintf("%s, %s", prompt, clause)
}
