package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Style is a fixed descriptive tag appended to the prompt to bias the
// generated image's visual style.
type Style string

const (
	StylePhotorealistic Style = "Photorealistic"
	StyleAnime          Style = "Anime"
	StyleWatercolor     Style = "Watercolor"
	StyleFairyTale      Style = "Fairy Tale"
	StyleCyberpunk      Style = "Cyberpunk"
	StyleOilPainting    Style = "Oil Painting"
	StylePixelArt       Style = "Pixel Art"
	StyleMinimalist     Style = "Minimalist"
)

// Styles returns all selectable styles in UI order.
func Styles() []Style {
	return []Style{
		StylePhotorealistic,
		StyleAnime,
		StyleWatercolor,
		StyleFairyTale,
		StyleCyberpunk,
		StyleOilPainting,
		StylePixelArt,
		StyleMinimalist,
	}
}

// ParseStyle validates a raw style value against the closed set.
func ParseStyle(raw string) (Style, error) {
	for _, s := range Styles() {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid style: %q", raw)
}

// AspectRatio is the requested width:height ratio of a generated image.
type AspectRatio string

const (
	AspectRatioSquare    AspectRatio = "1:1"
	AspectRatioPortrait  AspectRatio = "3:4"
	AspectRatioLandscape AspectRatio = "4:3"
	AspectRatioTall      AspectRatio = "9:16"
	AspectRatioWide      AspectRatio = "16:9"
)

// AspectRatios returns every ratio the generation API accepts.
func AspectRatios() []AspectRatio {
	return []AspectRatio{
		AspectRatioSquare,
		AspectRatioPortrait,
		AspectRatioLandscape,
		AspectRatioTall,
		AspectRatioWide,
	}
}

// SelectableAspectRatios returns the subset of ratios offered in the UI.
// The remaining ratios stay valid at the API boundary.
func SelectableAspectRatios() []AspectRatio {
	return []AspectRatio{AspectRatioPortrait, AspectRatioTall}
}

// ParseAspectRatio validates a raw ratio value against the closed set.
func ParseAspectRatio(raw string) (AspectRatio, error) {
	for _, r := range AspectRatios() {
		if string(r) == raw {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid aspect_ratio: %q", raw)
}

// GeneratedImage is one successful generation held in memory until the next
// submission or reset.
type GeneratedImage struct {
	ID        uuid.UUID
	Data      []byte
	MimeType  string
	Model     string
	TextOnly  bool // produced without a user-uploaded reference image
	CreatedAt time.Time
}

// Phase is the lifecycle phase of the studio UI state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// ResultView is the displayable reference to a generated image.
type ResultView struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"download_url"`
	MimeType    string    `json:"mime_type"`
	Model       string    `json:"model"`
	TextOnly    bool      `json:"text_only"`
	CreatedAt   time.Time `json:"created_at"`
}

// StateView is a read-only snapshot of the studio state for the
// presentation layer.
type StateView struct {
	Status         Phase       `json:"status"`
	Prompt         string      `json:"prompt"`
	Style          Style       `json:"style,omitempty"`
	AspectRatio    AspectRatio `json:"aspect_ratio,omitempty"`
	HasImage       bool        `json:"has_image"`
	Result         *ResultView `json:"result,omitempty"`
	Error          string      `json:"error,omitempty"`
	CanRetryAspect bool        `json:"can_retry_aspect_ratio"`
}

// RetryRequest is the body of POST /v1/retry.
type RetryRequest struct {
	AspectRatio string `json:"aspect_ratio"`
}

// SuggestPromptRequest is the body of POST /v1/prompts/suggest.
type SuggestPromptRequest struct {
	Style string `json:"style"`
}

// SuggestPromptResponse carries a generated starter prompt.
type SuggestPromptResponse struct {
	Prompt string `json:"prompt"`
}

// SaveResponse carries the stored-copy location after a gallery save.
type SaveResponse struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}
