package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixelloop/studio/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

// SuggestPrompt generates a starter prompt biased toward the given style
// using the flash model. Any failure falls back to a canned suggestion so
// the affordance never blocks the UI.
func (c *Client) SuggestPrompt(ctx context.Context, style models.Style) (string, error) {
	if c.llmFlash == nil {
		return fallbackSuggestion(style), nil
	}

	prompt := fmt.Sprintf(`You write prompts for text-to-image models.

Write one imaginative, visually rich prompt for an image in a %s style.
Describe a concrete subject, setting, lighting and mood in at most 40 words.
Return ONLY the prompt, no quotes, no explanations.`, strings.ToLower(string(style)))

	response, err := llms.GenerateFromSinglePrompt(ctx, c.llmFlash, prompt,
		llms.WithTemperature(0.9),
		llms.WithMaxTokens(120),
	)
	if err != nil {
		log.Error().Err(err).Str("style", string(style)).Msg("Prompt suggestion failed, using fallback")
		return fallbackSuggestion(style), nil
	}

	suggestion := strings.TrimSpace(strings.Trim(strings.TrimSpace(response), `"`))
	if suggestion == "" {
		log.Warn().Str("style", string(style)).Msg("Empty prompt suggestion, using fallback")
		return fallbackSuggestion(style), nil
	}

	log.Info().
		Str("style", string(style)).
		Int("suggestion_length", len(suggestion)).
		Msg("Prompt suggestion complete")

	return suggestion, nil
}

// fallbackSuggestion returns a canned prompt when the flash model is
// unavailable or returns nothing usable.
func fallbackSuggestion(style models.Style) string {
	switch style {
	case models.StyleFairyTale:
		return "A tiny cottage with a glowing window deep in a moonlit forest, fireflies drifting between ancient trees"
	case models.StyleCyberpunk:
		return "A rain-slick neon alley at midnight, holographic signs reflecting in the puddles around a lone figure"
	case models.StylePixelArt:
		return "A cozy seaside village at sunset with fishing boats bobbing in the harbor"
	case models.StyleWatercolor:
		return "A quiet mountain lake at dawn, mist rising off the water and wildflowers along the shore"
	default:
		return "A cat wearing a space helmet floating above a pastel planet"
	}
}
