package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixelloop/studio/internal/models"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// maxPromptLogBytes limits how much of a prompt appears in log events.
const maxPromptLogBytes = 120

// GenerateImage generates one image from a prompt, an aspect ratio, and an
// optional reference image. Single attempt per call, no retry. Stateless:
// the result depends only on the inputs and the remote service.
func (c *Client) GenerateImage(ctx context.Context, prompt string, ratio models.AspectRatio, image []byte, imageMime string) (*models.GeneratedImage, error) {
	if c.genaiClient == nil {
		return nil, &ServiceError{Message: "image generation is not configured (missing GEMINI_API_KEY)"}
	}

	log.Debug().
		Str("prompt", truncate(prompt, maxPromptLogBytes)).
		Str("aspect_ratio", string(ratio)).
		Bool("reference_image", len(image) > 0).
		Msg("Generating image")

	contents := []*genai.Content{genai.NewContentFromParts(buildParts(prompt, image, imageMime), genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: string(ratio)},
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelImage, contents, cfg)
	if err != nil {
		log.Error().Err(err).
			Str("model", c.modelImage).
			Str("prompt", truncate(prompt, maxPromptLogBytes)).
			Msg("Gemini image generation failed")
		return nil, &ServiceError{Message: err.Error(), Cause: err}
	}

	data, mimeType, err := extractImage(resp)
	if err != nil {
		log.Warn().
			Str("model", c.modelImage).
			Int("candidates", len(resp.Candidates)).
			Msg("No image blob in Gemini response")
		return nil, err
	}

	log.Info().
		Str("model", c.modelImage).
		Int64("image_size_bytes", int64(len(data))).
		Str("mime_type", mimeType).
		Msg("Gemini response (image blob)")

	return &models.GeneratedImage{
		ID:        uuid.New(),
		Data:      data,
		MimeType:  mimeType,
		Model:     c.modelImage,
		CreatedAt: time.Now(),
	}, nil
}

// buildParts assembles the request parts: prompt text first, then the
// optional reference image as inline data.
func buildParts(prompt string, image []byte, imageMime string) []*genai.Part {
	var parts []*genai.Part
	if prompt != "" {
		parts = append(parts, genai.NewPartFromText(prompt))
	}
	if len(image) > 0 {
		if imageMime == "" {
			imageMime = "image/png"
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: imageMime, Data: image}})
	}
	return parts
}

// extractImage pulls the first inline image blob out of a response. A
// response without one is an unexpected payload shape and reported as a
// ServiceError.
func extractImage(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	if resp == nil {
		return nil, "", &ServiceError{Message: "empty response from image model"}
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return part.InlineData.Data, mimeType, nil
		}
	}
	return nil, "", &ServiceError{Message: fmt.Sprintf("no image data in response (%d candidates)", len(resp.Candidates))}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
