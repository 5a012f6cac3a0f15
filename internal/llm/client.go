package llm

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/genai"
)

// Client wraps the Gemini API for the studio: image generation through the
// unified genai SDK, prompt suggestions through langchaingo.
type Client struct {
	apiKey      string
	modelImage  string // image generation, e.g. gemini-3-pro-image-preview
	modelFlash  string // prompt suggestions, e.g. gemini-2.5-flash-lite
	genaiClient *genai.Client
	llmFlash    llms.Model
}

// NewClient creates a new LLM client.
// apiEndpoint: optional Gemini API base URL; when set, all Gemini calls use
// this endpoint. Missing pieces degrade per-feature rather than failing the
// whole client: no genai client means image generation errors at call time,
// no flash model means suggestions fall back to canned prompts.
func NewClient(apiKey, modelImage, modelFlash, apiEndpoint string) *Client {
	if modelImage == "" {
		modelImage = "gemini-3-pro-image-preview"
	}
	if modelFlash == "" {
		modelFlash = "gemini-2.5-flash-lite"
	}

	var genaiClient *genai.Client
	if apiKey != "" {
		cfg := &genai.ClientConfig{APIKey: apiKey}
		if apiEndpoint != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: apiEndpoint}
		}
		var err error
		genaiClient, err = genai.NewClient(context.Background(), cfg)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize genai client for image generation")
			genaiClient = nil
		}
	}

	var llmFlash llms.Model
	if apiKey != "" {
		flashOpts := []googleai.Option{googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(modelFlash)}
		var err error
		llmFlash, err = googleai.New(context.Background(), flashOpts...)
		if err != nil {
			log.Error().Err(err).Str("model", modelFlash).Msg("Failed to initialize flash model, suggestions will use fallback")
			llmFlash = nil
		}
	}

	log.Info().
		Str("model_image", modelImage).
		Str("model_flash", modelFlash).
		Str("api_endpoint", apiEndpoint).
		Bool("genai_client", genaiClient != nil).
		Bool("flash_model", llmFlash != nil).
		Msg("LLM client initialized")

	return &Client{
		apiKey:      apiKey,
		modelImage:  modelImage,
		modelFlash:  modelFlash,
		genaiClient: genaiClient,
		llmFlash:    llmFlash,
	}
}
