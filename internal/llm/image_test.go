package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestExtractImage(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here is your image"},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("png-bytes")}},
					},
				},
			},
		},
	}

	data, mimeType, err := extractImage(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", mimeType)
}

func TestExtractImage_DefaultMimeType(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{InlineData: &genai.Blob{Data: []byte("bytes")}},
					},
				},
			},
		},
	}

	_, mimeType, err := extractImage(resp)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
}

func TestExtractImage_NoImageData(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "sorry"}}}},
		},
	}

	_, _, err := extractImage(resp)
	require.Error(t, err)

	var serviceErr *ServiceError
	require.True(t, errors.As(err, &serviceErr), "malformed payloads are ServiceErrors")
	assert.Contains(t, serviceErr.Message, "no image data")
}

func TestBuildParts(t *testing.T) {
	parts := buildParts("a prompt", nil, "")
	require.Len(t, parts, 1)
	assert.Equal(t, "a prompt", parts[0].Text)

	parts = buildParts("a prompt", []byte("img"), "image/jpeg")
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MIMEType)

	// Image-only requests still produce a valid parts list, and an unknown
	// MIME type falls back to PNG.
	parts = buildParts("", []byte("img"), "")
	require.Len(t, parts, 1)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
}

func TestServiceError_MessageVerbatim(t *testing.T) {
	cause := errors.New("429: resource exhausted")
	err := &ServiceError{Message: cause.Error(), Cause: cause}

	assert.Equal(t, "429: resource exhausted", err.Error())
	assert.ErrorIs(t, err, cause)
}
