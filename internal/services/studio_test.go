package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixelloop/studio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records calls and returns a canned image or error. When
// block is set, GenerateImage waits until it is closed.
type fakeGenerator struct {
	mu         sync.Mutex
	calls      int
	lastPrompt string
	lastRatio  models.AspectRatio
	lastImage  []byte
	lastMime   string

	img     *models.GeneratedImage
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string, ratio models.AspectRatio, image []byte, imageMime string) (*models.GeneratedImage, error) {
	f.mu.Lock()
	f.calls++
	f.lastPrompt = prompt
	f.lastRatio = ratio
	f.lastImage = image
	f.lastMime = imageMime
	started := f.started
	block := f.block
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	img := *f.img
	return &img, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newImage() *models.GeneratedImage {
	return &models.GeneratedImage{
		ID:        uuid.New(),
		Data:      []byte("png-bytes"),
		MimeType:  "image/png",
		Model:     "gemini-3-pro-image-preview",
		CreatedAt: time.Now(),
	}
}

func TestSubmit_RejectsEmptyInput(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	_, err := s.Submit(context.Background(), "   ", models.StyleAnime, models.AspectRatioPortrait, nil, "")

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, 0, gen.callCount(), "validation errors must never reach the generation client")
	assert.Equal(t, models.PhaseIdle, s.Snapshot().Status)
}

func TestSubmit_ComposesStyledPrompt(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	state, err := s.Submit(context.Background(), "A cat wearing a space helmet", models.StyleFairyTale, models.AspectRatioPortrait, nil, "")

	require.NoError(t, err)
	assert.Equal(t, "A cat wearing a space helmet, in a fairy tale style.", gen.lastPrompt)
	assert.Equal(t, models.AspectRatioPortrait, gen.lastRatio)
	assert.Nil(t, gen.lastImage)

	require.NotNil(t, state.Result)
	assert.Equal(t, models.PhaseSuccess, state.Status)
	assert.Equal(t, gen.img.ID, state.Result.ID)
	assert.True(t, state.Result.TextOnly)
	assert.True(t, state.CanRetryAspect, "text-only success enables the aspect-ratio retry affordance")
}

func TestSubmit_ImageOnly(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	ref := []byte("reference-image")
	state, err := s.Submit(context.Background(), "", models.StyleWatercolor, models.AspectRatioTall, ref, "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "in a watercolor style.", gen.lastPrompt)
	assert.Equal(t, ref, gen.lastImage)
	assert.Equal(t, "image/jpeg", gen.lastMime)

	require.NotNil(t, state.Result)
	assert.False(t, state.Result.TextOnly)
	assert.False(t, state.CanRetryAspect, "retry is reserved for text-only results")
}

func TestSubmit_DuplicateWhilePending(t *testing.T) {
	gen := &fakeGenerator{
		img:     newImage(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := NewStudio(gen)

	firstDone := make(chan models.StateView, 1)
	go func() {
		state, _ := s.Submit(context.Background(), "first", models.StyleAnime, models.AspectRatioPortrait, nil, "")
		firstDone <- state
	}()
	<-gen.started

	state, err := s.Submit(context.Background(), "second", models.StyleAnime, models.AspectRatioPortrait, nil, "")
	require.ErrorIs(t, err, ErrGenerationInFlight)
	assert.Equal(t, models.PhaseLoading, state.Status)
	assert.Equal(t, "first", state.Prompt, "a rejected duplicate must not disturb the pending request")

	close(gen.block)
	final := <-firstDone
	assert.Equal(t, models.PhaseSuccess, final.Status)
	assert.Equal(t, 1, gen.callCount(), "the client must not be invoked for the duplicate")
}

func TestSubmit_FailureClearsPreviousResult(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	_, err := s.Submit(context.Background(), "first", models.StyleAnime, models.AspectRatioPortrait, nil, "")
	require.NoError(t, err)
	require.NotNil(t, s.Snapshot().Result)

	gen.err = errors.New("model overloaded, try again later")
	state, err := s.Submit(context.Background(), "second", models.StyleAnime, models.AspectRatioPortrait, nil, "")
	require.NoError(t, err, "a failed remote call is reported through state, not as a submission error")

	assert.Equal(t, models.PhaseFailed, state.Status)
	assert.Equal(t, "model overloaded, try again later", state.Error)
	assert.Nil(t, state.Result, "a failure clears any previously displayed result")
}

func TestReset_PreservesPromptAndImage(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	ref := []byte("reference-image")
	_, err := s.Submit(context.Background(), "keep me", models.StyleCyberpunk, models.AspectRatioTall, ref, "image/png")
	require.NoError(t, err)

	state, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIdle, state.Status)
	assert.Nil(t, state.Result)
	assert.Empty(t, state.Error)
	assert.Equal(t, "keep me", state.Prompt)
	assert.True(t, state.HasImage)
}

func TestRetryWithAspectRatio(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	_, err := s.Submit(context.Background(), "A lighthouse at dusk", models.StyleOilPainting, models.AspectRatioPortrait, nil, "")
	require.NoError(t, err)

	state, err := s.RetryWithAspectRatio(context.Background(), models.AspectRatioTall)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.callCount())
	assert.Equal(t, "A lighthouse at dusk, in a oil painting style.", gen.lastPrompt)
	assert.Equal(t, models.AspectRatioTall, gen.lastRatio)
	assert.Nil(t, gen.lastImage, "a retry re-submits without a reference image")
	assert.Equal(t, models.PhaseSuccess, state.Status)
	assert.Equal(t, models.AspectRatioTall, state.AspectRatio)
}

func TestRetryWithAspectRatio_UnavailableForImageResults(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	_, err := s.Submit(context.Background(), "with reference", models.StyleAnime, models.AspectRatioPortrait, []byte("ref"), "image/png")
	require.NoError(t, err)

	_, err = s.RetryWithAspectRatio(context.Background(), models.AspectRatioTall)
	assert.ErrorIs(t, err, ErrRetryUnavailable)
	assert.Equal(t, 1, gen.callCount())
}

func TestRetryWithAspectRatio_UnavailableAfterFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	s := NewStudio(gen)

	_, err := s.Submit(context.Background(), "doomed", models.StyleAnime, models.AspectRatioPortrait, nil, "")
	require.NoError(t, err)

	_, err = s.RetryWithAspectRatio(context.Background(), models.AspectRatioTall)
	assert.ErrorIs(t, err, ErrRetryUnavailable)
}

func TestClearError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	s := NewStudio(gen)

	_, err := s.Submit(context.Background(), "doomed", models.StyleAnime, models.AspectRatioPortrait, nil, "")
	require.NoError(t, err)
	require.Equal(t, models.PhaseFailed, s.Snapshot().Status)

	state := s.ClearError()
	assert.Equal(t, models.PhaseIdle, state.Status)
	assert.Empty(t, state.Error)
	assert.Equal(t, "doomed", state.Prompt)
}

func TestResult_OnlyCurrentID(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	_, err := s.Submit(context.Background(), "hello", models.StyleAnime, models.AspectRatioPortrait, nil, "")
	require.NoError(t, err)

	img, err := s.Result(gen.img.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), img.Data)

	_, err = s.Result(uuid.New())
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestSubscribe_ReceivesTransitions(t *testing.T) {
	gen := &fakeGenerator{img: newImage()}
	s := NewStudio(gen)

	states, unsubscribe := s.Subscribe()
	defer unsubscribe()

	_, err := s.Submit(context.Background(), "hello", models.StyleAnime, models.AspectRatioPortrait, nil, "")
	require.NoError(t, err)

	first := <-states
	assert.Equal(t, models.PhaseLoading, first.Status)
	second := <-states
	assert.Equal(t, models.PhaseSuccess, second.Status)
}
