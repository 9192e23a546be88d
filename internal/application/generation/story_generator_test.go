package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-ai-api/internal/domain/story"
	apperrors "storybook-ai-api/pkg/errors"
)

func storyInput() *StoryGenerateInput {
	return &StoryGenerateInput{
		Request: &story.GenerationRequest{
			Topic:       "volcanoes",
			AgeRange:    "7-8 years",
			Gender:      story.GenderMale,
			Tone:        story.ToneEnergetic,
			MusicVolume: 0.2,
		},
		Provider: "gemini",
		Model:    "gemini-2.5-pro",
	}
}

func TestStoryGeneratorGenerate(t *testing.T) {
	g := NewStoryGenerator(&fakeModelFactory{selectModel: &fakeChatModel{content: validStoryJSON}})

	out, err := g.Generate(context.Background(), storyInput())
	require.NoError(t, err)
	require.NotNil(t, out.Story)
	assert.Len(t, out.Story.Story, 2)
	assert.Len(t, out.Story.Quiz, story.QuizQuestionCount)
	assert.Equal(t, "gemini", out.Meta.Provider)
	assert.Equal(t, "gemini-2.5-pro", out.Meta.Model)
	assert.False(t, out.Meta.GeneratedAt.IsZero())
}

func TestStoryGeneratorGenerateRejectsGarbage(t *testing.T) {
	g := NewStoryGenerator(&fakeModelFactory{selectModel: &fakeChatModel{content: "sorry, try again later"}})

	_, err := g.Generate(context.Background(), storyInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
}
