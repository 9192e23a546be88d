package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		Topic:    "a brave little fox",
		AgeRange: "5-6 years",
		Gender:   GenderFemale,
		Tone:     ToneCheerful,
	}
}

func TestGenerationRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := validRequest()
		assert.NoError(t, req.Validate())
	})

	t.Run("blank topic", func(t *testing.T) {
		req := validRequest()
		req.Topic = "   "
		assert.Error(t, req.Validate())
	})

	t.Run("unknown gender", func(t *testing.T) {
		req := validRequest()
		req.Gender = "robot"
		assert.Error(t, req.Validate())
	})

	t.Run("unknown tone", func(t *testing.T) {
		req := validRequest()
		req.Tone = "Sarcastic"
		assert.Error(t, req.Validate())
	})

	t.Run("volume out of range", func(t *testing.T) {
		req := validRequest()
		req.MusicVolume = 1.5
		assert.Error(t, req.Validate())
	})
}

func TestQuizQuestionValidate(t *testing.T) {
	q := QuizQuestion{
		Question:      "What color was the fox?",
		Options:       []string{"Red", "Blue", "Green", "Yellow"},
		CorrectAnswer: "Red",
	}
	assert.NoError(t, q.Validate())

	t.Run("answer not among options", func(t *testing.T) {
		bad := q
		bad.CorrectAnswer = "Purple"
		assert.Error(t, bad.Validate())
	})

	t.Run("wrong option count", func(t *testing.T) {
		bad := q
		bad.Options = bad.Options[:3]
		assert.Error(t, bad.Validate())
	})
}

func TestGeneratedValidate(t *testing.T) {
	g := Generated{
		StyleGuide: "soft watercolor, warm light",
		Story: []Part{
			{Paragraph: "Once upon a time...", ImagePrompt: "a fox in a meadow"},
			{Paragraph: "She met an owl.", ImagePrompt: "a fox talking to an owl"},
		},
		VoiceDescription: "warm female voice",
	}
	require.NoError(t, g.Validate())

	t.Run("empty style guide", func(t *testing.T) {
		bad := g
		bad.StyleGuide = ""
		assert.Error(t, bad.Validate())
	})

	t.Run("empty image prompt", func(t *testing.T) {
		bad := g
		bad.Story = []Part{{Paragraph: "text", ImagePrompt: " "}}
		assert.Error(t, bad.Validate())
	})
}

func TestNarrationTextJoinsParagraphsInOrder(t *testing.T) {
	g := Generated{Story: []Part{
		{Paragraph: "First."},
		{Paragraph: "Second."},
		{Paragraph: "Third."},
	}}
	assert.Equal(t, "First.\n\nSecond.\n\nThird.", g.NarrationText())
}

func TestFilterVoicesByGender(t *testing.T) {
	voices := []Voice{
		{VoiceID: "a", Name: "Alice", Labels: map[string]string{"gender": "female"}},
		{VoiceID: "b", Name: "Bob", Labels: map[string]string{"gender": "male"}},
		{VoiceID: "c", Name: "Cleo", Labels: map[string]string{"gender": "female"}},
		{VoiceID: "d", Name: "NoLabels"},
	}

	females := FilterVoicesByGender(voices, GenderFemale)
	require.Len(t, females, 2)
	assert.Equal(t, "a", females[0].VoiceID)
	assert.Equal(t, "c", females[1].VoiceID)

	males := FilterVoicesByGender(voices, GenderMale)
	require.Len(t, males, 1)
	assert.Equal(t, "b", males[0].VoiceID)
}

func TestMusicTrackForTone(t *testing.T) {
	assert.Equal(t, "/Calm.mp3", MusicTrackForTone(ToneCalm, nil))

	overrides := map[string]string{"Calm": "/custom/calm.mp3"}
	assert.Equal(t, "/custom/calm.mp3", MusicTrackForTone(ToneCalm, overrides))

	assert.Empty(t, MusicTrackForTone(Tone("Unknown"), nil))
}
