package generation

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-ai-api/internal/domain/story"
)

type fakeChatModel struct {
	content string
	err     error
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, f.err
}

type fakeModelFactory struct {
	selectModel model.BaseChatModel
}

func (f *fakeModelFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	return f.selectModel, nil
}

func (f *fakeModelFactory) GetSelectModel(ctx context.Context) (model.BaseChatModel, error) {
	return f.selectModel, nil
}

func candidateVoices() []story.Voice {
	return []story.Voice{
		{VoiceID: "v-aria", Name: "Aria", Labels: map[string]string{"gender": "female", "age": "young"}},
		{VoiceID: "v-brian", Name: "Brian", Labels: map[string]string{"gender": "male", "accent": "british"}},
	}
}

func TestVoiceSelectorSelect(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		wantID string
	}{
		{name: "id in candidate set", reply: "v-brian", wantID: "v-brian"},
		{name: "quoted id is stripped", reply: `"v-aria"`, wantID: "v-aria"},
		{name: "unknown id falls back to first candidate", reply: "v-nonexistent", wantID: "v-aria"},
		{name: "empty reply falls back to first candidate", reply: "", wantID: "v-aria"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := NewVoiceSelector(&fakeModelFactory{selectModel: &fakeChatModel{content: tt.reply}})
			got, err := selector.Select(context.Background(), candidateVoices(), "a warm grandfatherly storyteller")
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got)
		})
	}
}

func TestVoiceSelectorSelectNoCandidates(t *testing.T) {
	selector := NewVoiceSelector(&fakeModelFactory{selectModel: &fakeChatModel{content: "v-aria"}})
	_, err := selector.Select(context.Background(), nil, "any voice")
	require.Error(t, err)
}

func TestResolveVoiceID(t *testing.T) {
	ctx := context.Background()
	candidates := candidateVoices()

	assert.Equal(t, "v-brian", resolveVoiceID(ctx, candidates, "v-brian"))
	assert.Equal(t, "v-brian", resolveVoiceID(ctx, candidates, "  'v-brian' "))
	assert.Equal(t, "v-aria", resolveVoiceID(ctx, candidates, "sorry, none of these fit"))
}
