package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"storybook-ai-api/internal/application/generation/genutil"
	"storybook-ai-api/internal/domain/story"
	einoobs "storybook-ai-api/internal/observability/eino"
	workflowprompt "storybook-ai-api/internal/workflow/prompt"
	apperrors "storybook-ai-api/pkg/errors"
	"storybook-ai-api/pkg/logger"
)

// VoiceSelector 让轻量模型从候选声音中挑选最契合旁白描述的一个
type VoiceSelector struct {
	factory ChatModelFactory
}

func NewVoiceSelector(factory ChatModelFactory) *VoiceSelector {
	return &VoiceSelector{factory: factory}
}

// simplifiedVoice 送给模型的精简声音画像，剔除无关字段压缩提示词
type simplifiedVoice struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Accent      string `json:"accent,omitempty"`
	Age         string `json:"age,omitempty"`
}

// Select 返回候选列表中某个声音的 voice_id。
// 模型回复不在候选内时退回首个候选，列表顺序即提供商顺序。
func (s *VoiceSelector) Select(ctx context.Context, candidates []story.Voice, voiceDescription string) (string, error) {
	if s.factory == nil {
		return "", fmt.Errorf("llm factory not configured")
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidate voices")
	}

	simplified := make([]simplifiedVoice, 0, len(candidates))
	for _, v := range candidates {
		simplified = append(simplified, simplifiedVoice{
			VoiceID:     v.VoiceID,
			Name:        v.Name,
			Description: v.Label("description"),
			Accent:      v.Label("accent"),
			Age:         v.Label("age"),
		})
	}
	voicesJSON, err := json.MarshalIndent(simplified, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidate voices: %w", err)
	}

	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptVoiceSelectV1)
	if err != nil {
		return "", err
	}
	msgs, err := tpl.Format(ctx, map[string]any{
		"voice_description": voiceDescription,
		"voices_json":       string(voicesJSON),
	})
	if err != nil {
		return "", err
	}

	ctx = einoobs.WithWorkflow(ctx, "voice_selection")

	chatModel, err := s.factory.GetSelectModel(ctx)
	if err != nil {
		return "", err
	}

	outMsg, err := chatModel.Generate(ctx, msgs)
	if err != nil {
		if apperrors.IsAppError(err) {
			return "", err
		}
		return "", apperrors.ErrGenerationFailed.WithDetail("failed to select a narrator voice").WithError(err)
	}
	if outMsg == nil {
		return "", apperrors.ErrGenerationFailed.WithDetail("empty voice selection response")
	}

	return resolveVoiceID(ctx, candidates, outMsg.Content), nil
}

// resolveVoiceID 校验模型回复是否落在候选集合内，不在则退回首个候选
func resolveVoiceID(ctx context.Context, candidates []story.Voice, content string) string {
	voiceID := genutil.StripQuotes(content)
	for _, v := range candidates {
		if v.VoiceID == voiceID {
			return voiceID
		}
	}

	logger.Warn(ctx, "model returned an unknown voice_id, falling back to the first candidate",
		"returned", voiceID,
		"fallback", candidates[0].VoiceID,
	)
	return candidates[0].VoiceID
}
