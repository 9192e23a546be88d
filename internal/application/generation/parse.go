package generation

import (
	"encoding/json"
	"fmt"

	"storybook-ai-api/internal/application/generation/genutil"
	"storybook-ai-api/internal/domain/story"
	apperrors "storybook-ai-api/pkg/errors"
)

// ParseGenerated 解析模型返回的故事 JSON 并校验结构。
// 返回提取后的原始 JSON 文本，便于排查与审计。
func ParseGenerated(content string) (*story.Generated, string, error) {
	raw := genutil.ExtractJSONObject(content)
	if raw == "" {
		return nil, "", apperrors.ErrGenerationFailed.WithDetail("empty model response")
	}

	var out story.Generated
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, raw, apperrors.ErrGenerationFailed.WithDetail("model response is not valid JSON").WithError(err)
	}

	if err := out.Validate(); err != nil {
		return nil, raw, apperrors.ErrGenerationFailed.WithDetail(err.Error())
	}

	if len(out.Quiz) != story.QuizQuestionCount {
		return nil, raw, apperrors.ErrMalformedQuizData.WithDetail(
			fmt.Sprintf("quiz has %d questions, want %d", len(out.Quiz), story.QuizQuestionCount))
	}
	for _, q := range out.Quiz {
		if err := q.Validate(); err != nil {
			return nil, raw, apperrors.ErrMalformedQuizData.WithDetail(err.Error())
		}
	}

	return &out, raw, nil
}
