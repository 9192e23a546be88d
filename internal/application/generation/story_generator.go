// Package generation 编排故事生成流水线
package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"storybook-ai-api/internal/domain/story"
	einoobs "storybook-ai-api/internal/observability/eino"
	workflowprompt "storybook-ai-api/internal/workflow/prompt"
	apperrors "storybook-ai-api/pkg/errors"
	"storybook-ai-api/pkg/logger"
)

// ChatModelFactory 屏蔽模型客户端的创建细节
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
	GetSelectModel(ctx context.Context) (model.BaseChatModel, error)
}

var defaultPromptRegistry = workflowprompt.NewRegistry()

type StoryGenerateInput struct {
	Request *story.GenerationRequest

	Provider string
	Model    string
}

type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}

type StoryGenerateOutput struct {
	Story *story.Generated
	Raw   string
	Meta  LLMUsageMeta
}

// StoryGenerator 单次调用产出故事全文、插画提示词、旁白描述和测验
type StoryGenerator struct {
	factory ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*StoryGenerateInput, *StoryGenerateOutput]
	chainErr  error
}

func NewStoryGenerator(factory ChatModelFactory) *StoryGenerator {
	return &StoryGenerator{factory: factory}
}

func (g *StoryGenerator) Generate(ctx context.Context, in *StoryGenerateInput) (*StoryGenerateOutput, error) {
	if g.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil || in.Request == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := g.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

func formatStoryMessages(ctx context.Context, in *StoryGenerateInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptStoryQuizV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"topic":     strings.TrimSpace(in.Request.Topic),
		"age_range": strings.TrimSpace(in.Request.AgeRange),
		"gender":    string(in.Request.Gender),
		"tone":      string(in.Request.Tone),
	}
	return tpl.Format(ctx, vars)
}

func buildStoryModelOptions(enableSchema bool) []model.Option {
	if !enableSchema {
		return nil
	}
	// 优先使用 response_format=json_schema 强约束；失败时由调用方降级为“纯 Prompt 约束”。
	return []model.Option{
		openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "story_quiz",
					"strict": false,
					"schema": storyJSONSchema(),
				},
			},
		}),
	}
}

type storyChainState struct {
	In       *StoryGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (g *StoryGenerator) getChain() (compose.Runnable[*StoryGenerateInput, *StoryGenerateOutput], error) {
	g.chainOnce.Do(func() {
		g.chain, g.chainErr = g.buildChain(context.Background())
	})
	return g.chain, g.chainErr
}

func (g *StoryGenerator) buildChain(ctx context.Context) (compose.Runnable[*StoryGenerateInput, *StoryGenerateOutput], error) {
	chain := compose.NewChain[*StoryGenerateInput, *StoryGenerateOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, in *StoryGenerateInput) (*storyChainState, error) {
			if in == nil || in.Request == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &storyChainState{In: in}, nil
		}),
		compose.WithNodeName("story.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *storyChainState) (*storyChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatStoryMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("story.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *storyChainState) (*storyChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if g == nil || g.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = einoobs.WithWorkflowProvider(ctx, "story_generation", st.In.Provider)

			chatModel, err := g.factory.Get(ctx, st.In.Provider)
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildStoryModelOptions(true)...)
			if err != nil && isResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", st.In.Provider,
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildStoryModelOptions(false)...)
			}
			if err != nil {
				if apperrors.IsAppError(err) {
					return nil, err
				}
				return nil, apperrors.ErrGenerationFailed.WithError(err)
			}
			if outMsg == nil {
				return nil, apperrors.ErrGenerationFailed.WithDetail("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("story.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *storyChainState) (*StoryGenerateOutput, error) {
			if st == nil || st.In == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			generated, raw, err := ParseGenerated(st.OutMsg.Content)
			if err != nil {
				return nil, err
			}

			meta := LLMUsageMeta{
				Provider:    st.In.Provider,
				Model:       st.In.Model,
				GeneratedAt: time.Now().UTC(),
			}
			if st.OutMsg.ResponseMeta != nil && st.OutMsg.ResponseMeta.Usage != nil {
				meta.PromptTokens = st.OutMsg.ResponseMeta.Usage.PromptTokens
				meta.CompletionTokens = st.OutMsg.ResponseMeta.Usage.CompletionTokens
			}

			return &StoryGenerateOutput{
				Story: generated,
				Raw:   raw,
				Meta:  meta,
			}, nil
		}),
		compose.WithNodeName("story.finalize"),
	)

	return chain.Compile(ctx, compose.WithGraphName("story_generate_chain"))
}

func storyJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"styleGuide", "story", "voiceDescription", "quiz"},
		"properties": map[string]any{
			"styleGuide": map[string]any{"type": "string"},
			"story": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"paragraph", "imagePrompt"},
					"properties": map[string]any{
						"paragraph":   map[string]any{"type": "string"},
						"imagePrompt": map[string]any{"type": "string"},
					},
				},
			},
			"voiceDescription": map[string]any{"type": "string"},
			"quiz": map[string]any{
				"type":     "array",
				"minItems": story.QuizQuestionCount,
				"maxItems": story.QuizQuestionCount,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"question", "options", "correctAnswer"},
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"minItems": 4,
							"maxItems": 4,
							"items":    map[string]any{"type": "string"},
						},
						"correctAnswer": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func isResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "response_format"):
		return true
	case strings.Contains(msg, "json_schema"):
		return true
	case strings.Contains(msg, "unknown parameter") && strings.Contains(msg, "response"):
		return true
	case strings.Contains(msg, "invalid") && strings.Contains(msg, "response"):
		return true
	case strings.Contains(msg, "response_schema"):
		return true
	case strings.Contains(msg, "failed to parse"):
		return true
	default:
		return false
	}
}
