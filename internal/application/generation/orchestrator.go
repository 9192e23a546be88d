package generation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"storybook-ai-api/internal/config"
	"storybook-ai-api/internal/domain/story"
	apperrors "storybook-ai-api/pkg/errors"
	"storybook-ai-api/pkg/logger"
	"storybook-ai-api/pkg/metrics"
)

// Phase 一次生成运行所处的阶段
type Phase string

const (
	PhaseIdle                     Phase = "idle"
	PhaseGeneratingStoryAndQuiz   Phase = "generating_story_and_quiz"
	PhaseSelectingNarrator        Phase = "selecting_narrator"
	PhaseRenderingAndSynthesizing Phase = "rendering_and_synthesizing"
	PhaseComplete                 Phase = "complete"
	PhaseFailed                   Phase = "failed"
)

// StoryPlanner 产出故事骨架：段落、插画提示词、旁白描述、测验
type StoryPlanner interface {
	Generate(ctx context.Context, in *StoryGenerateInput) (*StoryGenerateOutput, error)
}

// NarratorSelector 从候选声音中挑选旁白
type NarratorSelector interface {
	Select(ctx context.Context, candidates []story.Voice, voiceDescription string) (string, error)
}

// VoiceProvider 语音提供商：列声音、合成旁白
type VoiceProvider interface {
	GetVoices(ctx context.Context) ([]story.Voice, error)
	Synthesize(ctx context.Context, text, voiceID string, tone story.Tone) (string, error)
}

// ImageRenderer 按风格指南绘制插画
type ImageRenderer interface {
	GenerateImage(ctx context.Context, scenePrompt, styleGuide string) (string, error)
}

// Orchestrator 串联故事生成、选声、插画与配音，产出完整故事书
type Orchestrator struct {
	planner  StoryPlanner
	selector NarratorSelector
	voices   VoiceProvider
	images   ImageRenderer

	provider    string
	model       string
	musicTracks map[string]string
}

func NewOrchestrator(
	planner StoryPlanner,
	selector NarratorSelector,
	voices VoiceProvider,
	images ImageRenderer,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		planner:     planner,
		selector:    selector,
		voices:      voices,
		images:      images,
		provider:    cfg.LLM.DefaultProvider,
		model:       cfg.LLM.Providers[cfg.LLM.DefaultProvider].Model,
		musicTracks: cfg.Music.Tracks,
	}
}

// Run 执行一次完整生成。任何一步失败即整体失败，不返回部分结果。
// 取消 ctx 会中止所有仍在进行的下游调用。
func (o *Orchestrator) Run(ctx context.Context, req *story.GenerationRequest) (*story.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.ErrValidation.WithDetail(err.Error())
	}

	runID := uuid.NewString()
	ctx = context.WithValue(ctx, logger.RunIDKey, runID)
	start := time.Now()

	result, err := o.run(ctx, req)
	if err != nil {
		metrics.StoryRunTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "story run failed", err,
			"phase", phaseOf(err),
		)
		return nil, err
	}

	metrics.StoryRunTotal.WithLabelValues("success").Inc()
	metrics.StoryRunDuration.WithLabelValues(string(req.Tone)).Observe(time.Since(start).Seconds())
	metrics.StoryParagraphCount.Observe(float64(len(result.Parts)))
	logger.Info(ctx, "story run completed",
		"paragraphs", len(result.Parts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req *story.GenerationRequest) (*story.Result, error) {
	logger.Info(ctx, "story run started",
		"phase", PhaseGeneratingStoryAndQuiz,
		"topic", req.Topic,
		"age_range", req.AgeRange,
		"tone", req.Tone,
	)

	out, err := o.planner.Generate(ctx, &StoryGenerateInput{
		Request:  req,
		Provider: o.provider,
		Model:    o.model,
	})
	if err != nil {
		return nil, err
	}
	generated := out.Story

	logger.Info(ctx, "story generated",
		"phase", PhaseSelectingNarrator,
		"paragraphs", len(generated.Story),
		"prompt_tokens", out.Meta.PromptTokens,
		"completion_tokens", out.Meta.CompletionTokens,
	)

	voices, err := o.voices.GetVoices(ctx)
	if err != nil {
		return nil, err
	}

	// 先定下旁白，任何插画或配音开销之前
	candidates := story.FilterVoicesByGender(voices, req.Gender)
	if len(candidates) == 0 {
		return nil, apperrors.ErrNoVoiceForGender.WithDetail("gender: " + string(req.Gender))
	}

	voiceID, err := o.selector.Select(ctx, candidates, generated.VoiceDescription)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "narrator selected",
		"phase", PhaseRenderingAndSynthesizing,
		"voice_id", voiceID,
	)

	// 插画逐段并发，配音单次合成全文；任一失败即取消其余
	images := make([]string, len(generated.Story))
	var narrationURL string

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range generated.Story {
		g.Go(func() error {
			uri, err := o.images.GenerateImage(gctx, part.ImagePrompt, generated.StyleGuide)
			if err != nil {
				return err
			}
			images[i] = uri
			return nil
		})
	}
	g.Go(func() error {
		uri, err := o.voices.Synthesize(gctx, generated.NarrationText(), voiceID, req.Tone)
		if err != nil {
			return err
		}
		narrationURL = uri
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parts := make([]story.ResultPart, len(generated.Story))
	for i, p := range generated.Story {
		parts[i] = story.ResultPart{
			Paragraph: p.Paragraph,
			Image:     images[i],
		}
	}

	result := &story.Result{
		Parts:        parts,
		NarrationURL: narrationURL,
		Quiz:         generated.Quiz,
	}
	if req.UseBackgroundMusic {
		result.BackgroundMusicURL = story.MusicTrackForTone(req.Tone, o.musicTracks)
	}
	return result, nil
}

// phaseOf 根据错误码推断失败阶段，只用于日志
func phaseOf(err error) Phase {
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeGenerationFailed, apperrors.CodeMalformedQuizData:
		return PhaseGeneratingStoryAndQuiz
	case apperrors.CodeVoiceFetchFailed, apperrors.CodeNoVoiceForGender:
		return PhaseSelectingNarrator
	case apperrors.CodeImageBlocked, apperrors.CodeImageGenerationFailed, apperrors.CodeSynthesisFailed:
		return PhaseRenderingAndSynthesizing
	default:
		return PhaseFailed
	}
}
