package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"storybook-ai-api/internal/config"
	"storybook-ai-api/internal/domain/story"
	"storybook-ai-api/internal/interfaces/http/dto"
)

// StoryRunner 执行一次完整的故事生成
type StoryRunner interface {
	Run(ctx context.Context, req *story.GenerationRequest) (*story.Result, error)
}

// StoryHandler 故事生成处理器
type StoryHandler struct {
	runner StoryRunner
	cfg    *config.Config
}

// NewStoryHandler 创建故事生成处理器
func NewStoryHandler(runner StoryRunner, cfg *config.Config) *StoryHandler {
	return &StoryHandler{runner: runner, cfg: cfg}
}

// Generate 生成完整故事书：故事、插画、旁白配音、测验
func (h *StoryHandler) Generate(c *gin.Context) {
	var req dto.GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.runner.Run(c.Request.Context(), req.ToDomain(h.cfg.Music.DefaultVolume))
	if err != nil {
		dto.AppError(c, err)
		return
	}

	volume := h.cfg.Music.DefaultVolume
	if req.MusicVolume != nil {
		volume = *req.MusicVolume
	}
	dto.Success(c, dto.FromResult(result, volume))
}

// Options 返回前端表单的可选项目录
func (h *StoryHandler) Options(c *gin.Context) {
	tones := make([]string, 0, len(story.Tones))
	for _, t := range story.Tones {
		tones = append(tones, string(t))
	}
	ageRanges := make([]dto.AgeRangeOption, 0, len(story.AgeRanges))
	for _, a := range story.AgeRanges {
		ageRanges = append(ageRanges, dto.AgeRangeOption{
			Value: a.Value,
			Label: a.Label,
		})
	}
	dto.Success(c, &dto.StoryOptionsResponse{
		Tones:              tones,
		AgeRanges:          ageRanges,
		Genders:            []string{string(story.GenderMale), string(story.GenderFemale)},
		DefaultMusicVolume: h.cfg.Music.DefaultVolume,
		QuizAdvanceDelayMs: story.AdvanceDelay.Milliseconds(),
	})
}
