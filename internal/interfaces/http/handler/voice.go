package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"storybook-ai-api/internal/domain/story"
	"storybook-ai-api/internal/interfaces/http/dto"
)

// VoiceLister 列出语音提供商的可用声音
type VoiceLister interface {
	GetVoices(ctx context.Context) ([]story.Voice, error)
}

// VoiceHandler 旁白声音处理器
type VoiceHandler struct {
	voices VoiceLister
}

// NewVoiceHandler 创建旁白声音处理器
func NewVoiceHandler(voices VoiceLister) *VoiceHandler {
	return &VoiceHandler{voices: voices}
}

// List 返回可用旁白声音，保持提供商原始顺序。
// gender 查询参数非空时按性别标签过滤。
func (h *VoiceHandler) List(c *gin.Context) {
	var gender story.Gender
	if q := c.Query("gender"); q != "" {
		gender = story.Gender(q)
		if !gender.Valid() {
			dto.BadRequest(c, fmt.Sprintf("unknown gender %q", q))
			return
		}
	}

	voices, err := h.voices.GetVoices(c.Request.Context())
	if err != nil {
		dto.AppError(c, err)
		return
	}
	if gender != "" {
		voices = story.FilterVoicesByGender(voices, gender)
	}

	resp := make([]dto.VoiceResponse, 0, len(voices))
	for _, v := range voices {
		resp = append(resp, dto.VoiceResponse{
			VoiceID: v.VoiceID,
			Name:    v.Name,
			Labels:  v.Labels,
		})
	}
	dto.Success(c, resp)
}
